package pdf

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"unicode"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Layout works in viewport units (CSS pixels). Faces are sized in points
// and measured in millimeters by canvas, so one unit maps to one millimeter
// on the tall canvas and the rasterizer resolution carries the pixel scale.
const ptPerUnit = 72 / 25.4

type fontSet struct {
	primary   *canvas.FontFamily
	secondary *canvas.FontFamily
}

func loadFonts(secondary []byte) (*fontSet, error) {
	primary := canvas.NewFontFamily("pubrender-primary")
	if err := primary.LoadFont(goregular.TTF, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	if err := primary.LoadFont(gobold.TTF, 0, canvas.FontBold); err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}
	fs := &fontSet{primary: primary}
	if len(secondary) > 0 {
		family := canvas.NewFontFamily("pubrender-secondary")
		for _, style := range []canvas.FontStyle{canvas.FontRegular, canvas.FontBold} {
			if err := family.LoadFont(secondary, 0, style); err != nil {
				return nil, fmt.Errorf("load secondary font: %w", err)
			}
		}
		fs.secondary = family
	}
	return fs, nil
}

func (fs *fontSet) face(size float64, col color.Color, bold, rtl bool) *canvas.FontFace {
	family := fs.primary
	if rtl && fs.secondary != nil {
		family = fs.secondary
	}
	style := canvas.FontRegular
	if bold {
		style = canvas.FontBold
	}
	return family.Face(size*ptPerUnit, col, style, canvas.FontNormal)
}

type measurer interface {
	TextWidth(string) float64
}

// wrapText breaks content into lines no wider than width. Explicit newlines
// are kept; words wider than a full line are split by rune.
func wrapText(content string, width float64, face measurer) []string {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	var lines []string
	var sb strings.Builder
	current := 0.0
	emit := func(force bool) {
		if sb.Len() == 0 {
			if force {
				lines = append(lines, "")
			}
			return
		}
		lines = append(lines, strings.TrimRightFunc(sb.String(), unicode.IsSpace))
		sb.Reset()
		current = 0
	}
	add := func(token string) {
		if sb.Len() == 0 && strings.TrimSpace(token) == "" {
			return
		}
		sb.WriteString(token)
		current += face.TextWidth(token)
	}

	for _, token := range tokenize(content) {
		if token == "\n" {
			emit(true)
			continue
		}
		w := face.TextWidth(token)
		if current > 0 && current+w > limit {
			emit(false)
		}
		if w <= limit {
			add(token)
			continue
		}
		for _, chunk := range splitByWidth(token, limit, face) {
			if current > 0 && current+face.TextWidth(chunk) > limit {
				emit(false)
			}
			add(chunk)
		}
	}
	emit(true)
	return lines
}

// tokenize splits s into alternating runs of space and non-space, with each
// newline as its own token.
func tokenize(s string) []string {
	var tokens []string
	var sb strings.Builder
	lastSpace := false
	flush := func() {
		if sb.Len() > 0 {
			tokens = append(tokens, sb.String())
			sb.Reset()
		}
	}
	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			continue
		}
		space := unicode.IsSpace(r)
		if sb.Len() > 0 && space != lastSpace {
			flush()
		}
		lastSpace = space
		sb.WriteRune(r)
	}
	flush()
	return tokens
}

func splitByWidth(token string, limit float64, face measurer) []string {
	var parts []string
	var runes []rune
	for _, r := range token {
		runes = append(runes, r)
		if len(runes) > 1 && face.TextWidth(string(runes)) > limit {
			parts = append(parts, string(runes[:len(runes)-1]))
			runes = []rune{r}
		}
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
