package textfmt

import (
	"html"
	"strconv"
	"strings"

	"github.com/roboco-io/pubrender/internal/model"
)

// Typography holds the language-dependent presentation of a text block.
type Typography struct {
	Dir        string  // ltr or rtl
	Class      string  // CSS class carrying the font stack
	FontFamily string  // CSS font-family value
	FontScale  float64 // font-size relative to body text
	LineHeight float64 // unitless CSS line-height
}

var (
	primaryTypography = Typography{
		Dir:        "ltr",
		Class:      "lang-primary",
		FontFamily: `"Inter", "Segoe UI", Roboto, Helvetica, Arial, sans-serif`,
		FontScale:  1.0,
		LineHeight: 1.6,
	}
	secondaryTypography = Typography{
		Dir:        "rtl",
		Class:      "lang-secondary",
		FontFamily: `"Noto Naskh Arabic", "Amiri", "Al Qalam Kanz", "Traditional Arabic", serif`,
		FontScale:  1.2,
		LineHeight: 2.0,
	}
)

// TypographyFor returns the presentation for a block language.
func TypographyFor(lang model.Language) Typography {
	if lang.IsRTL() {
		return secondaryTypography
	}
	return primaryTypography
}

// WriteHTML writes nodes as block markup.
func WriteHTML(sb *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n.Type {
		case NodeParagraph:
			sb.WriteString("<p>")
			sb.WriteString(html.EscapeString(n.Text))
			sb.WriteString("</p>")
		case NodeBreak:
			sb.WriteString("<br>")
		case NodeBulletList:
			writeList(sb, "ul", n.Items)
		case NodeNumberedList:
			writeList(sb, "ol", n.Items)
		}
	}
}

func writeList(sb *strings.Builder, tag string, items []string) {
	sb.WriteString("<" + tag + ">")
	for _, item := range items {
		sb.WriteString("<li>")
		sb.WriteString(html.EscapeString(item))
		sb.WriteString("</li>")
	}
	sb.WriteString("</" + tag + ">")
}

// HTML formats content and returns its markup.
func HTML(content string) string {
	var sb strings.Builder
	WriteHTML(&sb, Format(content))
	return sb.String()
}

// CSS returns style rules for both language classes, for inlining into
// documents that contain text blocks.
func CSS() string {
	var sb strings.Builder
	for _, t := range []Typography{primaryTypography, secondaryTypography} {
		sb.WriteString(".")
		sb.WriteString(t.Class)
		sb.WriteString("{font-family:")
		sb.WriteString(t.FontFamily)
		sb.WriteString(";font-size:")
		sb.WriteString(strconv.FormatFloat(t.FontScale, 'f', -1, 64))
		sb.WriteString("em;line-height:")
		sb.WriteString(strconv.FormatFloat(t.LineHeight, 'f', -1, 64))
		sb.WriteString(";direction:")
		sb.WriteString(t.Dir)
		if t.Dir == "rtl" {
			sb.WriteString(";text-align:right;unicode-bidi:isolate")
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}
