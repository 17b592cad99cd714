package pdf

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/tdewolff/canvas"
	"golang.org/x/net/html"

	"github.com/roboco-io/pubrender/internal/render/markup"
)

// ImageLoader resolves an <img> source into a decoded image. Sources that
// fail to load render as a placeholder box.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(ctx context.Context, src string) (image.Image, error)

// Load implements ImageLoader.
func (f ImageLoaderFunc) Load(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

var errRemoteImage = errors.New("remote images are not fetched")

// DataURLLoader decodes base64 data: URLs and refuses everything else, so
// rendering never performs network calls.
var DataURLLoader = ImageLoaderFunc(func(_ context.Context, src string) (image.Image, error) {
	if !strings.HasPrefix(src, "data:") {
		return nil, errRemoteImage
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data url")
	}
	var raw []byte
	var err error
	if strings.HasSuffix(meta, ";base64") {
		raw, err = base64.StdEncoding.DecodeString(payload)
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		raw = []byte(s)
	}
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
})

type textLine struct {
	x, top, height float64
	text           string
	face           *canvas.FontFace
	align          canvas.TextAlign
}

type box struct {
	x, y, w, h   float64
	fill, stroke color.Color
	dashed       bool
}

type picture struct {
	x, y, w, h float64
	img        image.Image
}

// document is the laid out tall page.
type document struct {
	title      string
	width      float64
	height     float64
	background color.Color
	boxes      []box
	pictures   []picture
	lines      []textLine
}

type colors struct {
	primary, secondary, accent, background, surface, text, muted color.Color
}

var (
	rootVarPattern = regexp.MustCompile(`--color-([a-z]+):([^;]+);`)
	hexPattern     = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

func defaultColors() colors {
	return colors{
		primary:    canvas.Hex("#1f3a5f"),
		secondary:  canvas.Hex("#4a6fa5"),
		accent:     canvas.Hex("#c9a227"),
		background: canvas.Hex("#ffffff"),
		surface:    canvas.Hex("#ffffff"),
		text:       canvas.Hex("#1f2933"),
		muted:      canvas.Hex("#6b7280"),
	}
}

// colorsFromCSS reads the template color variables from the stylesheet.
func colorsFromCSS(css string) colors {
	c := defaultColors()
	for _, m := range rootVarPattern.FindAllStringSubmatch(css, -1) {
		v := strings.TrimSpace(m[2])
		if !hexPattern.MatchString(v) {
			continue
		}
		col := canvas.Hex(v)
		switch m[1] {
		case "primary":
			c.primary = col
		case "secondary":
			c.secondary = col
		case "accent":
			c.accent = col
		case "background":
			c.background = col
		case "surface":
			c.surface = col
		case "text":
			c.text = col
		}
	}
	return c
}

type style struct {
	left, width float64
	size        float64
	lineHeight  float64
	bold        bool
	color       color.Color
	align       canvas.TextAlign
	rtl         bool
	ordered     bool
	counter     *int
}

const (
	pageMargin     = 40
	sectionPadding = 20
	logoSize       = 48
)

type layouter struct {
	ctx    context.Context
	fonts  *fontSet
	images ImageLoader
	colors colors
	doc    *document
	y      float64
	err    error
}

// layout parses an export document and positions every visible element in
// a viewport of the given width.
func layout(ctx context.Context, src string, width float64, fonts *fontSet, images ImageLoader) (*document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var css strings.Builder
	var title string
	visit(root, func(n *html.Node) {
		switch {
		case n.Type != html.ElementNode:
		case n.Data == "style":
			css.WriteString(textOf(n))
		case n.Data == "title" && title == "":
			title = strings.TrimSpace(textOf(n))
		}
	})

	l := &layouter{
		ctx:    ctx,
		fonts:  fonts,
		images: images,
		colors: colorsFromCSS(css.String()),
		doc:    &document{title: title, width: width},
		y:      pageMargin,
	}
	l.doc.background = l.colors.background
	body := find(root, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "body" })
	if body == nil {
		return nil, errors.New("parse html: no body")
	}
	l.walk(body, style{
		left:       pageMargin,
		width:      width - 2*pageMargin,
		size:       14,
		lineHeight: 1.6,
		color:      l.colors.text,
		align:      canvas.Left,
	})
	if l.err != nil {
		return nil, l.err
	}
	l.doc.height = l.y + pageMargin
	return l.doc, nil
}

func (l *layouter) walk(n *html.Node, st style) {
	for c := n.FirstChild; c != nil && l.err == nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			l.element(c, st)
		}
	}
}

func (l *layouter) element(n *html.Node, st style) {
	if err := l.ctx.Err(); err != nil {
		l.err = timeoutError(err)
		return
	}
	class := attr(n, "class")
	switch n.Data {
	case "head", "script", "style", "nav", "title":
	case "header":
		l.walk(n, st)
		l.y += 16
	case "footer":
		l.y += 24
		l.walk(n, st)
	case "section":
		l.section(n, st)
	case "h1":
		l.paragraph(textOf(n), st.with(28, true, l.colors.primary).aligned(canvas.Center))
	case "h2":
		l.paragraph(textOf(n), st.with(20, true, l.colors.primary))
	case "h3":
		l.paragraph(textOf(n), st.with(16, true, l.colors.primary))
	case "p":
		l.paragraph(textOf(n), l.paragraphStyle(class, st))
	case "br":
		l.y += st.size * st.lineHeight / 2
	case "ul", "ol":
		if hasClass(class, "menu-items") {
			l.walk(n, st)
			return
		}
		counter := 0
		list := st
		list.left += 20
		list.width -= 20
		list.ordered = n.Data == "ol"
		list.counter = &counter
		l.walk(n, list)
		l.y += st.size / 2
	case "li":
		l.listItem(n, class, st)
	case "figure":
		l.walk(n, st)
		l.y += 8
	case "figcaption":
		l.paragraph(textOf(n), st.with(12, false, l.colors.muted).aligned(canvas.Center))
	case "img":
		l.image(n, st, hasClass(class, "location-logo"))
	case "div":
		l.div(n, class, st)
	default:
		l.walk(n, st)
	}
}

func (l *layouter) paragraphStyle(class string, st style) style {
	switch {
	case hasClass(class, "pub-breadcrumb"):
		return st.with(14, false, l.colors.secondary).aligned(canvas.Center)
	case hasClass(class, "pub-date"):
		return st.with(12, false, l.colors.muted).aligned(canvas.Center)
	case hasClass(class, "section-subtitle"):
		return st.with(15, false, l.colors.secondary)
	case hasClass(class, "section-description"):
		return st.with(13, false, l.colors.muted)
	case hasClass(class, "footer-title"):
		return st.with(13, true, l.colors.primary).aligned(canvas.Center)
	case hasClass(class, "footer-text"), hasClass(class, "footer-note"):
		return st.with(11, false, l.colors.muted).aligned(canvas.Center)
	}
	return st
}

func (l *layouter) div(n *html.Node, class string, st style) {
	switch {
	case hasClass(class, "header-separator"):
		l.doc.boxes = append(l.doc.boxes, box{x: st.left + st.width/2 - 60, y: l.y, w: 120, h: 4, fill: l.colors.accent})
		l.y += 20
	case hasClass(class, "footer-separator"):
		l.doc.boxes = append(l.doc.boxes, box{x: st.left, y: l.y, w: st.width, h: 1, fill: l.colors.muted})
		l.y += 16
	case hasClass(class, "dept-logo"):
		l.logo(n, st)
	case hasClass(class, "empty-state"):
		l.y += 24
		l.paragraph(textOf(n), st.with(14, false, l.colors.muted).aligned(canvas.Center))
		l.y += 24
	case hasClass(class, "image-placeholder"):
		l.placeholder(textOf(n), st, 120)
	case hasClass(class, "block-text"):
		block := st
		if attr(n, "dir") == "rtl" {
			block.rtl = true
			block.align = canvas.Right
			block.size *= 1.2
			block.lineHeight = 2.0
		}
		l.walk(n, block)
		l.y += 8
	default:
		l.walk(n, st)
	}
}

// section lays out a card whose background is drawn behind its content.
func (l *layouter) section(n *html.Node, st style) {
	idx := len(l.doc.boxes)
	top := l.y
	inner := st
	inner.left += sectionPadding
	inner.width -= 2 * sectionPadding
	l.y += sectionPadding
	l.walk(n, inner)
	l.y += sectionPadding

	card := box{x: st.left, y: top, w: st.width, h: l.y - top, fill: l.colors.surface, stroke: canvas.Hex("#dde3ea")}
	if hasClass(attr(n, "class"), "is-global") {
		card.stroke = l.colors.accent
	}
	l.doc.boxes = append(l.doc.boxes[:idx], append([]box{card}, l.doc.boxes[idx:]...)...)
	l.y += 20
}

func (l *layouter) logo(n *html.Node, st style) {
	if img := find(n, func(c *html.Node) bool { return c.Type == html.ElementNode && c.Data == "img" }); img != nil {
		if pic, err := l.images.Load(l.ctx, attr(img, "src")); err == nil {
			l.doc.pictures = append(l.doc.pictures, picture{x: st.left, y: l.y, w: logoSize, h: logoSize, img: pic})
			l.y += logoSize + 8
			return
		}
	}
	l.doc.boxes = append(l.doc.boxes, box{x: st.left, y: l.y, w: logoSize, h: logoSize, fill: l.colors.background, stroke: l.colors.accent})
	label := strings.TrimSpace(textOf(n))
	if label == "" {
		label = "?"
	}
	face := l.fonts.face(22, l.colors.primary, true, false)
	l.doc.lines = append(l.doc.lines, textLine{
		x: st.left + logoSize/2, top: l.y + (logoSize-22*1.4)/2, height: 22 * 1.4,
		text: label, face: face, align: canvas.Center,
	})
	l.y += logoSize + 8
}

func (l *layouter) listItem(n *html.Node, class string, st style) {
	if hasClass(class, "menu-item") {
		l.menuItem(n, st)
		return
	}
	marker := "• "
	if st.counter != nil {
		*st.counter++
		if st.ordered {
			marker = strconv.Itoa(*st.counter) + ". "
		}
	}
	l.paragraphSpaced(marker+textOf(n), st, st.size/4)
}

func (l *layouter) menuItem(n *html.Node, st style) {
	var name string
	var details []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		text := strings.TrimSpace(textOf(c))
		if hasClass(attr(c, "class"), "menu-item-name") {
			name = text
		} else if text != "" {
			details = append(details, text)
		}
	}
	l.paragraphSpaced(name, st.with(14, true, l.colors.text), 2)
	if len(details) > 0 {
		l.paragraphSpaced(strings.Join(details, "  ·  "), st.with(12, false, l.colors.muted), 8)
	}
}

func (l *layouter) image(n *html.Node, st style, centered bool) {
	src := attr(n, "src")
	pic, err := l.images.Load(l.ctx, src)
	if err != nil {
		if ctxErr := l.ctx.Err(); ctxErr != nil {
			l.err = timeoutError(ctxErr)
			return
		}
		if centered {
			return
		}
		l.placeholder(attr(n, "alt"), st, 120)
		return
	}
	b := pic.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w <= 0 || h <= 0 {
		l.placeholder(attr(n, "alt"), st, 120)
		return
	}
	maxW, maxH := st.width, 420.0
	if centered {
		maxW, maxH = 160, 64
	}
	scale := min(maxW/w, maxH/h, 1)
	w, h = w*scale, h*scale
	x := st.left + (st.width-w)/2
	l.doc.pictures = append(l.doc.pictures, picture{x: x, y: l.y, w: w, h: h, img: pic})
	l.y += h + 8
}

func (l *layouter) placeholder(label string, st style, height float64) {
	l.doc.boxes = append(l.doc.boxes, box{x: st.left, y: l.y, w: st.width, h: height, stroke: l.colors.muted, dashed: true})
	if label = strings.TrimSpace(label); label == "" {
		label = markup.NoImageText
	}
	face := l.fonts.face(13, l.colors.muted, false, false)
	l.doc.lines = append(l.doc.lines, textLine{
		x: st.left + st.width/2, top: l.y + height/2 - 10, height: 20,
		text: label, face: face, align: canvas.Center,
	})
	l.y += height + 12
}

func (l *layouter) paragraph(text string, st style) {
	l.paragraphSpaced(text, st, st.size/2)
}

func (l *layouter) paragraphSpaced(text string, st style, after float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	face := l.fonts.face(st.size, st.color, st.bold, st.rtl)
	lh := st.size * st.lineHeight
	x := st.left
	switch st.align {
	case canvas.Center:
		x = st.left + st.width/2
	case canvas.Right:
		x = st.left + st.width
	}
	for _, line := range wrapText(text, st.width, face) {
		l.doc.lines = append(l.doc.lines, textLine{x: x, top: l.y, height: lh, text: line, face: face, align: st.align})
		l.y += lh
	}
	l.y += after
}

func (st style) with(size float64, bold bool, col color.Color) style {
	st.size = size
	st.bold = bold
	st.color = col
	if !st.rtl {
		st.lineHeight = 1.4
	}
	return st
}

func (st style) aligned(a canvas.TextAlign) style {
	st.align = a
	return st
}

// textOf returns the collapsed text content of n; <br> becomes a newline.
func textOf(n *html.Node) string {
	var sb strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(collapse(n.Data))
		case n.Type == html.ElementNode && n.Data == "br":
			sb.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return sb.String()
}

var spaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)

func collapse(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}

func visit(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visit(c, fn)
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(class, name string) bool {
	for _, c := range strings.Fields(class) {
		if c == name {
			return true
		}
	}
	return false
}
