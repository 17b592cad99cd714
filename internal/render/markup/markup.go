// Package markup writes the HTML structure of a merged publication. The
// export and preview renderers both use it, so their section order, logo
// placement and text direction cannot drift apart.
package markup

import (
	"html"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/roboco-io/pubrender/internal/merge"
	"github.com/roboco-io/pubrender/internal/model"
	"github.com/roboco-io/pubrender/internal/render"
	"github.com/roboco-io/pubrender/internal/textfmt"
)

const (
	// EmptyText is shown when a publication has nothing to render.
	EmptyText = "No content available for this publication yet."
	// NoImageText is shown in place of an image block without a URL.
	NoImageText = "No image selected"
	// DateLayout formats the generated date in page headers.
	DateLayout = "January 2, 2006"
)

// Footer is the fixed support block closing every document.
const Footer = `<footer class="pub-footer">` +
	`<div class="footer-separator"></div>` +
	`<p class="footer-title">Need help or have feedback?</p>` +
	`<p class="footer-text">For questions about this publication, contact your local Jamaat office or write to ` +
	`<a href="mailto:support@umoor.app">support@umoor.app</a>.</p>` +
	`<p class="footer-note">This publication was generated automatically. Please do not reply to this message.</p>` +
	`</footer>`

// Options control optional annotations.
type Options struct {
	// Annotate adds data-section-id and data-block-id attributes used by the
	// live preview to map rendered nodes back to the editor model.
	Annotate bool
}

// Writer accumulates markup.
type Writer struct {
	sb   strings.Builder
	opts Options
}

// NewWriter creates a markup writer.
func NewWriter(opts Options) *Writer {
	return &Writer{opts: opts}
}

// String returns the markup written so far.
func (w *Writer) String() string {
	return w.sb.String()
}

// Raw writes s unescaped.
func (w *Writer) Raw(s string) {
	w.sb.WriteString(s)
}

func (w *Writer) text(s string) {
	w.sb.WriteString(html.EscapeString(s))
}

func (w *Writer) attr(name, value string) {
	w.sb.WriteString(" " + name + `="`)
	w.sb.WriteString(html.EscapeString(value))
	w.sb.WriteString(`"`)
}

// Header writes the page header: separator, title, breadcrumb, generated
// date and the optional location logo.
func (w *Writer) Header(doc render.Document) {
	w.Raw(`<header class="pub-header">`)
	w.Raw(`<div class="header-separator"></div>`)
	if strings.TrimSpace(doc.LocationLogo) != "" {
		w.Raw(`<img class="location-logo"`)
		w.attr("src", doc.LocationLogo)
		w.attr("alt", doc.LocationName)
		w.Raw(">")
	}
	w.Raw(`<h1 class="pub-title">`)
	w.text(doc.Title)
	w.Raw(`</h1>`)
	if bc := doc.Breadcrumb(); bc != "" {
		w.Raw(`<p class="pub-breadcrumb">`)
		w.text(bc)
		w.Raw(`</p>`)
	}
	if !doc.GeneratedAt.IsZero() {
		w.Raw(`<p class="pub-date">Generated on <time`)
		w.attr("datetime", doc.GeneratedAt.Format(time.RFC3339))
		w.Raw(">")
		w.text(doc.GeneratedAt.Format(DateLayout))
		w.Raw(`</time></p>`)
	}
	w.Raw(`</header>`)
}

// Body writes one section element per merged entry, or the empty-state
// placeholder when there is nothing to render.
func (w *Writer) Body(r merge.Result) {
	w.Raw(`<main class="pub-body">`)
	if r.Empty() {
		w.Raw(`<div class="empty-state">`)
		w.text(EmptyText)
		w.Raw(`</div>`)
	}
	for _, e := range r.Entries() {
		w.Section(e)
	}
	w.Raw(`</main>`)
}

// Section writes one merged entry.
func (w *Writer) Section(e merge.Entry) {
	s := e.Section
	w.Raw(`<section class="pub-section`)
	if s.IsGlobal {
		w.Raw(` is-global`)
	}
	w.Raw(`"`)
	if w.opts.Annotate {
		w.attr("data-section-id", s.ID)
		w.attr("data-department-id", s.DepartmentID)
	}
	w.Raw(">")

	w.Raw(`<div class="section-header">`)
	if e.ShowDepartmentLogo {
		w.logo(s)
	}
	w.Raw(`<div class="section-heading"><h2 class="section-title">`)
	w.text(s.DisplayTitle())
	w.Raw(`</h2>`)
	if sub := strings.TrimSpace(s.Subheading); sub != "" {
		w.Raw(`<p class="section-subtitle">`)
		w.text(sub)
		w.Raw(`</p>`)
	}
	if desc := strings.TrimSpace(s.Description); desc != "" {
		w.Raw(`<p class="section-description">`)
		w.text(desc)
		w.Raw(`</p>`)
	}
	w.Raw(`</div></div>`)

	w.Raw(`<div class="section-content">`)
	for _, b := range s.Children {
		w.Block(b)
	}
	w.Raw(`</div></section>`)
}

func (w *Writer) logo(s model.Section) {
	switch s.DepartmentLogo.Kind {
	case model.LogoKindURL:
		if s.DepartmentLogo.Value != "" {
			w.Raw(`<div class="dept-logo"><img`)
			w.attr("src", s.DepartmentLogo.Value)
			w.attr("alt", s.DepartmentName)
			w.Raw(`></div>`)
			return
		}
	case model.LogoKindGlyph:
		if s.DepartmentLogo.Value != "" {
			w.Raw(`<div class="dept-logo dept-logo-glyph">`)
			w.text(s.DepartmentLogo.Value)
			w.Raw(`</div>`)
			return
		}
	}
	w.Raw(`<div class="dept-logo dept-logo-placeholder">`)
	w.text(initial(s.DepartmentName))
	w.Raw(`</div>`)
}

// initial returns the first letter of name, upper-cased, or "?".
func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// Block writes one content block.
func (w *Writer) Block(b model.Block) {
	switch b.Kind {
	case model.BlockKindText:
		w.textBlock(b)
	case model.BlockKindImage:
		w.imageBlock(b)
	case model.BlockKindMenu:
		w.menuBlock(b)
	}
}

func (w *Writer) open(tag, class string, b model.Block) {
	w.Raw("<" + tag)
	w.attr("class", class)
	if w.opts.Annotate {
		w.attr("data-block-id", b.ID)
	}
}

func (w *Writer) textBlock(b model.Block) {
	typo := textfmt.TypographyFor(b.Text.Language())
	w.open("div", "block block-text "+typo.Class, b)
	w.attr("dir", typo.Dir)
	w.Raw(">")
	textfmt.WriteHTML(&w.sb, textfmt.Format(b.Text.Content))
	w.Raw(`</div>`)
}

func (w *Writer) imageBlock(b model.Block) {
	img := b.Image
	if !img.HasImage() {
		w.open("div", "block block-image image-placeholder", b)
		w.Raw(">")
		w.text(NoImageText)
		w.Raw(`</div>`)
		return
	}
	w.open("figure", "block block-image", b)
	w.Raw(">")
	link := strings.TrimSpace(img.LinkURL)
	if link != "" {
		w.Raw(`<a`)
		w.attr("href", link)
		w.Raw(` target="_blank" rel="noopener noreferrer">`)
	}
	w.Raw(`<img`)
	w.attr("src", img.ImageURL)
	w.attr("alt", img.AltText)
	w.Raw(`>`)
	if link != "" {
		w.Raw(`</a>`)
	}
	if alt := strings.TrimSpace(img.AltText); alt != "" {
		w.Raw(`<figcaption>`)
		w.text(alt)
		w.Raw(`</figcaption>`)
	}
	w.Raw(`</figure>`)
}

func (w *Writer) menuBlock(b model.Block) {
	m := b.Menu
	w.open("div", "block block-menu", b)
	w.Raw(">")
	if h := strings.TrimSpace(m.Header); h != "" {
		w.Raw(`<h3 class="menu-header">`)
		w.text(h)
		w.Raw(`</h3>`)
	}
	if m.IsEmpty() {
		w.Raw(`<p class="menu-empty">No menu items yet.</p></div>`)
		return
	}
	w.Raw(`<ul class="menu-items">`)
	for _, item := range m.Items {
		w.Raw(`<li class="menu-item"><span class="menu-item-name">`)
		w.text(item.Name)
		w.Raw(`</span>`)
		if n := strings.TrimSpace(item.Nutrition); n != "" {
			w.Raw(`<span class="menu-item-nutrition">`)
			w.text(n)
			w.Raw(`</span>`)
		}
		if a := strings.TrimSpace(item.Allergens); a != "" {
			w.Raw(`<span class="menu-item-allergens">Allergens: `)
			w.text(a)
			w.Raw(`</span>`)
		}
		w.Raw(`</li>`)
	}
	w.Raw(`</ul></div>`)
}
