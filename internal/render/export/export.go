// Package export renders a merged publication as a self-contained HTML
// document suitable for download, email and PDF rasterization.
package export

import (
	"context"
	"html"

	"github.com/roboco-io/pubrender/internal/render"
	"github.com/roboco-io/pubrender/internal/render/markup"
)

// Renderer produces standalone HTML documents.
type Renderer struct{}

var _ render.Renderer = (*Renderer)(nil)

// NewRenderer creates a static export renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render implements render.Renderer.
func (r *Renderer) Render(_ context.Context, doc render.Document) ([]byte, error) {
	return []byte(HTML(doc)), nil
}

// HTML returns the export document for doc.
func HTML(doc render.Document) string {
	w := markup.NewWriter(markup.Options{})
	w.Raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	w.Raw(`<meta charset="utf-8">` + "\n")
	w.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	w.Raw("<title>" + html.EscapeString(doc.Title) + "</title>\n")
	w.Raw("<style>\n" + markup.Stylesheet(doc.Profile) + "</style>\n")
	w.Raw("</head>\n<body>\n")
	w.Raw(`<div class="pub-document template-` + html.EscapeString(string(doc.Profile.Template)) + `">`)
	w.Header(doc)
	w.Body(doc.Result)
	w.Raw(markup.Footer)
	w.Raw("</div>\n</body>\n</html>\n")
	return w.String()
}

// Filename returns the suggested download name of the HTML export.
func Filename(doc render.Document) string {
	return render.Filename(doc.LocationName, doc.Title, ".html")
}
