// Package preview renders the live on-screen preview of a publication. It
// shares its structure with the export renderer and adds editor annotations
// plus export actions.
package preview

import (
	"context"
	"encoding/json"
	"html"

	"github.com/roboco-io/pubrender/internal/render"
	"github.com/roboco-io/pubrender/internal/render/markup"
)

// Action is an export action offered next to the preview.
type Action struct {
	Label    string
	URL      string
	Filename string // suggested download name; empty opens in place
}

// Options configure the preview page.
type Options struct {
	Actions []Action
	// LiveURL is a websocket path; when set the page refreshes on every
	// "updated" message received from it.
	LiveURL string
	// DocumentURL serves Subtree for the same publication. When set, live
	// updates replace the document in place instead of reloading the page.
	DocumentURL string
}

// Renderer produces preview pages.
type Renderer struct {
	opts Options
}

var _ render.Renderer = (*Renderer)(nil)

// NewRenderer creates a live preview renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Render implements render.Renderer.
func (r *Renderer) Render(_ context.Context, doc render.Document) ([]byte, error) {
	return []byte(Page(doc, r.opts)), nil
}

// Subtree returns the annotated publication markup without the page shell,
// as swapped into an open preview page on live updates.
func Subtree(doc render.Document) string {
	w := markup.NewWriter(markup.Options{Annotate: true})
	writeSubtree(w, doc)
	return w.String()
}

func writeSubtree(w *markup.Writer, doc render.Document) {
	w.Raw(`<div class="pub-document template-` + html.EscapeString(string(doc.Profile.Template)) + `" id="preview-root">`)
	w.Header(doc)
	w.Body(doc.Result)
	w.Raw(markup.Footer)
	w.Raw(`</div>`)
}

// Page returns the full preview page.
func Page(doc render.Document, opts Options) string {
	w := markup.NewWriter(markup.Options{Annotate: true})
	w.Raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	w.Raw(`<meta charset="utf-8">` + "\n")
	w.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	w.Raw("<title>Preview: " + html.EscapeString(doc.Title) + "</title>\n")
	w.Raw("<style>\n" + markup.Stylesheet(doc.Profile) + toolbarCSS + "</style>\n")
	w.Raw("</head>\n<body class=\"preview\">\n")

	if len(opts.Actions) > 0 {
		w.Raw(`<nav class="preview-toolbar"><span class="preview-label">Preview</span>`)
		for _, a := range opts.Actions {
			w.Raw(`<a class="preview-action" href="` + html.EscapeString(a.URL) + `"`)
			if a.Filename != "" {
				w.Raw(` download="` + html.EscapeString(a.Filename) + `"`)
			}
			w.Raw(">" + html.EscapeString(a.Label) + "</a>")
		}
		w.Raw(`</nav>`)
	}

	writeSubtree(w, doc)
	if opts.LiveURL != "" {
		w.Raw("\n<script>" + liveScript(opts.LiveURL, opts.DocumentURL) + "</script>")
	}
	w.Raw("\n</body>\n</html>\n")
	return w.String()
}

const toolbarCSS = `.preview-toolbar{position:sticky;top:0;z-index:10;display:flex;gap:12px;align-items:center;padding:10px 16px;background:#111827;color:#ffffff}
.preview-label{font-weight:600;margin-right:auto}
.preview-action{color:#ffffff;text-decoration:none;padding:6px 12px;border-radius:6px;background:var(--color-primary)}
[data-section-id]:hover{outline:2px dashed var(--color-accent);outline-offset:4px}
`

// liveScript opens the websocket relative to the current host. With a
// document path it fetches the fresh subtree and replaces #preview-root,
// falling back to a reload if the fetch fails.
func liveScript(live, document string) string {
	quotedLive, _ := json.Marshal(live)
	refresh := `location.reload();`
	if document != "" {
		quotedDoc, _ := json.Marshal(document)
		refresh = `fetch(` + string(quotedDoc) + `).then(function(r){if(!r.ok){throw r;}return r.text();})` +
			`.then(function(h){document.getElementById("preview-root").outerHTML=h;})` +
			`.catch(function(){location.reload();});`
	}
	return `(function(){var s=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+` + string(quotedLive) +
		`);s.onmessage=function(e){var m=JSON.parse(e.data);if(m.type==="updated"){` + refresh + `}};})();`
}
