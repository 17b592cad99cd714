package preview

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/roboco-io/pubrender/internal/merge"
	"github.com/roboco-io/pubrender/internal/model"
	"github.com/roboco-io/pubrender/internal/render"
	"github.com/roboco-io/pubrender/internal/render/export"
	"github.com/roboco-io/pubrender/internal/render/markup"
)

func sampleDocument() render.Document {
	target := model.NewPublication("Weekly")
	target.Sections = []model.Section{
		{ID: "t1", DepartmentID: "B", DepartmentName: "Umoor Talimiyah", Subheading: "Classes", Children: []model.Block{
			model.NewTextBlock("1. Alpha\n2. Beta\n\nClosing note", model.LanguagePrimary),
			{ID: "img", Kind: model.BlockKindImage, Image: &model.ImageBlock{ImageURL: "https://x/a.jpg", AltText: "Hall", LinkURL: "https://x"}},
		}},
		{ID: "t2", DepartmentID: "A", DepartmentName: "Umoor Deeniyah", Children: []model.Block{
			model.NewMenuBlock("Niyaz", model.MenuItem{Name: "Soup", Allergens: "Dairy"}),
		}},
	}
	host := model.NewPublication("Host")
	host.Sections = []model.Section{
		{ID: "h1", DepartmentID: "A", DepartmentName: "Umoor Deeniyah", DepartmentLogo: model.URLLogo("https://x/a.png"), IsGlobal: true, Children: []model.Block{
			model.NewTextBlock("• بسم الله\n• الحمد لله", model.LanguageSecondary),
			model.NewImageBlock("", ""),
		}},
	}
	return render.NewDocument(render.Input{
		Publication:  target,
		Host:         &host,
		Departments:  merge.Departments{"B": {ID: "B", OrderPreference: 1}},
		EventName:    "Ashara",
		LocationName: "Pune",
		LocationLogo: "https://x/pune.png",
	}, render.Profile{Template: render.TemplateBranded}, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
}

func TestPage(t *testing.T) {
	doc := sampleDocument()
	out := Page(doc, Options{Actions: []Action{
		{Label: "Export HTML", URL: "/publications/p1/export.html", Filename: "Pune - Weekly.html"},
		{Label: "Export PDF", URL: "/publications/p1/export.pdf"},
	}})

	assert.Contains(t, out, `<nav class="preview-toolbar">`)
	assert.Contains(t, out, `<a class="preview-action" href="/publications/p1/export.html" download="Pune - Weekly.html">Export HTML</a>`)
	assert.Contains(t, out, `<a class="preview-action" href="/publications/p1/export.pdf">Export PDF</a>`)
	assert.Contains(t, out, `data-section-id="h1"`)
	assert.Contains(t, out, `data-block-id="img"`)
	assert.Contains(t, out, `id="preview-root"`)
}

func TestPage_NoActions(t *testing.T) {
	out := Page(sampleDocument(), Options{})
	assert.NotContains(t, out, "preview-toolbar\"")
	assert.NotContains(t, out, "<script>")
}

func TestPage_Live(t *testing.T) {
	out := Page(sampleDocument(), Options{LiveURL: "/publications/p1/live"})
	assert.Contains(t, out, `<script>(function(){var s=new WebSocket(`)
	assert.Contains(t, out, `+"/publications/p1/live");`)
	assert.Less(t, strings.Index(out, `id="preview-root"`), strings.Index(out, "<script>"), "script follows the document")
	assert.Contains(t, out, "location.reload();")
	assert.NotContains(t, out, "fetch(")
}

func TestPage_LiveSwapsDocument(t *testing.T) {
	out := Page(sampleDocument(), Options{
		LiveURL:     "/publications/p1/live",
		DocumentURL: "/publications/p1/preview/document?template=minimal",
	})
	assert.Contains(t, out, `fetch("/publications/p1/preview/document?template=minimal")`)
	assert.Contains(t, out, `document.getElementById("preview-root").outerHTML=h`)
}

func TestSubtree(t *testing.T) {
	doc := sampleDocument()
	sub := Subtree(doc)
	assert.True(t, strings.HasPrefix(sub, `<div class="pub-document template-`))
	assert.Contains(t, sub, `id="preview-root"`)
	assert.NotContains(t, sub, "<html")
	assert.Contains(t, Page(doc, Options{}), sub, "the page embeds the same subtree")
}

func TestRenderer(t *testing.T) {
	doc := sampleDocument()
	data, err := NewRenderer(Options{}).Render(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, Page(doc, Options{}), string(data))
}

func TestEmpty(t *testing.T) {
	doc := render.NewDocument(render.Input{Publication: model.NewPublication("Empty")}, render.Profile{}, time.Time{})
	assert.Contains(t, Subtree(doc), markup.EmptyText)
}

// The preview and the export must be structurally identical encodings of
// the same merged publication once editor annotations are removed.
func TestPreviewMatchesExport(t *testing.T) {
	for _, doc := range []render.Document{
		sampleDocument(),
		render.NewDocument(render.Input{Publication: model.NewPublication("Empty")}, render.Profile{}, time.Time{}),
	} {
		exported := documentTree(t, export.HTML(doc))
		previewed := documentTree(t, Page(doc, Options{Actions: []Action{{Label: "Export", URL: "/x"}}}))
		assert.Equal(t, exported, previewed)
		assert.NotEmpty(t, exported)
	}
}

// documentTree serializes the pub-document subtree of page, dropping
// data-* and id attributes.
func documentTree(t *testing.T, page string) string {
	t.Helper()
	root, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)

	doc := find(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && strings.Contains(attr(n, "class"), "pub-document")
	})
	require.NotNil(t, doc, "pub-document not found")

	var sb strings.Builder
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		indent := strings.Repeat(" ", depth)
		switch n.Type {
		case html.ElementNode:
			var attrs []string
			for _, a := range n.Attr {
				if a.Key == "id" || strings.HasPrefix(a.Key, "data-") {
					continue
				}
				attrs = append(attrs, a.Key+"="+a.Val)
			}
			sort.Strings(attrs)
			sb.WriteString(indent + "<" + n.Data + " " + strings.Join(attrs, " ") + ">\n")
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				sb.WriteString(indent + s + "\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth+1)
		}
	}
	walk(doc, 0)
	return sb.String()
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
