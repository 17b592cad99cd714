package textfmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roboco-io/pubrender/internal/model"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Node
	}{
		{
			name:  "bullets then paragraph",
			input: "• First\n• Second\nThird line",
			want: []Node{
				{Type: NodeBulletList, Items: []string{"First", "Second"}},
				{Type: NodeParagraph, Text: "Third line"},
			},
		},
		{
			name:  "numbered list drops numerals",
			input: "1. Alpha\n2. Beta",
			want: []Node{
				{Type: NodeNumberedList, Items: []string{"Alpha", "Beta"}},
			},
		},
		{
			name:  "numerals out of order",
			input: "7. Alpha\n3.Beta",
			want: []Node{
				{Type: NodeNumberedList, Items: []string{"Alpha", "Beta"}},
			},
		},
		{
			name:  "all bullet markers",
			input: "- dash\n* star\n  • dot  ",
			want: []Node{
				{Type: NodeBulletList, Items: []string{"dash", "star", "dot"}},
			},
		},
		{
			name:  "list type change closes list",
			input: "• a\n1. b\n• c",
			want: []Node{
				{Type: NodeBulletList, Items: []string{"a"}},
				{Type: NodeNumberedList, Items: []string{"b"}},
				{Type: NodeBulletList, Items: []string{"c"}},
			},
		},
		{
			name:  "blank line between paragraphs is a break",
			input: "one\n\ntwo",
			want: []Node{
				{Type: NodeParagraph, Text: "one"},
				{Type: NodeBreak},
				{Type: NodeParagraph, Text: "two"},
			},
		},
		{
			name:  "blank lines next to lists are swallowed",
			input: "intro\n\n• a\n• b\n\noutro",
			want: []Node{
				{Type: NodeParagraph, Text: "intro"},
				{Type: NodeBulletList, Items: []string{"a", "b"}},
				{Type: NodeParagraph, Text: "outro"},
			},
		},
		{
			name:  "blank lines inside a list keep it open",
			input: "• a\n\n• b\n\n\n- c",
			want: []Node{
				{Type: NodeBulletList, Items: []string{"a", "b", "c"}},
			},
		},
		{
			name:  "blank line between different list types",
			input: "• a\n\n1. b",
			want: []Node{
				{Type: NodeBulletList, Items: []string{"a"}},
				{Type: NodeNumberedList, Items: []string{"b"}},
			},
		},
		{
			name:  "crlf input",
			input: "one\r\n• two",
			want: []Node{
				{Type: NodeParagraph, Text: "one"},
				{Type: NodeBulletList, Items: []string{"two"}},
			},
		},
		{
			name:  "number without text is a paragraph",
			input: "2024.",
			want:  []Node{{Type: NodeParagraph, Text: "2024."}},
		},
		{
			name:  "empty input",
			input: "",
			want:  []Node{{Type: NodeParagraph, Text: Placeholder}},
		},
		{
			name:  "whitespace input",
			input: " \n\t\n",
			want:  []Node{{Type: NodeParagraph, Text: Placeholder}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.input))
		})
	}
}

func TestFormat_ParagraphsIdempotent(t *testing.T) {
	input := "First paragraph\nSecond paragraph\n\nThird after a break"
	once := Format(input)

	var lines []string
	for _, n := range once {
		switch n.Type {
		case NodeParagraph:
			lines = append(lines, n.Text)
		case NodeBreak:
			lines = append(lines, "")
		}
	}
	twice := Format(strings.Join(lines, "\n"))
	assert.Equal(t, once, twice)
}

func TestFormat_LanguageIndependent(t *testing.T) {
	assert.Equal(t,
		[]Node{{Type: NodeBulletList, Items: []string{"مرحبا", "شكرا"}}},
		Format("• مرحبا\n• شكرا"),
	)
}

func TestHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"• First\n• Second\nThird line", "<ul><li>First</li><li>Second</li></ul><p>Third line</p>"},
		{"1. Alpha\n2. Beta", "<ol><li>Alpha</li><li>Beta</li></ol>"},
		{"a\n\nb", "<p>a</p><br><p>b</p>"},
		{"<script>", "<p>&lt;script&gt;</p>"},
		{"", "<p>No content added yet...</p>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTML(tt.input), "input=%q", tt.input)
	}
}

func TestTypographyFor(t *testing.T) {
	p := TypographyFor(model.LanguagePrimary)
	s := TypographyFor(model.LanguageSecondary)

	assert.Equal(t, "ltr", p.Dir)
	assert.Equal(t, "rtl", s.Dir)
	assert.NotEqual(t, p.FontFamily, s.FontFamily)
	assert.Greater(t, s.LineHeight, p.LineHeight)
	assert.Greater(t, s.FontScale, p.FontScale)
}

func TestCSS(t *testing.T) {
	css := CSS()
	assert.Contains(t, css, ".lang-primary{")
	assert.Contains(t, css, ".lang-secondary{")
	assert.Contains(t, css, "direction:rtl")
	assert.Contains(t, css, "line-height:2;")
}
