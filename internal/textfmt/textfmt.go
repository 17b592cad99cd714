// Package textfmt turns freeform line-oriented text into paragraphs, breaks
// and lists. Both HTML renderers use it so that preview and export agree.
package textfmt

import (
	"regexp"
	"strings"
)

// Placeholder is rendered in place of empty text content.
const Placeholder = "No content added yet..."

// NodeType represents the type of formatted node.
type NodeType string

const (
	NodeParagraph    NodeType = "paragraph"
	NodeBreak        NodeType = "break"
	NodeBulletList   NodeType = "bullet_list"
	NodeNumberedList NodeType = "numbered_list"
)

// Node is one structural element of formatted text.
type Node struct {
	Type  NodeType `json:"type"`
	Text  string   `json:"text,omitempty"`  // paragraph text
	Items []string `json:"items,omitempty"` // list item texts
}

// IsList reports whether the node is a bullet or numbered list.
func (n Node) IsList() bool {
	return n.Type == NodeBulletList || n.Type == NodeNumberedList
}

var numberedPattern = regexp.MustCompile(`^(\d+)\.\s*(.+)`)

const bulletMarkers = "•-*"

type lineKind int

const (
	lineBlank lineKind = iota
	lineText
	lineBullet
	lineNumbered
)

func classify(line string) (lineKind, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return lineBlank, ""
	}
	for _, m := range bulletMarkers {
		if strings.HasPrefix(trimmed, string(m)) {
			return lineBullet, strings.TrimSpace(strings.TrimPrefix(trimmed, string(m)))
		}
	}
	if sub := numberedPattern.FindStringSubmatch(trimmed); sub != nil {
		// the numeral is dropped; output numbering is regenerated
		return lineNumbered, strings.TrimSpace(sub[2])
	}
	return lineText, trimmed
}

// Format converts content into nodes. Blank content yields a single
// placeholder paragraph.
func Format(content string) []Node {
	if strings.TrimSpace(content) == "" {
		return []Node{{Type: NodeParagraph, Text: Placeholder}}
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	var (
		nodes   []Node
		current *Node
	)
	closeList := func() {
		if current != nil {
			nodes = append(nodes, *current)
			current = nil
		}
	}
	openOrAppend := func(t NodeType, item string) {
		if current != nil && current.Type != t {
			closeList()
		}
		if current == nil {
			current = &Node{Type: t}
		}
		current.Items = append(current.Items, item)
	}

	for i, line := range lines {
		kind, text := classify(line)
		switch kind {
		case lineBullet:
			openOrAppend(NodeBulletList, text)
		case lineNumbered:
			openOrAppend(NodeNumberedList, text)
		case lineText:
			closeList()
			nodes = append(nodes, Node{Type: NodeParagraph, Text: text})
		case lineBlank:
			if current != nil && continuesList(current.Type, lines, i) {
				continue
			}
			adjacent := current != nil || nextIsList(lines, i)
			closeList()
			if !adjacent {
				nodes = append(nodes, Node{Type: NodeBreak})
			}
		}
	}
	closeList()
	return nodes
}

// continuesList reports whether the next non-blank line after i is an item
// of the same list type, in which case the blank lines stay inside the list.
func continuesList(t NodeType, lines []string, i int) bool {
	for _, line := range lines[i+1:] {
		kind, _ := classify(line)
		switch kind {
		case lineBlank:
			continue
		case lineBullet:
			return t == NodeBulletList
		case lineNumbered:
			return t == NodeNumberedList
		default:
			return false
		}
	}
	return false
}

func nextIsList(lines []string, i int) bool {
	if i+1 >= len(lines) {
		return false
	}
	kind, _ := classify(lines[i+1])
	return kind == lineBullet || kind == lineNumbered
}
