package model

import (
	"net/url"
	"path"
	"strings"
)

// LogoKind distinguishes image logos from short glyph fallbacks (emoji, initials).
type LogoKind string

const (
	LogoKindNone  LogoKind = ""
	LogoKindURL   LogoKind = "url"
	LogoKindGlyph LogoKind = "glyph"
)

// Logo is a department logo, classified once when it enters the system.
type Logo struct {
	Kind  LogoKind
	Value string
}

// URLLogo returns a logo pointing at an image.
func URLLogo(u string) Logo { return Logo{Kind: LogoKindURL, Value: u} }

// GlyphLogo returns a logo drawn as text.
func GlyphLogo(g string) Logo { return Logo{Kind: LogoKindGlyph, Value: g} }

// IsZero returns true if no logo is set.
func (l Logo) IsZero() bool {
	return l.Kind == LogoKindNone || l.Value == ""
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".webp": true,
}

// ParseLogo classifies a raw logo value. Absolute http(s) URLs, data URIs,
// paths starting with "/", "./" or "../" and anything ending in an image
// extension are images; anything else is a glyph.
func ParseLogo(raw string) Logo {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Logo{}
	}
	for _, prefix := range []string{"data:image/", "/", "./", "../"} {
		if strings.HasPrefix(raw, prefix) {
			return URLLogo(raw)
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return GlyphLogo(raw)
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return URLLogo(raw)
	}
	if imageExts[strings.ToLower(path.Ext(u.Path))] {
		return URLLogo(raw)
	}
	return GlyphLogo(raw)
}

// Section is an ordered, department-tagged container of content blocks
// ("parent block").
type Section struct {
	ID             string
	DepartmentID   string
	DepartmentName string
	DepartmentLogo Logo
	Title          string
	Subheading     string
	Description    string
	Children       []Block
	IsGlobal       bool
	LocationID     string
}

// NewSection creates an empty section for a department with a fresh id.
func NewSection(departmentID, departmentName, locationID string) Section {
	return Section{
		ID:             newID(),
		DepartmentID:   departmentID,
		DepartmentName: departmentName,
		LocationID:     locationID,
		Children:       make([]Block, 0),
	}
}

// DisplayTitle returns the title to render, falling back to the department name.
func (s Section) DisplayTitle() string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	return s.DepartmentName
}

// Block returns the child block with the given id.
func (s Section) Block(id string) (Block, bool) {
	if i := s.blockIndex(id); i >= 0 {
		return s.Children[i], true
	}
	return Block{}, false
}

func (s Section) blockIndex(id string) int {
	for i := range s.Children {
		if s.Children[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	out.Children = make([]Block, len(s.Children))
	for i := range s.Children {
		out.Children[i] = s.Children[i].Clone()
	}
	return out
}
