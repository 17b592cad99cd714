// Package render defines the input shared by all publication renderers.
package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roboco-io/pubrender/internal/merge"
	"github.com/roboco-io/pubrender/internal/model"
)

// Renderer encodes a merged publication into an output format such as an
// HTML document or a PDF file.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// Template selects the visual style of exported documents. Templates only
// change styling, never structure.
type Template string

const (
	TemplateProfessional Template = "professional"
	TemplateMinimal      Template = "minimal"
	TemplateBranded      Template = "branded"
)

// Templates lists the supported templates.
var Templates = []Template{TemplateProfessional, TemplateMinimal, TemplateBranded}

// ParseTemplate returns the template with the given name.
func ParseTemplate(name string) (Template, error) {
	t := Template(strings.ToLower(strings.TrimSpace(name)))
	if t == "" {
		return TemplateProfessional, nil
	}
	for _, known := range Templates {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown template %q", name)
}

// BrandColors override the template palette.
type BrandColors struct {
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary" json:"secondary"`
	Accent    string `yaml:"accent" json:"accent"`
}

// Profile is the target profile of an export.
type Profile struct {
	Template Template
	Colors   *BrandColors
}

// Document is everything a renderer needs: the merged sections plus the
// publication and location metadata shown in the page header.
type Document struct {
	Result       merge.Result
	Title        string
	EventName    string
	LocationName string
	LocationLogo string
	Profile      Profile
	GeneratedAt  time.Time
}

// Breadcrumb returns the header label "{event} • {location}".
func (d Document) Breadcrumb() string {
	return model.BreadcrumbLabel(d.EventName, d.LocationName)
}

// Input bundles the unmerged sources of a Document.
type Input struct {
	Publication  model.Publication
	Host         *model.Publication
	Departments  merge.Lookup
	EventName    string
	LocationName string
	LocationLogo string
}

// NewDocument merges the input and fills the header metadata.
func NewDocument(in Input, profile Profile, now time.Time) Document {
	if profile.Template == "" {
		profile.Template = TemplateProfessional
	}
	return Document{
		Result:       merge.Merge(in.Publication, in.Host, in.Departments),
		Title:        in.Publication.Title,
		EventName:    in.EventName,
		LocationName: in.LocationName,
		LocationLogo: in.LocationLogo,
		Profile:      profile,
		GeneratedAt:  now,
	}
}

// Filename suggests a download name: "{location} - {title}{ext}", without
// the location prefix when no location name is known.
func Filename(locationName, title, ext string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "publication"
	}
	name := title
	if loc := strings.TrimSpace(locationName); loc != "" {
		name = loc + " - " + title
	}
	return sanitizeFilename(name) + ext
}

func sanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}
