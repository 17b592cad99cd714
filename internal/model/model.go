// Package model defines the publication content model: publications made of
// ordered sections, each holding ordered content blocks.
package model

import (
	"strings"

	"github.com/google/uuid"
)

// Status is the persisted lifecycle state of a publication.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// CanTransition reports whether a publication may move from s to next.
// Archived is terminal.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusPublished || next == StatusArchived
	case StatusPublished:
		return next == StatusArchived
	}
	return false
}

// Publication is a titled, ordered list of sections for one location of an event.
type Publication struct {
	ID         string    `json:"id,omitempty"`
	EventID    string    `json:"eventId,omitempty"`
	LocationID string    `json:"locationId,omitempty"`
	Title      string    `json:"title" validate:"required"`
	Sections   []Section `json:"sections" validate:"min=1"`
	Status     Status    `json:"status,omitempty"`
}

// NewPublication creates an empty draft publication.
func NewPublication(title string) Publication {
	return Publication{
		Title:    title,
		Sections: make([]Section, 0),
		Status:   StatusDraft,
	}
}

// IsEmpty returns true if the publication has no sections.
func (p Publication) IsEmpty() bool {
	return len(p.Sections) == 0
}

// Section returns the section with the given id.
func (p Publication) Section(id string) (Section, bool) {
	if i := p.sectionIndex(id); i >= 0 {
		return p.Sections[i], true
	}
	return Section{}, false
}

func (p Publication) sectionIndex(id string) int {
	for i := range p.Sections {
		if p.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the publication.
func (p Publication) Clone() Publication {
	out := p
	out.Sections = make([]Section, len(p.Sections))
	for i := range p.Sections {
		out.Sections[i] = p.Sections[i].Clone()
	}
	return out
}

// BreadcrumbLabel builds the display label shown under a publication title.
func BreadcrumbLabel(eventName, locationName string) string {
	eventName = strings.TrimSpace(eventName)
	locationName = strings.TrimSpace(locationName)
	switch {
	case eventName == "":
		return locationName
	case locationName == "":
		return eventName
	}
	return eventName + " • " + locationName
}

func newID() string {
	return uuid.New().String()
}
