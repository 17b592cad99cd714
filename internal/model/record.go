package model

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Record is a publication as stored by the persistence layer. Content holds
// the serialized sections.
type Record struct {
	ID         string          `json:"id" db:"id"`
	EventID    string          `json:"event_id" db:"event_id"`
	LocationID string          `json:"location_id" db:"location_id"`
	Title      string          `json:"title" db:"title"`
	Content    json.RawMessage `json:"content" db:"content"`
	Status     Status          `json:"status" db:"status"`
}

// Publication opens the record. Malformed content opens as an empty
// publication; an unknown status is treated as draft.
func (r Record) Publication(log zerolog.Logger) Publication {
	status := r.Status
	if !status.Valid() {
		status = StatusDraft
	}
	return Publication{
		ID:         r.ID,
		EventID:    r.EventID,
		LocationID: r.LocationID,
		Title:      r.Title,
		Sections:   DecodeSections(r.Content, log.With().Str("publication", r.ID).Logger()),
		Status:     status,
	}
}

// NewRecord serializes a publication for storage.
func NewRecord(p Publication) (Record, error) {
	content, err := EncodeSections(p.Sections)
	if err != nil {
		return Record{}, fmt.Errorf("publication %s: %w", p.ID, err)
	}
	status := p.Status
	if status == "" {
		status = StatusDraft
	}
	return Record{
		ID:         p.ID,
		EventID:    p.EventID,
		LocationID: p.LocationID,
		Title:      p.Title,
		Content:    content,
		Status:     status,
	}, nil
}
