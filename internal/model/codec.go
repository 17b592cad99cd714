package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrMalformedContent is reported when persisted content cannot be decoded.
var ErrMalformedContent = errors.New("malformed publication content")

// blockWire is the persisted shape of a content block.
type blockWire struct {
	ID            string     `json:"id"`
	Type          BlockKind  `json:"type"`
	Content       string     `json:"content,omitempty"`
	Language      Language   `json:"language,omitempty"`
	ImageURL      string     `json:"imageUrl,omitempty"`
	AltText       string     `json:"altText,omitempty"`
	LinkURL       string     `json:"linkUrl,omitempty"`
	SourceMediaID string     `json:"sourceMediaId,omitempty"`
	Header        string     `json:"header,omitempty"`
	Items         []MenuItem `json:"items,omitempty"`
}

// sectionWire is the persisted shape of a section ("parent block").
type sectionWire struct {
	ID             string            `json:"id"`
	DepartmentID   string            `json:"umoorId"`
	DepartmentName string            `json:"umoorName,omitempty"`
	DepartmentLogo string            `json:"umoorLogo,omitempty"`
	Title          string            `json:"title,omitempty"`
	Subheading     string            `json:"subheading,omitempty"`
	Description    string            `json:"description,omitempty"`
	Children       []json.RawMessage `json:"children"`
	IsGlobal       bool              `json:"isGlobal,omitempty"`
	LocationID     string            `json:"locationId,omitempty"`
}

// MarshalJSON encodes the block in its flat persisted form.
func (b Block) MarshalJSON() ([]byte, error) {
	if !b.consistent() {
		return nil, fmt.Errorf("block %s: variant does not match kind %q", b.ID, b.Kind)
	}
	w := blockWire{ID: b.ID, Type: b.Kind}
	switch b.Kind {
	case BlockKindText:
		w.Content = b.Text.Content
		w.Language = b.Text.language
	case BlockKindImage:
		w.ImageURL = b.Image.ImageURL
		w.AltText = b.Image.AltText
		w.LinkURL = b.Image.LinkURL
		w.SourceMediaID = b.Image.SourceMediaID
	case BlockKindMenu:
		w.Header = b.Menu.Header
		w.Items = b.Menu.Items
		if w.Items == nil {
			w.Items = []MenuItem{}
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a block from its flat persisted form.
func (b *Block) UnmarshalJSON(data []byte) error {
	var w blockWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return fmt.Errorf("block without id")
	}
	out := Block{ID: w.ID, Kind: w.Type}
	switch w.Type {
	case BlockKindText:
		lang := w.Language
		if lang != LanguageSecondary {
			lang = LanguagePrimary
		}
		out.Text = &TextBlock{Content: w.Content, language: lang}
	case BlockKindImage:
		out.Image = &ImageBlock{
			ImageURL:      w.ImageURL,
			AltText:       w.AltText,
			LinkURL:       w.LinkURL,
			SourceMediaID: w.SourceMediaID,
		}
	case BlockKindMenu:
		out.Menu = &MenuBlock{Header: w.Header, Items: w.Items}
	default:
		return fmt.Errorf("block %s: unknown type %q", w.ID, w.Type)
	}
	*b = out
	return nil
}

// MarshalJSON encodes the section in its persisted form.
func (s Section) MarshalJSON() ([]byte, error) {
	w := struct {
		ID             string  `json:"id"`
		DepartmentID   string  `json:"umoorId"`
		DepartmentName string  `json:"umoorName,omitempty"`
		DepartmentLogo string  `json:"umoorLogo,omitempty"`
		Title          string  `json:"title,omitempty"`
		Subheading     string  `json:"subheading,omitempty"`
		Description    string  `json:"description,omitempty"`
		Children       []Block `json:"children"`
		IsGlobal       bool    `json:"isGlobal,omitempty"`
		LocationID     string  `json:"locationId,omitempty"`
	}{
		ID:             s.ID,
		DepartmentID:   s.DepartmentID,
		DepartmentName: s.DepartmentName,
		DepartmentLogo: s.DepartmentLogo.Value,
		Title:          s.Title,
		Subheading:     s.Subheading,
		Description:    s.Description,
		Children:       s.Children,
		IsGlobal:       s.IsGlobal,
		LocationID:     s.LocationID,
	}
	if w.Children == nil {
		w.Children = []Block{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a section. Any malformed child block is an error.
func (s *Section) UnmarshalJSON(data []byte) error {
	var w sectionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	sec, dropped := w.section()
	if len(dropped) > 0 {
		return dropped[0]
	}
	*s = sec
	return nil
}

// section converts the wire form, skipping children that fail to decode and
// children whose id was already seen in the section.
func (w sectionWire) section() (Section, []error) {
	sec := Section{
		ID:             w.ID,
		DepartmentID:   w.DepartmentID,
		DepartmentName: w.DepartmentName,
		DepartmentLogo: ParseLogo(w.DepartmentLogo),
		Title:          w.Title,
		Subheading:     w.Subheading,
		Description:    w.Description,
		Children:       make([]Block, 0, len(w.Children)),
		IsGlobal:       w.IsGlobal,
		LocationID:     w.LocationID,
	}
	var dropped []error
	seen := make(map[string]bool, len(w.Children))
	for _, raw := range w.Children {
		var b Block
		if err := json.Unmarshal(raw, &b); err != nil {
			dropped = append(dropped, fmt.Errorf("section %s: %w", w.ID, err))
			continue
		}
		if b.ID != "" && seen[b.ID] {
			dropped = append(dropped, fmt.Errorf("section %s: %w: block %s", w.ID, ErrDuplicateID, b.ID))
			continue
		}
		seen[b.ID] = true
		sec.Children = append(sec.Children, b)
	}
	return sec, dropped
}

// EncodeSections encodes sections as the persisted content array.
func EncodeSections(sections []Section) (json.RawMessage, error) {
	if sections == nil {
		sections = []Section{}
	}
	data, err := json.Marshal(sections)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sections: %w", err)
	}
	return data, nil
}

// ParseSections decodes persisted content. The content may be a JSON array
// of sections or a JSON string holding such an array. null or empty content
// yields no sections. Child blocks that fail to decode, and sections or
// blocks repeating an earlier id, are skipped and returned as warnings.
func ParseSections(raw []byte) ([]Section, []error, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Section{}, nil, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedContent, err)
		}
		return ParseSections([]byte(inner))
	}

	var wires []sectionWire
	if err := json.Unmarshal(raw, &wires); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	sections := make([]Section, 0, len(wires))
	var warnings []error
	seen := make(map[string]bool, len(wires))
	for _, w := range wires {
		if w.ID != "" && seen[w.ID] {
			warnings = append(warnings, fmt.Errorf("%w: section %s", ErrDuplicateID, w.ID))
			continue
		}
		seen[w.ID] = true
		sec, dropped := w.section()
		sections = append(sections, sec)
		warnings = append(warnings, dropped...)
	}
	return sections, warnings, nil
}

// DecodeSections is the lenient form of ParseSections used when opening a
// publication: malformed content opens as an empty publication and the
// failure is logged.
func DecodeSections(raw []byte, log zerolog.Logger) []Section {
	sections, warnings, err := ParseSections(raw)
	if err != nil {
		log.Warn().Err(err).Msg("publication content could not be decoded, opening empty")
		return []Section{}
	}
	for _, w := range warnings {
		log.Warn().Err(w).Msg("dropped content while decoding")
	}
	return sections
}
