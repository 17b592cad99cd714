package model

import (
	"errors"
	"fmt"
)

var (
	// ErrSectionNotFound is returned when an action targets an unknown section.
	ErrSectionNotFound = errors.New("section not found")
	// ErrBlockNotFound is returned when an action targets an unknown block.
	ErrBlockNotFound = errors.New("block not found")
	// ErrKindMismatch is returned when an update does not match the block kind.
	ErrKindMismatch = errors.New("block kind mismatch")
	// ErrDuplicateID is returned when an id is already taken.
	ErrDuplicateID = errors.New("duplicate id")
)

// Action is an editor change applied to a publication.
type Action interface {
	apply(p *Publication) error
}

// Apply returns a new publication with the action applied. p is never
// modified and the result shares no memory with it.
func Apply(p Publication, actions ...Action) (Publication, error) {
	next := p.Clone()
	for _, a := range actions {
		if err := a.apply(&next); err != nil {
			return p, err
		}
	}
	return next, nil
}

// AddSection appends a section.
type AddSection struct {
	Section Section
}

func (a AddSection) apply(p *Publication) error {
	sec := a.Section.Clone()
	if sec.ID == "" {
		sec.ID = newID()
	}
	if p.sectionIndex(sec.ID) >= 0 {
		return fmt.Errorf("%w: section %s", ErrDuplicateID, sec.ID)
	}
	p.Sections = append(p.Sections, sec)
	return nil
}

// RemoveSection removes a section, keeping the order of the others.
type RemoveSection struct {
	SectionID string
}

func (a RemoveSection) apply(p *Publication) error {
	i := p.sectionIndex(a.SectionID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, a.SectionID)
	}
	p.Sections = append(p.Sections[:i], p.Sections[i+1:]...)
	return nil
}

// UpdateSection replaces the editable header fields of a section.
type UpdateSection struct {
	SectionID   string
	Title       string
	Subheading  string
	Description string
	IsGlobal    bool
}

func (a UpdateSection) apply(p *Publication) error {
	i := p.sectionIndex(a.SectionID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSectionNotFound, a.SectionID)
	}
	s := &p.Sections[i]
	s.Title = a.Title
	s.Subheading = a.Subheading
	s.Description = a.Description
	s.IsGlobal = a.IsGlobal
	return nil
}

// MoveSections reorders sections. Order must be a permutation of the
// current section ids.
type MoveSections struct {
	Order []string
}

func (a MoveSections) apply(p *Publication) error {
	if len(a.Order) != len(p.Sections) {
		return fmt.Errorf("section order has %d ids, publication has %d sections", len(a.Order), len(p.Sections))
	}
	moved := make([]Section, 0, len(p.Sections))
	seen := make(map[string]bool, len(a.Order))
	for _, id := range a.Order {
		if seen[id] {
			return fmt.Errorf("section %s listed twice", id)
		}
		seen[id] = true
		i := p.sectionIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrSectionNotFound, id)
		}
		moved = append(moved, p.Sections[i])
	}
	p.Sections = moved
	return nil
}

// AddBlock appends a block to a section.
type AddBlock struct {
	SectionID string
	Block     Block
}

func (a AddBlock) apply(p *Publication) error {
	s, err := p.section(a.SectionID)
	if err != nil {
		return err
	}
	if !a.Block.consistent() {
		return fmt.Errorf("%w: block %s", ErrKindMismatch, a.Block.ID)
	}
	b := a.Block.Clone()
	if b.ID == "" {
		b.ID = newID()
	}
	if s.blockIndex(b.ID) >= 0 {
		return fmt.Errorf("%w: block %s", ErrDuplicateID, b.ID)
	}
	s.Children = append(s.Children, b)
	return nil
}

// RemoveBlock removes a block, keeping sibling order.
type RemoveBlock struct {
	SectionID string
	BlockID   string
}

func (a RemoveBlock) apply(p *Publication) error {
	s, i, err := p.block(a.SectionID, a.BlockID)
	if err != nil {
		return err
	}
	s.Children = append(s.Children[:i], s.Children[i+1:]...)
	return nil
}

// UpdateText changes the content of a text block. The language cannot be
// changed; use ReplaceBlock instead.
type UpdateText struct {
	SectionID string
	BlockID   string
	Content   string
}

func (a UpdateText) apply(p *Publication) error {
	s, i, err := p.block(a.SectionID, a.BlockID)
	if err != nil {
		return err
	}
	b := &s.Children[i]
	if b.Kind != BlockKindText {
		return fmt.Errorf("%w: %s is %s", ErrKindMismatch, b.ID, b.Kind)
	}
	b.Text.Content = a.Content
	return nil
}

// UpdateImage replaces the fields of an image block.
type UpdateImage struct {
	SectionID string
	BlockID   string
	Image     ImageBlock
}

func (a UpdateImage) apply(p *Publication) error {
	s, i, err := p.block(a.SectionID, a.BlockID)
	if err != nil {
		return err
	}
	b := &s.Children[i]
	if b.Kind != BlockKindImage {
		return fmt.Errorf("%w: %s is %s", ErrKindMismatch, b.ID, b.Kind)
	}
	img := a.Image
	b.Image = &img
	return nil
}

// UpdateMenu replaces the header and items of a menu block.
type UpdateMenu struct {
	SectionID string
	BlockID   string
	Header    string
	Items     []MenuItem
}

func (a UpdateMenu) apply(p *Publication) error {
	s, i, err := p.block(a.SectionID, a.BlockID)
	if err != nil {
		return err
	}
	b := &s.Children[i]
	if b.Kind != BlockKindMenu {
		return fmt.Errorf("%w: %s is %s", ErrKindMismatch, b.ID, b.Kind)
	}
	b.Menu = &MenuBlock{Header: a.Header, Items: append([]MenuItem(nil), a.Items...)}
	return nil
}

// ReplaceBlock swaps a block for a new one in the same position. The new
// block keeps its own id, which must not be the replaced block's id or any
// other id in the section.
type ReplaceBlock struct {
	SectionID string
	BlockID   string
	With      Block
}

func (a ReplaceBlock) apply(p *Publication) error {
	s, i, err := p.block(a.SectionID, a.BlockID)
	if err != nil {
		return err
	}
	if !a.With.consistent() {
		return fmt.Errorf("%w: block %s", ErrKindMismatch, a.With.ID)
	}
	b := a.With.Clone()
	if b.ID == "" {
		b.ID = newID()
	}
	if s.blockIndex(b.ID) >= 0 {
		return fmt.Errorf("%w: block %s", ErrDuplicateID, b.ID)
	}
	s.Children[i] = b
	return nil
}

func (p *Publication) section(id string) (*Section, error) {
	i := p.sectionIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSectionNotFound, id)
	}
	return &p.Sections[i], nil
}

func (p *Publication) block(sectionID, blockID string) (*Section, int, error) {
	s, err := p.section(sectionID)
	if err != nil {
		return nil, 0, err
	}
	i := s.blockIndex(blockID)
	if i < 0 {
		return nil, 0, fmt.Errorf("%w: %s", ErrBlockNotFound, blockID)
	}
	return s, i, nil
}
