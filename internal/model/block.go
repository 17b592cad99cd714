package model

import "strings"

// BlockKind represents the type of content block.
type BlockKind string

const (
	BlockKindText  BlockKind = "text"
	BlockKindImage BlockKind = "image"
	BlockKindMenu  BlockKind = "menu"
)

// Valid reports whether k is a known block kind.
func (k BlockKind) Valid() bool {
	switch k {
	case BlockKindText, BlockKindImage, BlockKindMenu:
		return true
	}
	return false
}

// Language tags a text block. Secondary language text is right-to-left.
type Language string

const (
	LanguagePrimary   Language = "primary"
	LanguageSecondary Language = "secondary"
)

// Direction returns the HTML dir value for the language.
func (l Language) Direction() string {
	if l == LanguageSecondary {
		return "rtl"
	}
	return "ltr"
}

// IsRTL reports whether the language is written right-to-left.
func (l Language) IsRTL() bool {
	return l == LanguageSecondary
}

// Block is one atomic unit of content inside a section.
// Exactly one of Text, Image or Menu is set, matching Kind.
type Block struct {
	ID    string
	Kind  BlockKind
	Text  *TextBlock
	Image *ImageBlock
	Menu  *MenuBlock
}

// TextBlock is language-tagged freeform text.
type TextBlock struct {
	Content  string
	language Language
}

// Language returns the language the block was created with.
func (t *TextBlock) Language() Language {
	return t.language
}

// ImageBlock references an image with optional link target.
type ImageBlock struct {
	ImageURL      string
	AltText       string
	LinkURL       string
	SourceMediaID string
}

// HasImage returns true if an image URL is set.
func (img *ImageBlock) HasImage() bool {
	return strings.TrimSpace(img.ImageURL) != ""
}

// MenuBlock is a structured list of menu items with an optional header.
type MenuBlock struct {
	Header string
	Items  []MenuItem
}

// MenuItem is one entry of a menu block.
type MenuItem struct {
	Name      string `json:"name" validate:"required"`
	Nutrition string `json:"nutrition,omitempty"`
	Allergens string `json:"allergens,omitempty"`
}

// IsEmpty returns true if the menu has no items.
func (m *MenuBlock) IsEmpty() bool {
	return len(m.Items) == 0
}

// NewTextBlock creates a text block with a fresh id. The language is fixed
// for the lifetime of the block.
func NewTextBlock(content string, lang Language) Block {
	if lang != LanguageSecondary {
		lang = LanguagePrimary
	}
	return Block{
		ID:   newID(),
		Kind: BlockKindText,
		Text: &TextBlock{Content: content, language: lang},
	}
}

// NewImageBlock creates an image block with a fresh id.
func NewImageBlock(imageURL, altText string) Block {
	return Block{
		ID:    newID(),
		Kind:  BlockKindImage,
		Image: &ImageBlock{ImageURL: imageURL, AltText: altText},
	}
}

// NewMenuBlock creates a menu block with a fresh id.
func NewMenuBlock(header string, items ...MenuItem) Block {
	return Block{
		ID:   newID(),
		Kind: BlockKindMenu,
		Menu: &MenuBlock{Header: header, Items: append([]MenuItem(nil), items...)},
	}
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	out := Block{ID: b.ID, Kind: b.Kind}
	if b.Text != nil {
		t := *b.Text
		out.Text = &t
	}
	if b.Image != nil {
		img := *b.Image
		out.Image = &img
	}
	if b.Menu != nil {
		out.Menu = &MenuBlock{
			Header: b.Menu.Header,
			Items:  append([]MenuItem(nil), b.Menu.Items...),
		}
	}
	return out
}

// consistent reports whether the variant pointer matches Kind.
func (b Block) consistent() bool {
	switch b.Kind {
	case BlockKindText:
		return b.Text != nil && b.Image == nil && b.Menu == nil
	case BlockKindImage:
		return b.Image != nil && b.Text == nil && b.Menu == nil
	case BlockKindMenu:
		return b.Menu != nil && b.Text == nil && b.Image == nil
	}
	return false
}
