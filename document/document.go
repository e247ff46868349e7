// Package document defines the structured document model produced by the
// conversion engine: an ordered sequence of typed nodes with text runs, marks
// and link definitions.
package document

import (
	"strings"

	"github.com/google/uuid"
)

// NodeKind distinguishes the different kinds of output nodes.
type NodeKind string

const (
	NodeText        NodeKind = "text"
	NodeMedia       NodeKind = "media"
	NodeVideo       NodeKind = "video"
	NodeSeparator   NodeKind = "separator"
	NodeColumnBreak NodeKind = "column-break"
	NodeCrossRef    NodeKind = "cross-reference"
)

// BlockStyle selects the visual style of a text block in the target schema.
type BlockStyle string

const (
	StyleNormal     BlockStyle = "normal"
	StyleHeading    BlockStyle = "heading"
	StyleSubheading BlockStyle = "subheading"
	StyleListItem   BlockStyle = "list-item"
)

// Mark annotates a run: either a structural tag (bold/italic) or the key of a
// LinkDefinition held on the document.
type Mark string

const (
	MarkBold   Mark = "bold"
	MarkItalic Mark = "italic"
)

// IsLink reports whether the mark references a link definition rather than a
// structural tag.
func (m Mark) IsLink() bool {
	return m != MarkBold && m != MarkItalic
}

// Run is a contiguous span of text sharing the same set of marks.
type Run struct {
	Text  string
	Marks []Mark
}

// HasMark reports whether the run carries the given mark.
func (r Run) HasMark(m Mark) bool {
	for _, have := range r.Marks {
		if have == m {
			return true
		}
	}
	return false
}

// TextBlock stores one block of marked-up text. List items carry Ordered and
// Level, all other styles leave them zero.
type TextBlock struct {
	Style   BlockStyle
	Ordered bool
	Level   int
	Runs    []Run
}

// AsPlainText returns the concatenated text of all runs.
func (t *TextBlock) AsPlainText() string {
	var buf strings.Builder
	for _, run := range t.Runs {
		buf.WriteString(run.Text)
	}
	return buf.String()
}

// Empty reports whether every run of the block is empty after trimming.
func (t *TextBlock) Empty() bool {
	return len(strings.TrimSpace(t.AsPlainText())) == 0
}

// MediaFloat describes requested placement of a media placeholder.
type MediaFloat string

const (
	FloatNone  MediaFloat = ""
	FloatLeft  MediaFloat = "left"
	FloatRight MediaFloat = "right"
)

// MediaPlaceholder stands in for an image whose final stored-asset reference
// is resolved by a later, external upload pass.
type MediaPlaceholder struct {
	SourceURL string
	AltText   string
	Float     MediaFloat
	Width     int
	Height    int
}

// VideoProvider enumerates recognized embedded video providers.
type VideoProvider string

const (
	ProviderYouTube VideoProvider = "youtube"
	ProviderVimeo   VideoProvider = "vimeo"
)

// VideoEmbed references an externally hosted video by provider id.
type VideoEmbed struct {
	Provider   VideoProvider
	ExternalID string
	Title      string
}

// CrossReference embeds another legacy document by its numeric id. The id is
// preserved verbatim for a later resolution pass.
type CrossReference struct {
	LegacyID int64
}

// Node is a single element of the converted document. Exactly one of the
// payload pointers matching Kind is set; separator and column-break nodes
// carry no payload.
type Node struct {
	Key      string
	Kind     NodeKind
	Text     *TextBlock
	Media    *MediaPlaceholder
	Video    *VideoEmbed
	CrossRef *CrossReference
}

// LinkDefinition holds a resolved hyperlink target referenced by run marks.
// One definition may be shared by multiple runs when link text carries its
// own formatting transitions. Never mutated after creation.
type LinkDefinition struct {
	Key    string
	URL    string
	NewTab bool
}

// Document is the ordered conversion result handed back to the caller.
type Document struct {
	Nodes []Node
	Links []LinkDefinition
}

// NewKey generates a fresh node or link key. Keys are opaque and unique
// within one conversion, not stable across runs.
func NewKey() string {
	return uuid.NewString()
}

func NewTextNode(t *TextBlock) Node {
	return Node{Key: NewKey(), Kind: NodeText, Text: t}
}

func NewMediaNode(m *MediaPlaceholder) Node {
	return Node{Key: NewKey(), Kind: NodeMedia, Media: m}
}

func NewVideoNode(v *VideoEmbed) Node {
	return Node{Key: NewKey(), Kind: NodeVideo, Video: v}
}

func NewSeparatorNode() Node {
	return Node{Key: NewKey(), Kind: NodeSeparator}
}

func NewColumnBreakNode() Node {
	return Node{Key: NewKey(), Kind: NodeColumnBreak}
}

func NewCrossRefNode(legacyID int64) Node {
	return Node{Key: NewKey(), Kind: NodeCrossRef, CrossRef: &CrossReference{LegacyID: legacyID}}
}

// AsPlainText extracts plain text from all text blocks, media alt texts are
// excluded.
func (d *Document) AsPlainText() string {
	var buf strings.Builder
	for _, node := range d.Nodes {
		if node.Kind != NodeText || node.Text == nil {
			continue
		}
		text := strings.TrimSpace(node.Text.AsPlainText())
		if text == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(text)
	}
	return buf.String()
}

// Link returns the link definition for the given key, if any.
func (d *Document) Link(key string) (LinkDefinition, bool) {
	for _, def := range d.Links {
		if def.Key == key {
			return def, true
		}
	}
	return LinkDefinition{}, false
}
