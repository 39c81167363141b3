package model

import "strings"

// BlockType identifies the kind of a content block.
type BlockType int

const (
	BlockTypeUnknown BlockType = iota
	BlockTypeParagraph
	BlockTypeHeading
	BlockTypeListItem
	BlockTypeTable
	BlockTypePageBreak
)

func (bt BlockType) String() string {
	switch bt {
	case BlockTypeParagraph:
		return "Paragraph"
	case BlockTypeHeading:
		return "Heading"
	case BlockTypeListItem:
		return "ListItem"
	case BlockTypeTable:
		return "Table"
	case BlockTypePageBreak:
		return "PageBreak"
	default:
		return "Unknown"
	}
}

// Block is the interface implemented by all content blocks.
type Block interface {
	Type() BlockType
	// PlainText returns the block's text with no format-specific markup.
	PlainText() string
}

// Paragraph is a run of body text.
type Paragraph struct {
	Text string
}

func (p Paragraph) Type() BlockType   { return BlockTypeParagraph }
func (p Paragraph) PlainText() string { return p.Text }

// Heading is a heading with a level from 1 (largest) to 6.
type Heading struct {
	Level int
	Text  string
}

func (h Heading) Type() BlockType   { return BlockTypeHeading }
func (h Heading) PlainText() string { return h.Text }

// ListItem is one item of a list. Ordered reports whether the surrounding
// list was numbered.
type ListItem struct {
	Text    string
	Ordered bool
}

func (l ListItem) Type() BlockType   { return BlockTypeListItem }
func (l ListItem) PlainText() string { return l.Text }

// Table holds rows of cell text in source order.
type Table struct {
	Rows [][]string
}

func (t Table) Type() BlockType { return BlockTypeTable }

func (t Table) PlainText() string {
	var b strings.Builder
	for i, row := range t.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(row, "\t"))
	}
	return b.String()
}

// PageBreak marks a page boundary. Page is the 1-indexed number of the page
// that follows the break in the source document.
type PageBreak struct {
	Page int
}

func (pb PageBreak) Type() BlockType   { return BlockTypePageBreak }
func (pb PageBreak) PlainText() string { return "" }
