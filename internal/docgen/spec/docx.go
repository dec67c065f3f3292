package spec

import (
	"fmt"
	"strings"
)

// DocxSpec describes a flow-layout Word document as sections of
// paragraphs, tables and page breaks. Content order is document flow
// order.
type DocxSpec struct {
	Title       string        `json:"title,omitempty"`
	Creator     string        `json:"creator,omitempty"`
	Description string        `json:"description,omitempty"`
	Sections    []DocxSection `json:"sections"`
}

type DocxSection struct {
	Header  []ParagraphSpec `json:"header,omitempty"`
	Footer  []ParagraphSpec `json:"footer,omitempty"`
	Content []DocxContent   `json:"content"`
}

type DocxContentType string

const (
	ContentParagraph DocxContentType = "paragraph"
	ContentTable     DocxContentType = "table"
	ContentPageBreak DocxContentType = "pageBreak"
)

// DocxContent is the tagged union of section content items. A pageBreak
// carries no payload.
type DocxContent struct {
	Type      DocxContentType `json:"type"`
	Paragraph *ParagraphSpec  `json:"paragraph,omitempty"`
	Table     *DocxTable      `json:"table,omitempty"`
}

// ParagraphSpec is either plain Text or a list of styled Runs. Bullet
// and Numbering both reference the single shared ordered-list definition
// registered once on the document; multi-level nesting is unsupported.
type ParagraphSpec struct {
	Text          string  `json:"text,omitempty"`
	Runs          []Run   `json:"runs,omitempty"`
	Heading       int     `json:"heading,omitempty"` // 1-6, 0 = body text
	Align         string  `json:"align,omitempty"`   // left|center|right|justify
	Bullet        bool    `json:"bullet,omitempty"`
	Numbering     bool    `json:"numbering,omitempty"`
	SpacingBefore float64 `json:"spacingBefore,omitempty"` // points
	SpacingAfter  float64 `json:"spacingAfter,omitempty"`  // points
}

type Run struct {
	Text      string  `json:"text"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline bool    `json:"underline,omitempty"`
	Strike    bool    `json:"strike,omitempty"`
	Color     string  `json:"color,omitempty"`     // hex RRGGBB
	Highlight string  `json:"highlight,omitempty"` // named highlight color
	Size      float64 `json:"size,omitempty"`      // points
}

// DocxTable renders rows top to bottom. Borders nil/true draws single
// line borders; false renders zero-width white edges so the table
// geometry stays stable even when borders are hidden.
type DocxTable struct {
	Rows    []DocxTableRow `json:"rows"`
	Borders *bool          `json:"borders,omitempty"`
}

type DocxTableRow struct {
	Cells    []DocxTableCell `json:"cells"`
	IsHeader bool            `json:"isHeader,omitempty"` // repeats across page breaks
}

type DocxTableCell struct {
	Content string `json:"content"`
	Bold    bool   `json:"bold,omitempty"`
	Shading string `json:"shading,omitempty"` // hex RRGGBB background
	ColSpan int    `json:"colSpan,omitempty"`
	RowSpan int    `json:"rowSpan,omitempty"`
}

var validAligns = map[string]bool{"": true, "left": true, "center": true, "right": true, "justify": true}

// Validate checks the spec against its schema.
func (s *DocxSpec) Validate() []string {
	var issues []string
	for si, sec := range s.Sections {
		for ci, item := range sec.Content {
			at := fmt.Sprintf("section %d content %d", si, ci)
			issues = append(issues, item.validate(at)...)
		}
		for pi, p := range sec.Header {
			issues = append(issues, p.validate(fmt.Sprintf("section %d header paragraph %d", si, pi))...)
		}
		for pi, p := range sec.Footer {
			issues = append(issues, p.validate(fmt.Sprintf("section %d footer paragraph %d", si, pi))...)
		}
	}
	return issues
}

func (c DocxContent) validate(at string) []string {
	switch c.Type {
	case ContentParagraph:
		if c.Paragraph == nil {
			return []string{fmt.Sprintf("%s: paragraph content requires a paragraph payload", at)}
		}
		return c.Paragraph.validate(at)
	case ContentTable:
		if c.Table == nil {
			return []string{fmt.Sprintf("%s: table content requires a table payload", at)}
		}
		if len(c.Table.Rows) == 0 {
			return []string{fmt.Sprintf("%s: table requires at least one row", at)}
		}
		return nil
	case ContentPageBreak:
		return nil
	default:
		return []string{fmt.Sprintf("%s: unknown content type %q", at, c.Type)}
	}
}

func (p ParagraphSpec) validate(at string) []string {
	var issues []string
	if p.Heading < 0 || p.Heading > 6 {
		issues = append(issues, fmt.Sprintf("%s: heading level must be 1-6", at))
	}
	if !validAligns[strings.ToLower(p.Align)] {
		issues = append(issues, fmt.Sprintf("%s: unknown alignment %q", at, p.Align))
	}
	return issues
}
