package docx

import (
	"fmt"
	"strings"

	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
)

// tableXML renders a table. With Borders=false every edge is written as
// a zero-width white single line instead of being omitted, so the table
// geometry stays stable when borders are hidden.
func tableXML(t spec.DocxTable) string {
	visible := t.Borders == nil || *t.Borders

	var b strings.Builder
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="0" w:type="auto"/>`)
	b.WriteString(tableBordersXML(visible))
	b.WriteString(`</w:tblPr>`)

	// Cells with RowSpan>1 open a vertical merge; the rows below get
	// continuation cells injected at the same grid column.
	type pendingMerge struct {
		span      int
		remaining int
	}
	pending := map[int]*pendingMerge{}

	for _, row := range t.Rows {
		b.WriteString(`<w:tr>`)
		if row.IsHeader {
			b.WriteString(`<w:trPr><w:tblHeader/></w:trPr>`)
		}

		gridCol := 0
		writeContinuation := func() {
			for {
				pm, ok := pending[gridCol]
				if !ok || pm.remaining == 0 {
					return
				}
				pm.remaining--
				col := gridCol
				b.WriteString(continuationCellXML(pm.span))
				gridCol += pm.span
				if pm.remaining == 0 {
					delete(pending, col)
				}
			}
		}

		for _, cell := range row.Cells {
			writeContinuation()
			span := cell.ColSpan
			if span < 1 {
				span = 1
			}
			if cell.RowSpan > 1 {
				pending[gridCol] = &pendingMerge{span: span, remaining: cell.RowSpan - 1}
			}
			b.WriteString(cellXML(cell, span))
			gridCol += span
		}
		writeContinuation()
		b.WriteString(`</w:tr>`)
	}
	b.WriteString(`</w:tbl>`)
	return b.String()
}

func cellXML(cell spec.DocxTableCell, span int) string {
	var b strings.Builder
	b.WriteString(`<w:tc><w:tcPr>`)
	if span > 1 {
		fmt.Fprintf(&b, `<w:gridSpan w:val="%d"/>`, span)
	}
	if cell.RowSpan > 1 {
		b.WriteString(`<w:vMerge w:val="restart"/>`)
	}
	if cell.Shading != "" {
		fmt.Fprintf(&b, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, escapeXML(strings.TrimPrefix(cell.Shading, "#")))
	}
	b.WriteString(`</w:tcPr>`)
	b.WriteString(paragraphXML(spec.ParagraphSpec{Runs: []spec.Run{{Text: cell.Content, Bold: cell.Bold}}}))
	b.WriteString(`</w:tc>`)
	return b.String()
}

func continuationCellXML(span int) string {
	var b strings.Builder
	b.WriteString(`<w:tc><w:tcPr>`)
	if span > 1 {
		fmt.Fprintf(&b, `<w:gridSpan w:val="%d"/>`, span)
	}
	b.WriteString(`<w:vMerge/></w:tcPr><w:p/></w:tc>`)
	return b.String()
}

func tableBordersXML(visible bool) string {
	edge := func(name string) string {
		if visible {
			return fmt.Sprintf(`<w:%s w:val="single" w:sz="4" w:space="0" w:color="auto"/>`, name)
		}
		return fmt.Sprintf(`<w:%s w:val="single" w:sz="0" w:space="0" w:color="FFFFFF"/>`, name)
	}
	return `<w:tblBorders>` +
		edge("top") + edge("left") + edge("bottom") + edge("right") +
		edge("insideH") + edge("insideV") +
		`</w:tblBorders>`
}
