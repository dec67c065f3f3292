package docx

import (
	"fmt"
	"strings"

	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
)

const wNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

// documentXML renders the body. Sections other than the last close with
// a paragraph-embedded sectPr; the last section's sectPr sits at the end
// of the body, which is how OOXML expresses section runs.
func documentXML(s *spec.DocxSpec, refs []sectionRefs) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:document ` + wNamespaces + `><w:body>`)
	for i, sec := range s.Sections {
		writeSectionContent(&b, sec)
		sect := sectPrXML(refs[i])
		if i < len(s.Sections)-1 {
			b.WriteString(`<w:p><w:pPr>` + sect + `</w:pPr></w:p>`)
		} else {
			b.WriteString(sect)
		}
	}
	if len(s.Sections) == 0 {
		b.WriteString(sectPrXML(sectionRefs{}))
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func writeSectionContent(b *strings.Builder, sec spec.DocxSection) {
	for _, item := range sec.Content {
		switch item.Type {
		case spec.ContentParagraph:
			b.WriteString(paragraphXML(*item.Paragraph))
		case spec.ContentTable:
			b.WriteString(tableXML(*item.Table))
		case spec.ContentPageBreak:
			b.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		}
	}
}

func sectPrXML(refs sectionRefs) string {
	var b strings.Builder
	b.WriteString(`<w:sectPr>`)
	if refs.headerRelID != "" {
		fmt.Fprintf(&b, `<w:headerReference w:type="default" r:id="%s"/>`, refs.headerRelID)
	}
	if refs.footerRelID != "" {
		fmt.Fprintf(&b, `<w:footerReference w:type="default" r:id="%s"/>`, refs.footerRelID)
	}
	// US Letter in twentieths of a point, one inch margins.
	b.WriteString(`<w:pgSz w:w="12240" w:h="15840"/>`)
	b.WriteString(`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720"/>`)
	b.WriteString(`</w:sectPr>`)
	return b.String()
}

var alignValues = map[string]string{
	"left":    "left",
	"center":  "center",
	"right":   "right",
	"justify": "both",
}

func paragraphXML(p spec.ParagraphSpec) string {
	var b strings.Builder
	b.WriteString(`<w:p>`)

	var props strings.Builder
	if p.Heading >= 1 && p.Heading <= 6 {
		fmt.Fprintf(&props, `<w:pStyle w:val="Heading%d"/>`, p.Heading)
	}
	if p.Bullet {
		props.WriteString(`<w:pStyle w:val="ListParagraph"/><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr>`)
	} else if p.Numbering {
		props.WriteString(`<w:pStyle w:val="ListParagraph"/><w:numPr><w:ilvl w:val="0"/><w:numId w:val="2"/></w:numPr>`)
	}
	if jc, ok := alignValues[strings.ToLower(p.Align)]; ok && p.Align != "" {
		fmt.Fprintf(&props, `<w:jc w:val="%s"/>`, jc)
	}
	if p.SpacingBefore > 0 || p.SpacingAfter > 0 {
		fmt.Fprintf(&props, `<w:spacing w:before="%d" w:after="%d"/>`, twips(p.SpacingBefore), twips(p.SpacingAfter))
	}
	if props.Len() > 0 {
		b.WriteString(`<w:pPr>` + props.String() + `</w:pPr>`)
	}

	if len(p.Runs) > 0 {
		for _, r := range p.Runs {
			b.WriteString(runXML(r))
		}
	} else if p.Text != "" {
		b.WriteString(runXML(spec.Run{Text: p.Text}))
	}
	b.WriteString(`</w:p>`)
	return b.String()
}

func runXML(r spec.Run) string {
	var b strings.Builder
	b.WriteString(`<w:r>`)

	var props strings.Builder
	if r.Bold {
		props.WriteString(`<w:b/>`)
	}
	if r.Italic {
		props.WriteString(`<w:i/>`)
	}
	if r.Underline {
		props.WriteString(`<w:u w:val="single"/>`)
	}
	if r.Strike {
		props.WriteString(`<w:strike/>`)
	}
	if r.Color != "" {
		fmt.Fprintf(&props, `<w:color w:val="%s"/>`, escapeXML(strings.TrimPrefix(r.Color, "#")))
	}
	if r.Highlight != "" {
		fmt.Fprintf(&props, `<w:highlight w:val="%s"/>`, escapeXML(r.Highlight))
	}
	if r.Size > 0 {
		// Run size is expressed in half-points.
		fmt.Fprintf(&props, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, int(r.Size*2), int(r.Size*2))
	}
	if props.Len() > 0 {
		b.WriteString(`<w:rPr>` + props.String() + `</w:rPr>`)
	}

	fmt.Fprintf(&b, `<w:t xml:space="preserve">%s</w:t>`, escapeXML(r.Text))
	b.WriteString(`</w:r>`)
	return b.String()
}

func headerXML(paragraphs []spec.ParagraphSpec) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:hdr ` + wNamespaces + `>`)
	for _, p := range paragraphs {
		b.WriteString(paragraphXML(p))
	}
	b.WriteString(`</w:hdr>`)
	return b.String()
}

func footerXML(paragraphs []spec.ParagraphSpec) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:ftr ` + wNamespaces + `>`)
	for _, p := range paragraphs {
		b.WriteString(paragraphXML(p))
	}
	b.WriteString(`</w:ftr>`)
	return b.String()
}

func twips(points float64) int { return int(points * 20) }
