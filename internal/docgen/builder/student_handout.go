package builder

import (
	"fmt"
	"strings"

	"github.com/courseforge/courseforge-backend/internal/docgen"
	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
)

const (
	handoutPageWidth  = 612.0
	handoutPageHeight = 792.0
	handoutMargin     = 72.0

	handoutTitleSize   = 20.0
	handoutHeadingSize = 14.0
	handoutBodySize    = 11.0
	handoutLineGap     = 1.35
)

// charWidthFactor approximates average glyph width as a fraction of
// the font size. Good enough for line breaking without font metrics.
const charWidthFactor = 0.5

// StudentHandout assembles the printable lesson handout as a PdfSpec.
// It owns pagination: a running cursor tracks vertical space and each
// section that would cross the bottom margin starts a new page.
func StudentHandout(course docgen.CourseData, lesson docgen.LessonData, competencies []docgen.CompetencyData, activities []docgen.ActivityData) *spec.PdfSpec {
	b := &handoutLayout{cursor: handoutMargin}

	b.addText(course.Title, handoutTitleSize, "Helvetica-Bold", spec.RGB{R: 0.1, G: 0.1, B: 0.35})
	b.space(6)
	b.addText(lesson.Title, handoutHeadingSize, "Helvetica", spec.RGB{R: 0.3, G: 0.3, B: 0.3})
	b.space(4)
	b.addRule()
	b.space(14)

	if len(competencies) > 0 {
		lines := make([]string, 0, len(competencies))
		for _, comp := range competencies {
			lines = append(lines, fmt.Sprintf("%s: %s", comp.Code, comp.Title))
		}
		b.addSection("Learning Objectives", lines)
	}

	concepts := extractKeyConcepts(stripLessonContent(lesson.Content.Type, lesson.Content.Body))
	if len(concepts) > 0 {
		b.addSection("Key Concepts", concepts)
	}

	for _, act := range activities {
		b.addSection(act.Title, []string{capitalize(act.Type) + " activity", act.Instructions})
	}

	b.addNotesSection()

	return &spec.PdfSpec{
		Title:   lesson.Title,
		Author:  course.Title,
		Subject: "Student Handout",
		Creator: "courseforge",
		Pages:   b.finish(),
	}
}

type handoutLayout struct {
	pages    []spec.PageSpec
	elements []spec.PageElement
	cursor   float64 // distance from the top edge, points
}

func (b *handoutLayout) finish() []spec.PageSpec {
	b.breakPage()
	return b.pages
}

func (b *handoutLayout) breakPage() {
	b.pages = append(b.pages, spec.PageSpec{
		Size:     spec.PageSize{Preset: "letter"},
		Elements: b.elements,
	})
	b.elements = nil
	b.cursor = handoutMargin
}

func (b *handoutLayout) remaining() float64 {
	return handoutPageHeight - handoutMargin - b.cursor
}

func (b *handoutLayout) space(pts float64) {
	b.cursor += pts
}

// ensure starts a new page when the next block's estimated height does
// not fit above the bottom margin.
func (b *handoutLayout) ensure(height float64) {
	if height > b.remaining() && len(b.elements) > 0 {
		b.breakPage()
	}
}

func (b *handoutLayout) placeLine(text string, size float64, font string, color spec.RGB) {
	b.cursor += size
	b.elements = append(b.elements, spec.PageElement{
		Type: spec.ElementText,
		Text: &spec.TextElement{
			X:        handoutMargin,
			Y:        handoutPageHeight - b.cursor,
			Text:     text,
			Font:     font,
			FontSize: size,
			Color:    &color,
		},
	})
	b.cursor += size * (handoutLineGap - 1)
}

func (b *handoutLayout) addText(text string, size float64, font string, color spec.RGB) {
	for _, line := range wrapText(text, size, handoutPageWidth-2*handoutMargin) {
		b.ensure(size * handoutLineGap)
		b.placeLine(line, size, font, color)
	}
}

func (b *handoutLayout) addRule() {
	b.elements = append(b.elements, spec.PageElement{
		Type: spec.ElementLine,
		Line: &spec.LineElement{
			X1:    handoutMargin,
			Y1:    handoutPageHeight - b.cursor,
			X2:    handoutPageWidth - handoutMargin,
			Y2:    handoutPageHeight - b.cursor,
			Color: &spec.RGB{R: 0.6, G: 0.6, B: 0.6},
			Width: 0.75,
		},
	})
}

// addSection writes a heading plus its body lines, breaking the page
// first when the whole estimated footprint would overflow.
func (b *handoutLayout) addSection(heading string, lines []string) {
	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		wrapped = append(wrapped, wrapText(line, handoutBodySize, handoutPageWidth-2*handoutMargin-14)...)
	}
	estimate := handoutHeadingSize*handoutLineGap + 8 +
		float64(len(wrapped))*handoutBodySize*handoutLineGap + 10
	b.ensure(estimate)

	b.placeLine(heading, handoutHeadingSize, "Helvetica-Bold", spec.RGB{R: 0.1, G: 0.1, B: 0.35})
	b.space(4)
	for _, line := range wrapped {
		b.ensure(handoutBodySize * handoutLineGap)
		b.placeBullet(line)
	}
	b.space(10)
}

func (b *handoutLayout) placeBullet(line string) {
	b.cursor += handoutBodySize
	y := handoutPageHeight - b.cursor
	b.elements = append(b.elements,
		spec.PageElement{
			Type: spec.ElementCircle,
			Circle: &spec.CircleElement{
				X:      handoutMargin + 3,
				Y:      y + handoutBodySize*0.3,
				Radius: 1.5,
				Fill:   &spec.RGB{R: 0.2, G: 0.2, B: 0.2},
			},
		},
		spec.PageElement{
			Type: spec.ElementText,
			Text: &spec.TextElement{
				X:        handoutMargin + 14,
				Y:        y,
				Text:     line,
				FontSize: handoutBodySize,
			},
		})
	b.cursor += handoutBodySize * (handoutLineGap - 1)
}

// addNotesSection fills the rest of the current page with ruled lines.
func (b *handoutLayout) addNotesSection() {
	b.ensure(handoutHeadingSize*handoutLineGap + 4*24)
	b.placeLine("Notes", handoutHeadingSize, "Helvetica-Bold", spec.RGB{R: 0.1, G: 0.1, B: 0.35})
	b.space(8)
	for b.remaining() >= 24 {
		b.cursor += 24
		b.elements = append(b.elements, spec.PageElement{
			Type: spec.ElementLine,
			Line: &spec.LineElement{
				X1:    handoutMargin,
				Y1:    handoutPageHeight - b.cursor,
				X2:    handoutPageWidth - handoutMargin,
				Y2:    handoutPageHeight - b.cursor,
				Color: &spec.RGB{R: 0.8, G: 0.8, B: 0.8},
				Width: 0.5,
			},
		})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// wrapText breaks text into lines no wider than maxWidth, estimating
// width as charWidthFactor glyphs per point of font size.
func wrapText(text string, fontSize, maxWidth float64) []string {
	maxChars := int(maxWidth / (fontSize * charWidthFactor))
	if maxChars < 1 {
		maxChars = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > maxChars {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
