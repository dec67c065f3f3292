package builder

import (
	"fmt"

	"github.com/courseforge/courseforge-backend/internal/docgen"
	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
)

// InstructorGuide assembles the facilitation guide as a DocxSpec. The
// format flows freely, so unlike the handout there is no pagination
// here: sections are emitted in teaching order and Word breaks pages.
func InstructorGuide(course docgen.CourseData, lesson docgen.LessonData, competencies []docgen.CompetencyData, activities []docgen.ActivityData) *spec.DocxSpec {
	var content []spec.DocxContent

	content = append(content,
		heading(1, course.Title),
		heading(2, "Instructor Guide: "+lesson.Title),
	)
	if lesson.Description != "" {
		content = append(content, paragraph(lesson.Description))
	}

	if len(competencies) > 0 {
		content = append(content, heading(2, "Learning Objectives"), objectivesTable(competencies))
	}

	for i, act := range activities {
		content = append(content,
			heading(2, fmt.Sprintf("Activity %d: %s", i+1, act.Title)),
			styledParagraph(spec.Run{Text: capitalize(act.Type), Italic: true}),
			paragraph(act.Instructions),
			styledParagraph(spec.Run{Text: "Facilitation notes:", Bold: true}),
			paragraph("_________________________________________________"),
			paragraph("_________________________________________________"),
		)
	}

	content = append(content, heading(2, "Assessment Guidelines"))
	for _, g := range assessmentGuidelines {
		content = append(content, bullet(g))
	}

	content = append(content, heading(2, "Notes"))
	for i := 0; i < 6; i++ {
		content = append(content, paragraph("_________________________________________________"))
	}

	return &spec.DocxSpec{
		Title:       lesson.Title,
		Creator:     "courseforge",
		Description: "Instructor guide for " + course.Title,
		Sections: []spec.DocxSection{{
			Header:  []spec.ParagraphSpec{{Text: course.Title + " / " + lesson.Title, Align: "right"}},
			Footer:  []spec.ParagraphSpec{{Text: "Instructor use only", Align: "center"}},
			Content: content,
		}},
	}
}

var assessmentGuidelines = []string{
	"Check each objective against observable student work, not recall alone.",
	"Record participation during activities while it happens, not after class.",
	"Flag students who needed repeated prompting for follow-up next session.",
	"Score written responses against the competency descriptions above.",
}

func objectivesTable(competencies []docgen.CompetencyData) spec.DocxContent {
	rows := []spec.DocxTableRow{{
		IsHeader: true,
		Cells: []spec.DocxTableCell{
			{Content: "Code", Bold: true, Shading: "DCE6F1"},
			{Content: "Objective", Bold: true, Shading: "DCE6F1"},
			{Content: "Covered", Bold: true, Shading: "DCE6F1"},
		},
	}}
	for _, comp := range competencies {
		rows = append(rows, spec.DocxTableRow{Cells: []spec.DocxTableCell{
			{Content: comp.Code},
			{Content: comp.Title},
			{Content: ""},
		}})
	}
	return spec.DocxContent{Type: spec.ContentTable, Table: &spec.DocxTable{Rows: rows}}
}

func heading(level int, text string) spec.DocxContent {
	return spec.DocxContent{Type: spec.ContentParagraph, Paragraph: &spec.ParagraphSpec{Text: text, Heading: level}}
}

func paragraph(text string) spec.DocxContent {
	return spec.DocxContent{Type: spec.ContentParagraph, Paragraph: &spec.ParagraphSpec{Text: text, SpacingAfter: 6}}
}

func styledParagraph(runs ...spec.Run) spec.DocxContent {
	return spec.DocxContent{Type: spec.ContentParagraph, Paragraph: &spec.ParagraphSpec{Runs: runs, SpacingAfter: 4}}
}

func bullet(text string) spec.DocxContent {
	return spec.DocxContent{Type: spec.ContentParagraph, Paragraph: &spec.ParagraphSpec{Text: text, Bullet: true}}
}
