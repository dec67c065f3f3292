package builder

import (
	"fmt"
	"strings"

	"github.com/courseforge/courseforge-backend/internal/docgen"
	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
)

// SlideDeck assembles the deterministic slide sequence for a lesson:
// title, objectives, key concepts, one slide per activity, summary.
func SlideDeck(course docgen.CourseData, lesson docgen.LessonData, competencies []docgen.CompetencyData, activities []docgen.ActivityData) []spec.SlideData {
	slides := []spec.SlideData{{
		Title:   course.Title,
		Content: []string{lesson.Title},
		Type:    spec.SlideTitle,
	}}

	if len(competencies) > 0 {
		objectives := make([]string, 0, len(competencies))
		for _, comp := range competencies {
			objectives = append(objectives, fmt.Sprintf("%s: %s", comp.Code, comp.Title))
		}
		slides = append(slides, spec.SlideData{
			Title:   "Learning Objectives",
			Content: objectives,
			Type:    spec.SlideSummary,
		})
	}

	concepts := extractKeyConcepts(stripLessonContent(lesson.Content.Type, lesson.Content.Body))
	for _, concept := range concepts {
		slides = append(slides, spec.SlideData{
			Title:   "Key Concept",
			Content: []string{concept},
			Type:    spec.SlideDefinition,
		})
	}

	for _, act := range activities {
		slides = append(slides, spec.SlideData{
			Title:   act.Title,
			Content: instructionSteps(act.Instructions),
			Notes:   capitalize(act.Type) + " activity. " + act.Instructions,
			Type:    activitySlideType(act.Type),
		})
	}

	summary := make([]string, 0, len(competencies)+1)
	for _, comp := range competencies {
		summary = append(summary, comp.Title)
	}
	if len(summary) == 0 {
		summary = append(summary, lesson.Title)
	}
	slides = append(slides, spec.SlideData{
		Title:   "Summary",
		Content: summary,
		Type:    spec.SlideSummary,
	})
	return slides
}

// instructionSteps splits activity instructions into slide lines on
// sentence boundaries, keeping at most five.
func instructionSteps(instructions string) []string {
	var steps []string
	for _, s := range strings.Split(instructions, ".") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		steps = append(steps, s)
		if len(steps) == 5 {
			break
		}
	}
	return steps
}

func activitySlideType(activityType string) spec.SlideType {
	switch strings.ToLower(activityType) {
	case "discussion", "reflection", "quiz", "assessment":
		return spec.SlideQuestion
	case "demo", "demonstration", "example":
		return spec.SlideExample
	case "exercise", "practice", "lab":
		return spec.SlideProcess
	default:
		return spec.SlideDefault
	}
}
