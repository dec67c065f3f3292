package spec

import "strings"

// SlideType is the semantic classification of one generated slide. Each
// type maps onto the best-fitting discovered template layout.
type SlideType string

const (
	SlideTitle      SlideType = "title"
	SlideAssertion  SlideType = "assertion"
	SlideDefinition SlideType = "definition"
	SlideProcess    SlideType = "process"
	SlideComparison SlideType = "comparison"
	SlideQuote      SlideType = "quote"
	SlideQuestion   SlideType = "question"
	SlideExample    SlideType = "example"
	SlideSummary    SlideType = "summary"
	SlideDefault    SlideType = "default"
)

// SlideTypes lists every defined slide type, in declaration order.
var SlideTypes = []SlideType{
	SlideTitle, SlideAssertion, SlideDefinition, SlideProcess,
	SlideComparison, SlideQuote, SlideQuestion, SlideExample,
	SlideSummary, SlideDefault,
}

// SlideData is the input unit for the PPTX template compiler. Each
// SlideData maps to exactly one discovered layout slide.
type SlideData struct {
	Title      string    `json:"title"`
	Content    []string  `json:"content"`
	RawContent string    `json:"rawContent,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Type       SlideType `json:"type,omitempty"`
}

// EffectiveType resolves an unset or unknown type to default.
func (s SlideData) EffectiveType() SlideType {
	t := SlideType(strings.ToLower(string(s.Type)))
	for _, known := range SlideTypes {
		if t == known {
			return t
		}
	}
	return SlideDefault
}

// normalizeName lowercases and collapses separators so layout names and
// presets compare loosely ("Title Slide" == "title_slide").
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeName is the exported form used by the pptx matcher.
func NormalizeName(name string) string { return normalizeName(name) }
