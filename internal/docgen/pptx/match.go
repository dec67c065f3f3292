package pptx

import (
	"strings"

	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
)

// layoutPreferences maps each semantic slide type to an ordered priority
// list of layout-name substrings. Stateless lookup table, first match
// wins.
var layoutPreferences = map[spec.SlideType][]string{
	spec.SlideTitle:      {"title slide", "title", "cover"},
	spec.SlideAssertion:  {"assertion", "statement", "big idea"},
	spec.SlideDefinition: {"definition", "term", "concept"},
	spec.SlideProcess:    {"process", "steps", "sequence", "numbered"},
	spec.SlideComparison: {"comparison", "two column", "versus", "compare"},
	spec.SlideQuote:      {"quote", "quotation", "callout"},
	spec.SlideQuestion:   {"question", "discussion", "prompt"},
	spec.SlideExample:    {"example", "demo", "case study"},
	spec.SlideSummary:    {"summary", "recap", "takeaways"},
	spec.SlideDefault:    {"content", "body"},
}

// FindMatchingLayout resolves a slide type to a layout. The chain never
// fails on a non-empty layout list: exact normalized name, then
// substring match, then any layout named like "content", then the first
// layout in template order.
func FindMatchingLayout(slideType spec.SlideType, layouts []DiscoveredLayout) DiscoveredLayout {
	prefs := layoutPreferences[slideType]
	if prefs == nil {
		prefs = layoutPreferences[spec.SlideDefault]
	}

	for _, pref := range prefs {
		for _, layout := range layouts {
			if spec.NormalizeName(layout.Name) == pref {
				return layout
			}
		}
	}
	for _, pref := range prefs {
		for _, layout := range layouts {
			name := spec.NormalizeName(layout.Name)
			if name == "" {
				continue
			}
			if strings.Contains(name, pref) || strings.Contains(pref, name) {
				return layout
			}
		}
	}
	for _, layout := range layouts {
		if strings.Contains(spec.NormalizeName(layout.Name), "content") {
			return layout
		}
	}
	return layouts[0]
}
