// Package pptx fills an existing slide-deck template: it discovers the
// template's layouts and their {{tag}} placeholders, matches each
// generated slide's semantic type to the best-fitting layout, and
// rebuilds the deck with placeholders substituted.
package pptx

// DiscoveredLayout is one reusable slide structure within a template,
// identified by its placeholder tags and an inferred or curated name.
// SlideNumber orders layouts within the template and is used for
// default fallback selection.
type DiscoveredLayout struct {
	Name         string   `json:"name"`
	SlideNumber  int      `json:"slideNumber"`
	Placeholders []string `json:"placeholders"`
}

// LayoutDiscoverer produces the ordered layout list for a template.
// Discovery must be deterministic: the same template bytes or manifest
// always yield the same ordered list.
//
// The regex scanner is one strategy behind this interface; a future
// XML-DOM pass can replace it without touching matching or population.
type LayoutDiscoverer interface {
	Discover(templateID string, templateBytes []byte) ([]DiscoveredLayout, error)
}
