package pptx

import (
	"encoding/json"
	"fmt"
)

// Manifest is the precomputed description of template layouts, keyed by
// template id. Preferred over scanning because it carries human-curated
// layout names.
type Manifest map[string]ManifestTemplate

type ManifestTemplate struct {
	Layouts []ManifestLayout `json:"layouts"`
}

type ManifestLayout struct {
	Name         string                `json:"name"`
	SlideNumber  int                   `json:"slideNumber"`
	Placeholders []ManifestPlaceholder `json:"placeholders"`
}

type ManifestPlaceholder struct {
	Name string `json:"name"`
}

// ParseManifest decodes manifest JSON.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing template manifest: %w", err)
	}
	return m, nil
}

// ManifestDiscoverer resolves layouts from a loaded manifest. Unknown
// template ids are an error so the caller can fall back to scanning.
type ManifestDiscoverer struct {
	manifest Manifest
}

func NewManifestDiscoverer(m Manifest) *ManifestDiscoverer {
	return &ManifestDiscoverer{manifest: m}
}

func (d *ManifestDiscoverer) Discover(templateID string, _ []byte) ([]DiscoveredLayout, error) {
	entry, ok := d.manifest[templateID]
	if !ok {
		return nil, fmt.Errorf("template %q not present in manifest", templateID)
	}
	layouts := make([]DiscoveredLayout, 0, len(entry.Layouts))
	for _, l := range entry.Layouts {
		placeholders := make([]string, 0, len(l.Placeholders))
		for _, p := range l.Placeholders {
			placeholders = append(placeholders, p.Name)
		}
		layouts = append(layouts, DiscoveredLayout{
			Name:         l.Name,
			SlideNumber:  l.SlideNumber,
			Placeholders: placeholders,
		})
	}
	return layouts, nil
}
