package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/courseforge/courseforge-backend/internal/docgen/pptx"
	"github.com/courseforge/courseforge-backend/internal/logger"
	"github.com/courseforge/courseforge-backend/internal/utils"
)

// TemplateService resolves deck templates by id: the raw archive bytes
// from the template directory and, when the manifest file is present,
// curated layout metadata.
type TemplateService interface {
	TemplateBytes(templateID string) ([]byte, error)
	ManifestDiscoverer() *pptx.ManifestDiscoverer
}

type templateService struct {
	dir      string
	manifest *pptx.ManifestDiscoverer
	log      *logger.Logger
}

func NewTemplateService(baseLog *logger.Logger) (TemplateService, error) {
	serviceLog := baseLog.With("service", "TemplateService")
	dir := utils.GetEnv("PPTX_TEMPLATE_DIR", "./templates", serviceLog)

	ts := &templateService{dir: dir, log: serviceLog}

	manifestPath := utils.GetEnv("PPTX_MANIFEST_PATH", "", serviceLog)
	if manifestPath != "" {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("reading template manifest %s: %w", manifestPath, err)
		}
		manifest, err := pptx.ParseManifest(data)
		if err != nil {
			return nil, err
		}
		ts.manifest = pptx.NewManifestDiscoverer(manifest)
		serviceLog.Info("template manifest loaded", "path", manifestPath, "templates", len(manifest))
	} else {
		serviceLog.Info("no template manifest configured, templates will be scanned")
	}
	return ts, nil
}

func (ts *templateService) TemplateBytes(templateID string) ([]byte, error) {
	name := filepath.Base(templateID)
	if filepath.Ext(name) == "" {
		name += ".pptx"
	}
	data, err := os.ReadFile(filepath.Join(ts.dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading template %q: %w", templateID, err)
	}
	return data, nil
}

func (ts *templateService) ManifestDiscoverer() *pptx.ManifestDiscoverer {
	return ts.manifest
}
