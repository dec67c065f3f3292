// Package docx compiles a DocxSpec into an OOXML wordprocessing
// container. The zip is assembled by hand: document part, styles,
// the shared numbering definition, and per-section header/footer parts.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/courseforge/courseforge-backend/internal/docgen"
	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
	"github.com/courseforge/courseforge-backend/internal/logger"
)

type Compiler struct {
	log *logger.Logger
}

func NewCompiler(baseLog *logger.Logger) *Compiler {
	return &Compiler{log: baseLog.With("compiler", "docx")}
}

// Generate validates the spec and emits the DOCX buffer. No page-count
// metadata is produced: page count is a rendering-time property of a
// flow-layout document.
func (c *Compiler) Generate(s *spec.DocxSpec) (*docgen.Result, error) {
	if issues := s.Validate(); len(issues) > 0 {
		return nil, &docgen.ValidationError{Format: "docx", Issues: issues}
	}

	parts := buildParts(s)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("docx part %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("docx part %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx container: %w", err)
	}

	c.log.Debug("Compiled docx spec", "sections", len(s.Sections), "bytes", buf.Len())
	return &docgen.Result{
		Buffer:      buf.Bytes(),
		Filename:    docgen.SlugFilename(s.Title, ".docx"),
		ContentType: docgen.ContentTypeDOCX,
		Metadata:    map[string]interface{}{},
	}, nil
}

type part struct {
	name    string
	content string
}

// sectionRefs tracks the header/footer parts a section references.
type sectionRefs struct {
	headerRelID string
	footerRelID string
}

func buildParts(s *spec.DocxSpec) []part {
	var parts []part
	var overrides []string
	var docRels []string

	docRels = append(docRels,
		relationship("rId1", "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles", "styles.xml"),
		relationship("rId2", "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering", "numbering.xml"),
	)

	// Header/footer parts are numbered per section; relationship ids
	// start after the fixed styles/numbering pair.
	refs := make([]sectionRefs, len(s.Sections))
	relSeq := 2
	for i, sec := range s.Sections {
		if len(sec.Header) > 0 {
			relSeq++
			relID := fmt.Sprintf("rId%d", relSeq)
			name := fmt.Sprintf("header%d.xml", i+1)
			refs[i].headerRelID = relID
			docRels = append(docRels, relationship(relID, "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header", name))
			parts = append(parts, part{"word/" + name, headerXML(sec.Header)})
			overrides = append(overrides, override("/word/"+name, "application/vnd.openxmlformats-officedocument.wordprocessingml.header+xml"))
		}
		if len(sec.Footer) > 0 {
			relSeq++
			relID := fmt.Sprintf("rId%d", relSeq)
			name := fmt.Sprintf("footer%d.xml", i+1)
			refs[i].footerRelID = relID
			docRels = append(docRels, relationship(relID, "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer", name))
			parts = append(parts, part{"word/" + name, footerXML(sec.Footer)})
			overrides = append(overrides, override("/word/"+name, "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"))
		}
	}

	parts = append(parts,
		part{"[Content_Types].xml", contentTypesXML(overrides)},
		part{"_rels/.rels", rootRelsXML()},
		part{"word/_rels/document.xml.rels", relsXML(docRels)},
		part{"word/document.xml", documentXML(s, refs)},
		part{"word/styles.xml", stylesXML},
		part{"word/numbering.xml", numberingXML},
		part{"docProps/core.xml", coreXML(s)},
	)
	return parts
}
