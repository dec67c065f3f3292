// Package docgen is the document generation core: declarative,
// format-agnostic specs compiled into PDF, DOCX and template-based PPTX
// containers. Subpackages hold the per-format compilers; this package
// carries the shared contracts between builders, compilers and the
// orchestration layer.
package docgen

import (
	"regexp"
	"strings"
)

// Content types emitted by the compilers.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// Result is a compiled binary plus its bookkeeping. Metadata varies by
// format: page count for PDF, slide count for PPTX, absent for DOCX
// (page count is a rendering-time property there).
type Result struct {
	Buffer      []byte
	Filename    string
	ContentType string
	Metadata    map[string]interface{}
}

// Input contract. These records arrive pre-validated from the relational
// layer; the core only enforces what its own spec schemas require.

type CourseData struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ContentData struct {
	Type string `json:"type"` // markdown | html
	Body string `json:"body"`
}

type LessonData struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Content     ContentData `json:"content"`
}

type CompetencyData struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ActivityData struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Instructions string `json:"instructions"`
}

var slugRE = regexp.MustCompile(`[^a-z0-9]+`)

// SlugFilename derives an output filename from a document title:
// non-alphanumeric runs collapse to "-", lowercased, extension appended.
func SlugFilename(title, ext string) string {
	slug := slugRE.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "document"
	}
	return slug + ext
}

// ContentTypeFor maps a persisted document type name to its MIME type.
func ContentTypeFor(documentType string) string {
	switch {
	case strings.HasSuffix(documentType, "handout"):
		return ContentTypePDF
	case strings.HasSuffix(documentType, "guide"):
		return ContentTypeDOCX
	case strings.HasSuffix(documentType, "deck"):
		return ContentTypePPTX
	default:
		return "application/octet-stream"
	}
}
