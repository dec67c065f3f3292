package pdf

import (
	"bytes"
	"crypto/md5"
	"errors"
	"testing"

	"github.com/courseforge/courseforge-backend/internal/docgen"
	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
	"github.com/courseforge/courseforge-backend/internal/logger"
)

func testCompiler(t *testing.T) *Compiler {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewCompiler(log)
}

func handoutSpec() *spec.PdfSpec {
	return &spec.PdfSpec{
		Title:  "Cell Structure Handout",
		Author: "Intro Biology",
		Pages: []spec.PageSpec{{
			Size: spec.PageSize{Preset: "letter"},
			Elements: []spec.PageElement{
				{Type: spec.ElementText, Text: &spec.TextElement{
					X: 72, Y: 720, Text: "Cell Structure", FontSize: 20, Font: "Helvetica-Bold",
				}},
				{Type: spec.ElementRectangle, Rectangle: &spec.RectangleElement{
					X: 72, Y: 560, Width: 468, Height: 120,
					Fill: &spec.RGB{R: 0.9, G: 0.95, B: 1},
				}},
				{Type: spec.ElementTable, Table: &spec.TableElement{
					X: 72, Y: 520, ColumnWidths: []float64{150, 318}, RowHeight: 22,
					Rows: [][]string{
						{"Organelle", "Function"},
						{"Nucleus", "Stores genetic material"},
						{"Mitochondria", "Produces ATP"},
					},
					HeaderBackground: &spec.RGB{R: 0.85, G: 0.85, B: 0.85},
				}},
				{Type: spec.ElementLine, Line: &spec.LineElement{
					X1: 72, Y1: 100, X2: 540, Y2: 100, Width: 1,
				}},
			},
		}},
	}
}

func TestGenerateHandout(t *testing.T) {
	result, err := testCompiler(t).Generate(handoutSpec())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Buffer) == 0 {
		t.Fatal("empty buffer")
	}
	if !bytes.HasPrefix(result.Buffer, []byte("%PDF-")) {
		t.Fatalf("buffer does not start with PDF signature: %q", result.Buffer[:8])
	}
	if result.ContentType != docgen.ContentTypePDF {
		t.Fatalf("content type = %q", result.ContentType)
	}
	if result.Filename != "cell-structure-handout.pdf" {
		t.Fatalf("filename = %q", result.Filename)
	}
	if got := result.Metadata["pageCount"]; got != 1 {
		t.Fatalf("pageCount = %v, want 1", got)
	}
}

func TestGenerateDeterministicChecksum(t *testing.T) {
	c := testCompiler(t)
	first, err := c.Generate(handoutSpec())
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	second, err := c.Generate(handoutSpec())
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if md5.Sum(first.Buffer) != md5.Sum(second.Buffer) {
		t.Fatal("same spec produced different checksums")
	}
}

func TestGenerateMultiplePages(t *testing.T) {
	s := &spec.PdfSpec{Title: "multi", Pages: []spec.PageSpec{
		{Elements: []spec.PageElement{{Type: spec.ElementText, Text: &spec.TextElement{X: 72, Y: 700, Text: "one"}}}},
		{Size: spec.PageSize{Preset: "a4"}, Elements: []spec.PageElement{{Type: spec.ElementText, Text: &spec.TextElement{X: 72, Y: 700, Text: "two"}}}},
	}}
	result, err := testCompiler(t).Generate(s)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := result.Metadata["pageCount"]; got != 2 {
		t.Fatalf("pageCount = %v, want 2", got)
	}
}

func TestGenerateRejectsInvalidSpec(t *testing.T) {
	s := &spec.PdfSpec{Pages: []spec.PageSpec{{
		Elements: []spec.PageElement{{Type: "hologram"}},
	}}}
	result, err := testCompiler(t).Generate(s)
	if result != nil {
		t.Fatal("invalid spec produced a buffer")
	}
	var validationErr *docgen.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validationErr.Format != "pdf" {
		t.Fatalf("format = %q", validationErr.Format)
	}
}

func TestGenerateRejectsUnknownImageSignature(t *testing.T) {
	s := &spec.PdfSpec{Pages: []spec.PageSpec{{
		Elements: []spec.PageElement{{
			Type:  spec.ElementImage,
			Image: &spec.ImageElement{X: 100, Y: 100, Data: []byte("GIF89a not supported")},
		}},
	}}}
	result, err := testCompiler(t).Generate(s)
	if result != nil {
		t.Fatal("unsupported image produced a buffer")
	}
	if !errors.Is(err, docgen.ErrUnsupportedImageFormat) {
		t.Fatalf("expected ErrUnsupportedImageFormat, got %v", err)
	}
}

func TestGenerateWrapsTextWithMaxWidth(t *testing.T) {
	s := &spec.PdfSpec{Title: "wrap", Pages: []spec.PageSpec{{
		Elements: []spec.PageElement{{
			Type: spec.ElementText,
			Text: &spec.TextElement{
				X: 72, Y: 700, MaxWidth: 120,
				Text: "a reasonably long sentence that cannot fit on a single narrow line",
			},
		}},
	}}}
	result, err := testCompiler(t).Generate(s)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Buffer) == 0 {
		t.Fatal("empty buffer")
	}
}
