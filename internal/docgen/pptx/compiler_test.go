package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/courseforge/courseforge-backend/internal/docgen"
	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
	"github.com/courseforge/courseforge-backend/internal/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func slideXML(tags ...string) string {
	var runs strings.Builder
	for _, tag := range tags {
		fmt.Fprintf(&runs, `<a:r><a:t>{{%s}}</a:t></a:r>`, tag)
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
		` xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
		`<p:cSld><p:spTree><p:sp><p:txBody><a:p>` + runs.String() +
		`</a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
}

// buildTemplate assembles a minimal deck archive whose slide parts
// carry the given placeholder tag sets, in order.
func buildTemplate(t *testing.T, slideTags ...[]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name, content string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	var overrides, rels, sldIds strings.Builder
	for i := range slideTags {
		n := i + 1
		fmt.Fprintf(&overrides, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, n)
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, n+1, n)
		fmt.Fprintf(&sldIds, `<p:sldId id="%d" r:id="rId%d"/>`, 255+n, n+1)
	}

	write("[Content_Types].xml",
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`+
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`+
			`<Default Extension="xml" ContentType="application/xml"/>`+
			`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`+
			overrides.String()+`</Types>`)
	write("_rels/.rels",
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>`+
			`</Relationships>`)
	write("ppt/presentation.xml",
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
			`<p:presentation xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`+
			` xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`+
			`<p:sldIdLst>`+sldIds.String()+`</p:sldIdLst></p:presentation>`)
	write("ppt/_rels/presentation.xml.rels",
		`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme" Target="theme/theme1.xml"/>`+
			rels.String()+`</Relationships>`)
	write("ppt/theme/theme1.xml", `<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"/>`)
	for i, tags := range slideTags {
		write(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), slideXML(tags...))
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close template zip: %v", err)
	}
	return buf.Bytes()
}

func standardTemplate(t *testing.T) []byte {
	return buildTemplate(t,
		[]string{"course_title", "instructor_name"},
		[]string{"title", "content"},
		[]string{"quote_text", "quote_attribution"},
		[]string{"title", "left_column", "right_column"},
	)
}

func readOutputPart(t *testing.T, buffer []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(buffer), int64(len(buffer)))
	if err != nil {
		t.Fatalf("output is not a valid zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(data)
	}
	t.Fatalf("part %s missing from output", name)
	return ""
}

func TestScanDiscoveryIsDeterministic(t *testing.T) {
	template := standardTemplate(t)
	d := NewScanDiscoverer()
	first, err := d.Discover("tpl", template)
	if err != nil {
		t.Fatalf("first Discover: %v", err)
	}
	second, err := d.Discover("tpl", template)
	if err != nil {
		t.Fatalf("second Discover: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("discovery of identical bytes differed between runs")
	}
	if len(first) != 4 {
		t.Fatalf("discovered %d layouts, want 4", len(first))
	}
}

func TestScanInfersLayoutNames(t *testing.T) {
	layouts, err := NewScanDiscoverer().Discover("tpl", standardTemplate(t))
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	wantNames := []string{"title slide", "content slide", "quote", "two column"}
	for i, want := range wantNames {
		if layouts[i].Name != want {
			t.Fatalf("layout %d name = %q, want %q", i, layouts[i].Name, want)
		}
		if layouts[i].SlideNumber != i+1 {
			t.Fatalf("layout %d slide number = %d", i, layouts[i].SlideNumber)
		}
	}
}

func TestScanSortsSlidesNumerically(t *testing.T) {
	// slide10 must come after slide2, not between slide1 and slide2.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, n := range []int{10, 1, 2} {
		w, err := zw.Create(fmt.Sprintf("ppt/slides/slide%d.xml", n))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		fmt.Fprintf(w, "%s", slideXML(fmt.Sprintf("tag_%d", n)))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	layouts, err := NewScanDiscoverer().Discover("tpl", buf.Bytes())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	var numbers []int
	for _, l := range layouts {
		numbers = append(numbers, l.SlideNumber)
	}
	if !reflect.DeepEqual(numbers, []int{1, 2, 10}) {
		t.Fatalf("slide order = %v", numbers)
	}
}

func TestManifestDiscovererUnknownTemplate(t *testing.T) {
	manifest, err := ParseManifest([]byte(`{"deck-a":{"layouts":[{"name":"Title Slide","slideNumber":1,"placeholders":[{"name":"course_title"}]}]}}`))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	d := NewManifestDiscoverer(manifest)

	layouts, err := d.Discover("deck-a", nil)
	if err != nil {
		t.Fatalf("Discover known template: %v", err)
	}
	if len(layouts) != 1 || layouts[0].Name != "Title Slide" || layouts[0].Placeholders[0] != "course_title" {
		t.Fatalf("unexpected layouts: %+v", layouts)
	}

	if _, err := d.Discover("deck-b", nil); err == nil {
		t.Fatal("expected error for unknown template id")
	}
}

func deckSlides() []spec.SlideData {
	return []spec.SlideData{
		{Title: "Intro Biology", Content: []string{"Cell Structure"}, Type: spec.SlideTitle},
		{Title: "Key Concept", Content: []string{"Cells are the basic unit of life", "All cells come from cells"}, Type: spec.SlideDefinition},
		{Title: "A Thought", RawContent: `> "Nothing in biology makes sense except in the light of evolution" — Dobzhansky`, Type: spec.SlideQuote},
		{Title: "Plant vs Animal", RawContent: "| Plant | Animal |\n| --- | --- |\n| Cell wall | No cell wall |\n| Chloroplasts | None |", Type: spec.SlideComparison},
	}
}

func TestGenerateDeck(t *testing.T) {
	c := NewCompiler(nil, testLogger(t))
	result, err := c.Generate("standard", standardTemplate(t), "Cell Structure", deckSlides())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.ContentType != docgen.ContentTypePPTX {
		t.Fatalf("content type = %q", result.ContentType)
	}
	if result.Filename != "cell-structure.pptx" {
		t.Fatalf("filename = %q", result.Filename)
	}
	if got := result.Metadata["slideCount"]; got != 4 {
		t.Fatalf("slideCount = %v", got)
	}
	if got := result.Metadata["layoutCount"]; got != 4 {
		t.Fatalf("layoutCount = %v", got)
	}

	pres := readOutputPart(t, result.Buffer, "ppt/presentation.xml")
	for n := 1; n <= 4; n++ {
		if !strings.Contains(pres, fmt.Sprintf(`id="%d"`, 255+n)) {
			t.Fatalf("presentation.xml missing sldId %d: %s", 255+n, pres)
		}
	}

	contentTypes := readOutputPart(t, result.Buffer, "[Content_Types].xml")
	for n := 1; n <= 4; n++ {
		if !strings.Contains(contentTypes, fmt.Sprintf("/ppt/slides/slide%d.xml", n)) {
			t.Fatalf("content types missing slide %d override", n)
		}
	}
}

func TestGenerateNeverLeaksPlaceholders(t *testing.T) {
	c := NewCompiler(nil, testLogger(t))
	result, err := c.Generate("standard", standardTemplate(t), "deck", deckSlides())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for n := 1; n <= 4; n++ {
		slide := readOutputPart(t, result.Buffer, fmt.Sprintf("ppt/slides/slide%d.xml", n))
		if strings.Contains(slide, "{{") {
			t.Fatalf("slide %d leaked a raw placeholder: %s", n, slide)
		}
	}
}

func TestGenerateSubstitutesContent(t *testing.T) {
	c := NewCompiler(nil, testLogger(t))
	result, err := c.Generate("standard", standardTemplate(t), "deck", deckSlides())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	title := readOutputPart(t, result.Buffer, "ppt/slides/slide1.xml")
	if !strings.Contains(title, "Intro Biology") {
		t.Fatalf("title slide missing course title: %s", title)
	}
	quote := readOutputPart(t, result.Buffer, "ppt/slides/slide3.xml")
	if !strings.Contains(quote, "Nothing in biology makes sense") {
		t.Fatalf("quote slide missing quote text: %s", quote)
	}
	if !strings.Contains(quote, "Dobzhansky") {
		t.Fatalf("quote slide missing attribution: %s", quote)
	}
	comparison := readOutputPart(t, result.Buffer, "ppt/slides/slide4.xml")
	if !strings.Contains(comparison, "Cell wall") || !strings.Contains(comparison, "No cell wall") {
		t.Fatalf("comparison slide missing column content: %s", comparison)
	}
}

func TestGenerateRewritesAttributedSlideIDList(t *testing.T) {
	// Some producers carry attributes on the slide id list element; the
	// rewrite must still replace it rather than leave stale references.
	template := buildTemplate(t, []string{"title", "content"})
	template = editPart(t, template, "ppt/presentation.xml", func(xml string) string {
		return strings.Replace(xml, "<p:sldIdLst>", `<p:sldIdLst xmlns:x="urn:deck-ext">`, 1)
	})

	c := NewCompiler(nil, testLogger(t))
	result, err := c.Generate("tpl", template, "deck", deckSlides()[:1])
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	pres := readOutputPart(t, result.Buffer, "ppt/presentation.xml")
	if strings.Contains(pres, "urn:deck-ext") {
		t.Fatalf("stale slide id list survived the rewrite: %s", pres)
	}
	if !strings.Contains(pres, `<p:sldIdLst><p:sldId id="256"`) {
		t.Fatalf("presentation.xml missing rebuilt slide id list: %s", pres)
	}
}

func editPart(t *testing.T, archive []byte, name string, edit func(string) string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		if f.Name == name {
			data = []byte(edit(string(data)))
		}
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatalf("create %s: %v", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write %s: %v", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

func TestGenerateNoLayouts(t *testing.T) {
	c := NewCompiler(nil, testLogger(t))
	empty := buildTemplate(t)
	_, err := c.Generate("empty", empty, "deck", deckSlides())
	if !errors.Is(err, docgen.ErrNoLayouts) {
		t.Fatalf("expected ErrNoLayouts, got %v", err)
	}
}

func TestManifestPreferredOverScan(t *testing.T) {
	manifest, err := ParseManifest([]byte(`{"standard":{"layouts":[{"name":"Curated Title","slideNumber":1,"placeholders":[{"name":"course_title"},{"name":"instructor_name"}]}]}}`))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	c := NewCompiler(NewManifestDiscoverer(manifest), testLogger(t))

	layouts, err := c.DiscoverLayouts("standard", standardTemplate(t))
	if err != nil {
		t.Fatalf("DiscoverLayouts: %v", err)
	}
	if len(layouts) != 1 || layouts[0].Name != "Curated Title" {
		t.Fatalf("manifest should win for known templates, got %+v", layouts)
	}

	// Unknown template id falls through to the scanner.
	layouts, err = c.DiscoverLayouts("other", standardTemplate(t))
	if err != nil {
		t.Fatalf("DiscoverLayouts fallback: %v", err)
	}
	if len(layouts) != 4 {
		t.Fatalf("scan fallback discovered %d layouts, want 4", len(layouts))
	}
}
