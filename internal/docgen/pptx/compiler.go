package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/courseforge/courseforge-backend/internal/docgen"
	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
	"github.com/courseforge/courseforge-backend/internal/logger"
)

// Compiler fills a deck template with generated slide content. The
// manifest discoverer is consulted first when present; templates the
// manifest does not know fall back to the placeholder scan.
type Compiler struct {
	manifest *ManifestDiscoverer
	scanner  *ScanDiscoverer
	log      *logger.Logger
}

func NewCompiler(manifest *ManifestDiscoverer, baseLog *logger.Logger) *Compiler {
	return &Compiler{
		manifest: manifest,
		scanner:  NewScanDiscoverer(),
		log:      baseLog.With("compiler", "pptx"),
	}
}

// DiscoverLayouts runs the discoverer chain for a template.
func (c *Compiler) DiscoverLayouts(templateID string, templateBytes []byte) ([]DiscoveredLayout, error) {
	if c.manifest != nil {
		layouts, err := c.manifest.Discover(templateID, templateBytes)
		if err == nil {
			return layouts, nil
		}
		c.log.Debug("manifest miss, scanning template", "template_id", templateID, "error", err)
	}
	return c.scanner.Discover(templateID, templateBytes)
}

// Generate rebuilds the template archive with one output slide per
// entry in slides, each cloned from its matched layout slide with
// placeholders substituted. Supporting parts are carried over
// verbatim.
func (c *Compiler) Generate(templateID string, templateBytes []byte, title string, slides []spec.SlideData) (*docgen.Result, error) {
	layouts, err := c.DiscoverLayouts(templateID, templateBytes)
	if err != nil {
		return nil, fmt.Errorf("discovering layouts: %w", err)
	}
	if len(layouts) == 0 {
		return nil, docgen.ErrNoLayouts
	}

	zr, err := zip.NewReader(bytes.NewReader(templateBytes), int64(len(templateBytes)))
	if err != nil {
		return nil, fmt.Errorf("open template archive: %w", err)
	}
	parts, order, err := readArchive(zr)
	if err != nil {
		return nil, err
	}

	built := make([]builtSlide, 0, len(slides))
	for i, slide := range slides {
		layout := FindMatchingLayout(slide.EffectiveType(), layouts)
		srcPath := fmt.Sprintf("ppt/slides/slide%d.xml", layout.SlideNumber)
		srcXML, ok := parts[srcPath]
		if !ok {
			return nil, fmt.Errorf("layout %q references missing part %s", layout.Name, srcPath)
		}
		values := PopulatePlaceholders(extractTags(string(srcXML)), slide)
		built = append(built, builtSlide{
			number:  i + 1,
			xml:     substitute(string(srcXML), values),
			srcRels: string(parts[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", layout.SlideNumber)]),
		})
		c.log.Debug("slide composed",
			"slide", i+1,
			"type", string(slide.EffectiveType()),
			"layout", layout.Name)
	}

	out, err := assembleDeck(parts, order, built)
	if err != nil {
		return nil, err
	}

	return &docgen.Result{
		Buffer:      out,
		Filename:    docgen.SlugFilename(title, ".pptx"),
		ContentType: docgen.ContentTypePPTX,
		Metadata: map[string]interface{}{
			"slideCount":  len(built),
			"layoutCount": len(layouts),
		},
	}, nil
}

type builtSlide struct {
	number  int
	xml     string
	srcRels string
}

func readArchive(zr *zip.Reader) (map[string][]byte, []string, error) {
	parts := make(map[string][]byte, len(zr.File))
	order := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		parts[f.Name] = data
		order = append(order, f.Name)
	}
	return parts, order, nil
}

// substitute replaces every {{tag}} marker with its XML-escaped value.
// Multi-line values become run breaks so lines render separately.
func substitute(slideXML string, values map[string]string) string {
	return placeholderRE.ReplaceAllStringFunc(slideXML, func(m string) string {
		tag := placeholderRE.FindStringSubmatch(m)[1]
		lines := strings.Split(values[tag], "\n")
		escaped := make([]string, 0, len(lines))
		for _, line := range lines {
			escaped = append(escaped, escapeXMLText(line))
		}
		return strings.Join(escaped, `</a:t></a:r><a:br/><a:r><a:t>`)
	})
}

func escapeXMLText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

var (
	slideRelsPathRE   = regexp.MustCompile(`^ppt/slides/_rels/slide\d+\.xml\.rels$`)
	slideOverrideRE   = regexp.MustCompile(`<Override[^>]*PartName="/ppt/slides/slide\d+\.xml"[^>]*/>`)
	sldIdLstRE        = regexp.MustCompile(`(?s)<p:sldIdLst[^>]*>.*?</p:sldIdLst>|<p:sldIdLst[^>]*/>`)
	slideRelRE        = regexp.MustCompile(`<Relationship[^>]*Type="[^"]*/relationships/slide"[^>]*/>`)
	relIDRE           = regexp.MustCompile(`Id="rId(\d+)"`)
	relationshipsEnd  = `</Relationships>`
	slideContentType  = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	slideRelationship = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
)

// assembleDeck writes the output archive: template slides and their
// rels are dropped, built slides take their place, and the
// presentation part, its rels, and the content types are rewritten to
// reference exactly the built slides.
func assembleDeck(parts map[string][]byte, order []string, built []builtSlide) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name string, data []byte) error {
		w, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create part %s: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write part %s: %w", name, err)
		}
		return nil
	}

	presRels := rewritePresentationRels(string(parts["ppt/_rels/presentation.xml.rels"]), built)
	for _, name := range order {
		switch {
		case slidePartRE.MatchString(name), slideRelsPathRE.MatchString(name):
			continue
		case name == "[Content_Types].xml":
			if err := write(name, []byte(rewriteContentTypes(string(parts[name]), built))); err != nil {
				return nil, err
			}
		case name == "ppt/presentation.xml":
			if err := write(name, []byte(rewritePresentation(string(parts[name]), presRels.slideIDs))); err != nil {
				return nil, err
			}
		case name == "ppt/_rels/presentation.xml.rels":
			if err := write(name, []byte(presRels.xml)); err != nil {
				return nil, err
			}
		default:
			if err := write(name, parts[name]); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range built {
		if err := write(fmt.Sprintf("ppt/slides/slide%d.xml", s.number), []byte(s.xml)); err != nil {
			return nil, err
		}
		if s.srcRels != "" {
			relsPath := fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", s.number)
			if err := write(relsPath, []byte(s.srcRels)); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func rewriteContentTypes(contentTypes string, built []builtSlide) string {
	contentTypes = slideOverrideRE.ReplaceAllString(contentTypes, "")
	var sb strings.Builder
	for _, s := range built {
		fmt.Fprintf(&sb, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="%s"/>`, s.number, slideContentType)
	}
	return strings.Replace(contentTypes, "</Types>", sb.String()+"</Types>", 1)
}

type rewrittenRels struct {
	xml      string
	slideIDs []slideID
}

type slideID struct {
	sldID int
	relID string
}

// rewritePresentationRels drops the template's slide relationships,
// keeps everything else (masters, theme, props), and appends one
// relationship per built slide with ids allocated past the highest
// surviving rId.
func rewritePresentationRels(rels string, built []builtSlide) rewrittenRels {
	rels = slideRelRE.ReplaceAllString(rels, "")

	maxID := 0
	for _, m := range relIDRE.FindAllStringSubmatch(rels, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > maxID {
			maxID = n
		}
	}

	ids := make([]slideID, 0, len(built))
	var sb strings.Builder
	for i, s := range built {
		relID := fmt.Sprintf("rId%d", maxID+1+i)
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="slides/slide%d.xml"/>`, relID, slideRelationship, s.number)
		ids = append(ids, slideID{sldID: 256 + i, relID: relID})
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].sldID < ids[j].sldID })

	return rewrittenRels{
		xml:      strings.Replace(rels, relationshipsEnd, sb.String()+relationshipsEnd, 1),
		slideIDs: ids,
	}
}

func rewritePresentation(presentation string, ids []slideID) string {
	var sb strings.Builder
	sb.WriteString("<p:sldIdLst>")
	for _, id := range ids {
		fmt.Fprintf(&sb, `<p:sldId id="%d" r:id="%s"/>`, id.sldID, id.relID)
	}
	sb.WriteString("</p:sldIdLst>")
	return sldIdLstRE.ReplaceAllString(presentation, sb.String())
}
