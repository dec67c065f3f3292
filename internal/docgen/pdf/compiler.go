// Package pdf compiles a PdfSpec into a PDF binary. Elements are drawn
// at absolute positions in strict array order; the spec's bottom-left
// point coordinates are converted to the writer's top-left system here
// and nowhere else.
package pdf

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/courseforge/courseforge-backend/internal/docgen"
	"github.com/courseforge/courseforge-backend/internal/docgen/spec"
	"github.com/courseforge/courseforge-backend/internal/logger"
)

const (
	defaultFontSize = 12
	cellPadding     = 4
)

type Compiler struct {
	log *logger.Logger
}

func NewCompiler(baseLog *logger.Logger) *Compiler {
	return &Compiler{log: baseLog.With("compiler", "pdf")}
}

// Generate validates the spec and emits the PDF buffer. Validation
// failures and unsupported image signatures return an error with no
// partial buffer.
func (c *Compiler) Generate(s *spec.PdfSpec) (*docgen.Result, error) {
	if issues := s.Validate(); len(issues) > 0 {
		return nil, &docgen.ValidationError{Format: "pdf", Issues: issues}
	}

	firstW, firstH := 612.0, 792.0
	if len(s.Pages) > 0 {
		firstW, firstH = s.Pages[0].Size.Resolve()
	}
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: firstW, Ht: firstH},
	})
	doc.SetAutoPageBreak(false, 0)
	// Pinned creation date keeps equal specs byte-identical, so the
	// stored checksum is a function of content alone.
	doc.SetCreationDate(time.Unix(0, 0).UTC())
	if s.Title != "" {
		doc.SetTitle(s.Title, true)
	}
	if s.Author != "" {
		doc.SetAuthor(s.Author, true)
	}
	if s.Subject != "" {
		doc.SetSubject(s.Subject, true)
	}
	if s.Creator != "" {
		doc.SetCreator(s.Creator, true)
	}

	imageSeq := 0
	for _, page := range s.Pages {
		w, h := page.Size.Resolve()
		doc.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
		for _, el := range page.Elements {
			if err := drawElement(doc, el, h, &imageSeq); err != nil {
				return nil, err
			}
		}
	}
	if len(s.Pages) == 0 {
		doc.AddPage()
	}

	if doc.Err() {
		return nil, fmt.Errorf("pdf generation: %w", doc.Error())
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}

	pageCount := doc.PageCount()
	c.log.Debug("Compiled pdf spec", "pages", pageCount, "bytes", buf.Len())
	return &docgen.Result{
		Buffer:      buf.Bytes(),
		Filename:    docgen.SlugFilename(s.Title, ".pdf"),
		ContentType: docgen.ContentTypePDF,
		Metadata:    map[string]interface{}{"pageCount": pageCount},
	}, nil
}

func drawElement(doc *gofpdf.Fpdf, el spec.PageElement, pageH float64, imageSeq *int) error {
	switch el.Type {
	case spec.ElementText:
		drawText(doc, el.Text, pageH)
	case spec.ElementImage:
		return drawImage(doc, el.Image, pageH, imageSeq)
	case spec.ElementRectangle:
		drawRectangle(doc, el.Rectangle, pageH)
	case spec.ElementLine:
		drawLine(doc, el.Line, pageH)
	case spec.ElementCircle:
		drawCircle(doc, el.Circle, pageH)
	case spec.ElementTable:
		drawTable(doc, el.Table, pageH)
	}
	return nil
}

func drawText(doc *gofpdf.Fpdf, t *spec.TextElement, pageH float64) {
	family, style := resolveFont(t.Font)
	size := t.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	doc.SetFont(family, style, size)
	setTextColor(doc, t.Color)

	x := t.X
	y := pageH - t.Y // baseline

	if t.Rotate != 0 {
		doc.TransformBegin()
		doc.TransformRotate(t.Rotate, x, y)
		defer doc.TransformEnd()
	}

	if t.MaxWidth > 0 {
		lineHeight := t.LineHeight
		if lineHeight <= 0 {
			lineHeight = size * 1.2
		}
		for i, line := range doc.SplitText(t.Text, t.MaxWidth) {
			doc.Text(x, y+float64(i)*lineHeight, line)
		}
	} else {
		doc.Text(x, y, t.Text)
	}
	doc.SetTextColor(0, 0, 0)
}

func drawImage(doc *gofpdf.Fpdf, img *spec.ImageElement, pageH float64, imageSeq *int) error {
	imageType, err := sniffImageType(img.Data)
	if err != nil {
		return err
	}
	*imageSeq++
	name := fmt.Sprintf("embedded-%d", *imageSeq)
	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if doc.Err() {
		return fmt.Errorf("pdf image registration: %w", doc.Error())
	}

	w, h := img.Width, img.Height
	nativeW, nativeH := info.Extent()
	if w <= 0 {
		w = nativeW
	}
	if h <= 0 {
		h = nativeH
	}
	// Spec (x, y) is the image's bottom-left corner.
	doc.ImageOptions(name, img.X, pageH-img.Y-h, w, h, false, opts, 0, "")
	return nil
}

// sniffImageType identifies the payload from its magic bytes. PNG and
// JPEG only; anything else is an unsupported-format failure.
func sniffImageType(data []byte) (string, error) {
	if len(data) >= 4 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "PNG", nil
	}
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8 {
		return "JPG", nil
	}
	return "", docgen.ErrUnsupportedImageFormat
}

func drawRectangle(doc *gofpdf.Fpdf, r *spec.RectangleElement, pageH float64) {
	applyAlpha(doc, r.Opacity)
	defer resetAlpha(doc, r.Opacity)
	style := shapeStyle(doc, r.Fill, r.Border, r.BorderWidth)
	doc.Rect(r.X, pageH-r.Y-r.Height, r.Width, r.Height, style)
}

func drawLine(doc *gofpdf.Fpdf, l *spec.LineElement, pageH float64) {
	setDrawColor(doc, l.Color)
	if l.Width > 0 {
		doc.SetLineWidth(l.Width)
	} else {
		doc.SetLineWidth(1)
	}
	doc.Line(l.X1, pageH-l.Y1, l.X2, pageH-l.Y2)
	doc.SetDrawColor(0, 0, 0)
	doc.SetLineWidth(0.2)
}

func drawCircle(doc *gofpdf.Fpdf, ci *spec.CircleElement, pageH float64) {
	applyAlpha(doc, ci.Opacity)
	defer resetAlpha(doc, ci.Opacity)
	style := shapeStyle(doc, ci.Fill, ci.Border, ci.BorderWidth)
	doc.Circle(ci.X, pageH-ci.Y, ci.Radius, style)
}

// drawTable walks rows top to bottom from the table's top edge and
// columns left to right. Cells past the last declared width reuse it;
// text never wraps inside a cell.
func drawTable(doc *gofpdf.Fpdf, t *spec.TableElement, pageH float64) {
	fontSize := t.FontSize
	if fontSize <= 0 {
		fontSize = 10
	}
	doc.SetFont("Helvetica", "", fontSize)
	doc.SetLineWidth(0.75)
	doc.SetDrawColor(0, 0, 0)

	totalW := 0.0
	for _, w := range t.ColumnWidths {
		totalW += w
	}

	topY := pageH - t.Y
	for ri, row := range t.Rows {
		rowTop := topY + float64(ri)*t.RowHeight
		if ri == 0 && t.HeaderBackground != nil {
			setFillColor(doc, t.HeaderBackground)
			doc.Rect(t.X, rowTop, totalW, t.RowHeight, "F")
		}
		cellX := t.X
		for ci, cell := range row {
			w := columnWidth(t.ColumnWidths, ci)
			doc.Rect(cellX, rowTop, w, t.RowHeight, "D")
			doc.Text(cellX+cellPadding, rowTop+t.RowHeight/2+fontSize*0.35, cell)
			cellX += w
		}
	}
}

func columnWidth(widths []float64, i int) float64 {
	if i < len(widths) {
		return widths[i]
	}
	return widths[len(widths)-1]
}

func shapeStyle(doc *gofpdf.Fpdf, fill, border *spec.RGB, borderWidth float64) string {
	style := ""
	if fill != nil {
		setFillColor(doc, fill)
		style = "F"
	}
	if border != nil {
		setDrawColor(doc, border)
		if borderWidth > 0 {
			doc.SetLineWidth(borderWidth)
		} else {
			doc.SetLineWidth(1)
		}
		if style == "F" {
			style = "FD"
		} else {
			style = "D"
		}
	}
	if style == "" {
		style = "D"
	}
	return style
}

func applyAlpha(doc *gofpdf.Fpdf, opacity *float64) {
	if opacity != nil {
		doc.SetAlpha(*opacity, "Normal")
	}
}

func resetAlpha(doc *gofpdf.Fpdf, opacity *float64) {
	if opacity != nil {
		doc.SetAlpha(1, "Normal")
	}
}

func setTextColor(doc *gofpdf.Fpdf, c *spec.RGB) {
	if c == nil {
		doc.SetTextColor(0, 0, 0)
		return
	}
	r, g, b := toByteChannels(c)
	doc.SetTextColor(r, g, b)
}

func setFillColor(doc *gofpdf.Fpdf, c *spec.RGB) {
	r, g, b := toByteChannels(c)
	doc.SetFillColor(r, g, b)
}

func setDrawColor(doc *gofpdf.Fpdf, c *spec.RGB) {
	if c == nil {
		doc.SetDrawColor(0, 0, 0)
		return
	}
	r, g, b := toByteChannels(c)
	doc.SetDrawColor(r, g, b)
}

func toByteChannels(c *spec.RGB) (int, int, int) {
	conv := func(v float64) int {
		return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return conv(c.R), conv(c.G), conv(c.B)
}

// resolveFont maps a standard font name like "Times-Bold" onto the
// writer's family/style pair. Unknown names fall back to Helvetica.
func resolveFont(name string) (family, style string) {
	base := name
	variant := ""
	if idx := strings.IndexByte(name, '-'); idx >= 0 {
		base = name[:idx]
		variant = name[idx+1:]
	}
	switch strings.ToLower(base) {
	case "times", "timesroman":
		family = "Times"
	case "courier":
		family = "Courier"
	default:
		family = "Helvetica"
	}
	switch strings.ToLower(variant) {
	case "bold":
		style = "B"
	case "oblique", "italic":
		style = "I"
	case "boldoblique", "bolditalic":
		style = "BI"
	default:
		style = ""
	}
	return family, style
}
