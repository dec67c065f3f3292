// Package spec holds the declarative document specs consumed by the
// format compilers. Element and content variants are closed tagged
// unions: exactly one variant field is set per item, and the compilers
// switch exhaustively over the tag.
package spec

import "fmt"

// RGB is a color with channels in the unit range [0, 1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

func (c RGB) valid() bool {
	inUnit := func(v float64) bool { return v >= 0 && v <= 1 }
	return inUnit(c.R) && inUnit(c.G) && inUnit(c.B)
}

// Named page size presets, in points.
var pageSizePresets = map[string][2]float64{
	"letter":  {612, 792},
	"legal":   {612, 1008},
	"a4":      {595.28, 841.89},
	"a3":      {841.89, 1190.55},
	"tabloid": {792, 1224},
}

// PageSize is either a named preset or an explicit width/height pair in
// points. The zero value resolves to Letter (612x792).
type PageSize struct {
	Preset string  `json:"preset,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Resolve returns the concrete width/height in points.
func (s PageSize) Resolve() (w, h float64) {
	if s.Preset != "" {
		if dims, ok := pageSizePresets[normalizeName(s.Preset)]; ok {
			return dims[0], dims[1]
		}
	}
	if s.Width > 0 && s.Height > 0 {
		return s.Width, s.Height
	}
	return 612, 792
}

// PdfSpec describes a PDF as pages of absolutely positioned elements.
// Coordinates originate at the bottom-left of the page, in points.
type PdfSpec struct {
	Title   string     `json:"title,omitempty"`
	Author  string     `json:"author,omitempty"`
	Subject string     `json:"subject,omitempty"`
	Creator string     `json:"creator,omitempty"`
	Pages   []PageSpec `json:"pages"`
}

// PageSpec is one page. Element order is paint order: later elements
// draw over earlier ones. Pages are independent of each other.
type PageSpec struct {
	Size     PageSize      `json:"size"`
	Elements []PageElement `json:"elements"`
}

type PdfElementType string

const (
	ElementText      PdfElementType = "text"
	ElementImage     PdfElementType = "image"
	ElementRectangle PdfElementType = "rectangle"
	ElementLine      PdfElementType = "line"
	ElementCircle    PdfElementType = "circle"
	ElementTable     PdfElementType = "table"
)

// PageElement is the tagged union of drawable elements. Exactly the
// variant named by Type must be non-nil.
type PageElement struct {
	Type      PdfElementType    `json:"type"`
	Text      *TextElement      `json:"text,omitempty"`
	Image     *ImageElement     `json:"image,omitempty"`
	Rectangle *RectangleElement `json:"rectangle,omitempty"`
	Line      *LineElement      `json:"line,omitempty"`
	Circle    *CircleElement    `json:"circle,omitempty"`
	Table     *TableElement     `json:"table,omitempty"`
}

type TextElement struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Text       string  `json:"text"`
	Font       string  `json:"font,omitempty"`     // standard font name, default Helvetica
	FontSize   float64 `json:"fontSize,omitempty"` // default 12
	Color      *RGB    `json:"color,omitempty"`
	MaxWidth   float64 `json:"maxWidth,omitempty"`   // wrap width; 0 = no wrapping
	LineHeight float64 `json:"lineHeight,omitempty"` // default fontSize*1.2
	Rotate     float64 `json:"rotate,omitempty"`     // degrees
}

type ImageElement struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Data   []byte  `json:"data"`
	Width  float64 `json:"width,omitempty"`  // default native pixel width
	Height float64 `json:"height,omitempty"` // default native pixel height
}

type RectangleElement struct {
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Width       float64  `json:"width"`
	Height      float64  `json:"height"`
	Fill        *RGB     `json:"fill,omitempty"`
	Border      *RGB     `json:"border,omitempty"`
	BorderWidth float64  `json:"borderWidth,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
}

type LineElement struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color *RGB    `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

type CircleElement struct {
	X           float64  `json:"x"` // center
	Y           float64  `json:"y"` // center
	Radius      float64  `json:"radius"`
	Fill        *RGB     `json:"fill,omitempty"`
	Border      *RGB     `json:"border,omitempty"`
	BorderWidth float64  `json:"borderWidth,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty"`
}

// TableElement is a fixed-grid renderer: rows top to bottom from Y,
// columns left to right using ColumnWidths. Column count is not
// validated against row cell count; cells past the last width reuse it.
// Cell text does not wrap; long text overflows.
type TableElement struct {
	X                float64    `json:"x"`
	Y                float64    `json:"y"` // top edge of row 0
	ColumnWidths     []float64  `json:"columnWidths"`
	RowHeight        float64    `json:"rowHeight"`
	Rows             [][]string `json:"rows"`
	FontSize         float64    `json:"fontSize,omitempty"`
	HeaderBackground *RGB       `json:"headerBackground,omitempty"`
}

// Validate checks the spec against its schema. A nil return means every
// page and element is drawable.
func (s *PdfSpec) Validate() []string {
	var issues []string
	for pi, page := range s.Pages {
		for ei, el := range page.Elements {
			at := fmt.Sprintf("page %d element %d", pi, ei)
			issues = append(issues, el.validate(at)...)
		}
	}
	return issues
}

func (el PageElement) validate(at string) []string {
	var issues []string
	variants := 0
	if el.Text != nil {
		variants++
	}
	if el.Image != nil {
		variants++
	}
	if el.Rectangle != nil {
		variants++
	}
	if el.Line != nil {
		variants++
	}
	if el.Circle != nil {
		variants++
	}
	if el.Table != nil {
		variants++
	}
	if variants != 1 {
		return []string{fmt.Sprintf("%s: exactly one element variant must be set, got %d", at, variants)}
	}

	switch el.Type {
	case ElementText:
		if el.Text == nil {
			return []string{fmt.Sprintf("%s: type %q without matching payload", at, el.Type)}
		}
		if el.Text.Text == "" {
			issues = append(issues, fmt.Sprintf("%s: text element requires text", at))
		}
		if el.Text.Color != nil && !el.Text.Color.valid() {
			issues = append(issues, fmt.Sprintf("%s: text color channels must be in [0,1]", at))
		}
	case ElementImage:
		if el.Image == nil {
			return []string{fmt.Sprintf("%s: type %q without matching payload", at, el.Type)}
		}
		if len(el.Image.Data) == 0 {
			issues = append(issues, fmt.Sprintf("%s: image element requires data", at))
		}
	case ElementRectangle:
		if el.Rectangle == nil {
			return []string{fmt.Sprintf("%s: type %q without matching payload", at, el.Type)}
		}
		if el.Rectangle.Width <= 0 || el.Rectangle.Height <= 0 {
			issues = append(issues, fmt.Sprintf("%s: rectangle requires positive width and height", at))
		}
	case ElementLine:
		if el.Line == nil {
			return []string{fmt.Sprintf("%s: type %q without matching payload", at, el.Type)}
		}
	case ElementCircle:
		if el.Circle == nil {
			return []string{fmt.Sprintf("%s: type %q without matching payload", at, el.Type)}
		}
		if el.Circle.Radius <= 0 {
			issues = append(issues, fmt.Sprintf("%s: circle requires positive radius", at))
		}
	case ElementTable:
		if el.Table == nil {
			return []string{fmt.Sprintf("%s: type %q without matching payload", at, el.Type)}
		}
		if len(el.Table.ColumnWidths) == 0 {
			issues = append(issues, fmt.Sprintf("%s: table requires columnWidths", at))
		}
		if el.Table.RowHeight <= 0 {
			issues = append(issues, fmt.Sprintf("%s: table requires positive rowHeight", at))
		}
	default:
		issues = append(issues, fmt.Sprintf("%s: unknown element type %q", at, el.Type))
	}
	return issues
}
