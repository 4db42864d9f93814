// Package figure models the dashboard's bar charts independently of how
// they are drawn. A Figure projects to Plotly JSON for the browser and
// renders to SVG for headless use.
package figure

// Default colours.
const (
	DefaultBarColor = "#636EFA"
	ReferenceColor  = "red"
)

// Palette is the qualitative palette used when every bar gets its own colour.
var Palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Axis reference names.
const (
	RefData   = "x"
	RefY      = "y"
	RefDomain = "x domain"
	RefPaper  = "paper"
)

// Bar is one category of a bar chart.
type Bar struct {
	Label string
	Value float64
	Color string
}

// Line styles a shape's outline.
type Line struct {
	Color string
	Width float64
	Dash  string
}

// Shape is a straight line in data coordinates. X is in category units,
// so -0.5 is the left edge of the first bar.
type Shape struct {
	X0, X1 float64
	Y0, Y1 float64
	Line   Line
}

// Annotation is a text label anchored at (X, Y).
type Annotation struct {
	Text        string
	X, Y        float64
	XRef, YRef  string
	YShift      float64
	FontSize    int
	FontColor   string
	BgColor     string
	BorderColor string
	BorderWidth float64
	BorderPad   float64
}

// Figure is a bar chart with optional overlays.
type Figure struct {
	Title       string
	Subtitle    string
	XTitle      string
	YTitle      string
	Bars        []Bar
	YRange      *[2]float64
	HideXTicks  bool
	Shapes      []Shape
	Annotations []Annotation
	FontSize    int
	NoData      bool
}

// Clone returns a deep copy.
func (f *Figure) Clone() *Figure {
	if f == nil {
		return nil
	}
	c := *f
	c.Bars = append([]Bar(nil), f.Bars...)
	c.Shapes = append([]Shape(nil), f.Shapes...)
	c.Annotations = append([]Annotation(nil), f.Annotations...)
	if f.YRange != nil {
		r := *f.YRange
		c.YRange = &r
	}
	return &c
}

// Labels returns the bar labels in display order.
func (f *Figure) Labels() []string {
	out := make([]string, len(f.Bars))
	for i, b := range f.Bars {
		out[i] = b.Label
	}
	return out
}

// HasLabel reports whether a bar is labelled label.
func (f *Figure) HasLabel(label string) bool {
	for _, b := range f.Bars {
		if b.Label == label {
			return true
		}
	}
	return false
}
