package figure

import (
	"fmt"
	"html"
)

// PlotlyFigure is the {data, layout} document Plotly.react consumes.
type PlotlyFigure struct {
	Data   []PlotlyTrace `json:"data"`
	Layout PlotlyLayout  `json:"layout"`
}

// PlotlyTrace is a single bar trace.
type PlotlyTrace struct {
	Type          string       `json:"type"`
	X             []string     `json:"x"`
	Y             []float64    `json:"y"`
	Marker        PlotlyMarker `json:"marker"`
	HoverTemplate string       `json:"hovertemplate,omitempty"`
}

// PlotlyMarker carries per-bar colours.
type PlotlyMarker struct {
	Color []string `json:"color"`
}

// PlotlyLayout is the subset of the Plotly layout the dashboard sets.
type PlotlyLayout struct {
	Title       PlotlyTitle        `json:"title"`
	XAxis       PlotlyAxis         `json:"xaxis"`
	YAxis       PlotlyAxis         `json:"yaxis"`
	Shapes      []PlotlyShape      `json:"shapes"`
	Annotations []PlotlyAnnotation `json:"annotations"`
	Font        *PlotlyFont        `json:"font,omitempty"`
	ShowLegend  bool               `json:"showlegend"`
}

// PlotlyTitle is a layout or axis title.
type PlotlyTitle struct {
	Text string `json:"text"`
}

// PlotlyAxis configures one axis.
type PlotlyAxis struct {
	Title          PlotlyTitle `json:"title"`
	Range          []float64   `json:"range,omitempty"`
	ShowTickLabels bool        `json:"showticklabels"`
	CategoryOrder  string      `json:"categoryorder,omitempty"`
	Visible        *bool       `json:"visible,omitempty"`
}

// PlotlyLine styles a shape outline.
type PlotlyLine struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
	Dash  string  `json:"dash,omitempty"`
}

// PlotlyShape is a layout shape.
type PlotlyShape struct {
	Type string     `json:"type"`
	X0   float64    `json:"x0"`
	X1   float64    `json:"x1"`
	Y0   float64    `json:"y0"`
	Y1   float64    `json:"y1"`
	Line PlotlyLine `json:"line"`
}

// PlotlyFont is a font override.
type PlotlyFont struct {
	Size  int    `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
}

// PlotlyAnnotation is a layout annotation.
type PlotlyAnnotation struct {
	Text        string      `json:"text"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	XRef        string      `json:"xref"`
	YRef        string      `json:"yref"`
	ShowArrow   bool        `json:"showarrow"`
	YShift      float64     `json:"yshift,omitempty"`
	Font        *PlotlyFont `json:"font,omitempty"`
	BgColor     string      `json:"bgcolor,omitempty"`
	BorderColor string      `json:"bordercolor,omitempty"`
	BorderWidth float64     `json:"borderwidth,omitempty"`
	BorderPad   float64     `json:"borderpad,omitempty"`
}

// Plotly projects f onto the Plotly.js figure schema. Bars keep their order;
// the category axis is pinned to it with categoryorder "trace".
func (f *Figure) Plotly() PlotlyFigure {
	out := PlotlyFigure{
		Data: []PlotlyTrace{},
		Layout: PlotlyLayout{
			Title:       PlotlyTitle{Text: plotlyTitle(f)},
			XAxis:       PlotlyAxis{Title: PlotlyTitle{Text: f.XTitle}, ShowTickLabels: !f.HideXTicks, CategoryOrder: "trace"},
			YAxis:       PlotlyAxis{Title: PlotlyTitle{Text: f.YTitle}, ShowTickLabels: true},
			Shapes:      []PlotlyShape{},
			Annotations: []PlotlyAnnotation{},
		},
	}
	if f.YRange != nil {
		out.Layout.YAxis.Range = []float64{f.YRange[0], f.YRange[1]}
	}
	if f.FontSize > 0 {
		out.Layout.Font = &PlotlyFont{Size: f.FontSize}
	}

	if len(f.Bars) > 0 {
		trace := PlotlyTrace{
			Type:          "bar",
			X:             make([]string, len(f.Bars)),
			Y:             make([]float64, len(f.Bars)),
			Marker:        PlotlyMarker{Color: make([]string, len(f.Bars))},
			HoverTemplate: "%{x}<br>%{y:.2f}<extra></extra>",
		}
		for i, b := range f.Bars {
			trace.X[i] = b.Label
			trace.Y[i] = b.Value
			trace.Marker.Color[i] = b.Color
		}
		out.Data = append(out.Data, trace)
	}

	for _, s := range f.Shapes {
		out.Layout.Shapes = append(out.Layout.Shapes, PlotlyShape{
			Type: "line",
			X0:   s.X0,
			X1:   s.X1,
			Y0:   s.Y0,
			Y1:   s.Y1,
			Line: PlotlyLine{Color: s.Line.Color, Width: s.Line.Width, Dash: s.Line.Dash},
		})
	}
	for _, a := range f.Annotations {
		pa := PlotlyAnnotation{
			Text:        a.Text,
			X:           a.X,
			Y:           a.Y,
			XRef:        a.XRef,
			YRef:        a.YRef,
			YShift:      a.YShift,
			BgColor:     a.BgColor,
			BorderColor: a.BorderColor,
			BorderWidth: a.BorderWidth,
			BorderPad:   a.BorderPad,
		}
		if a.FontSize > 0 || a.FontColor != "" {
			pa.Font = &PlotlyFont{Size: a.FontSize, Color: a.FontColor}
		}
		out.Layout.Annotations = append(out.Layout.Annotations, pa)
	}

	if f.NoData {
		hidden := false
		out.Layout.XAxis.Visible = &hidden
		out.Layout.YAxis.Visible = &hidden
		out.Layout.Annotations = append(out.Layout.Annotations, PlotlyAnnotation{
			Text: NoDataText,
			X:    0.5,
			Y:    0.5,
			XRef: RefPaper,
			YRef: RefPaper,
			Font: &PlotlyFont{Size: 20, Color: "gray"},
		})
	}
	return out
}

func plotlyTitle(f *Figure) string {
	if f.Subtitle == "" {
		return f.Title
	}
	return fmt.Sprintf(`%s <br><span style="font-size:13px;color:gray">%s</span>`, f.Title, html.EscapeString(f.Subtitle))
}
