package figure

import (
	"io"
	"math"
	"strings"

	"github.com/rotisserie/eris"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	svgHeight   = 480
	svgMinWidth = 640
)

var namedColors = map[string]drawing.Color{
	"red":   drawing.ColorRed,
	"white": drawing.ColorWhite,
	"black": drawing.ColorBlack,
	"gray":  {R: 128, G: 128, B: 128, A: 255},
}

func parseColor(c string) drawing.Color {
	if named, ok := namedColors[strings.ToLower(c)]; ok {
		return named
	}
	if c == "" {
		return drawing.ColorFromHex(strings.TrimPrefix(DefaultBarColor, "#"))
	}
	return drawing.ColorFromHex(strings.TrimPrefix(c, "#"))
}

var svgEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// svgText escapes s for the SVG renderer, which writes text nodes verbatim.
func svgText(s string) string {
	return svgEscaper.Replace(s)
}

// RenderSVG draws f as a standalone SVG document. Figures without bars
// render a titled placeholder.
func (f *Figure) RenderSVG(w io.Writer) error {
	if f.NoData || len(f.Bars) == 0 {
		return renderPlaceholder(w, f.Title)
	}

	lo, hi := f.yBounds()
	barWidth, spacing := barGeometry(len(f.Bars))

	bc := chart.BarChart{
		Title:      svgText(f.Title),
		Width:      max(svgMinWidth, 120+len(f.Bars)*(barWidth+spacing)),
		Height:     svgHeight,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 56, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.Style{Hidden: f.HideXTicks},
		YAxis: chart.YAxis{
			Name:  f.YTitle,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		UseBaseValue: lo < 0,
		BaseValue:    0,
	}
	if f.FontSize > 0 {
		bc.TitleStyle = chart.Style{FontSize: float64(f.FontSize) + 4}
	}
	for _, b := range f.Bars {
		col := parseColor(b.Color)
		bc.Bars = append(bc.Bars, chart.Value{
			Label: svgText(b.Label),
			Value: math.Max(lo, math.Min(hi, b.Value)),
			Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
		})
	}
	bc.Elements = []chart.Renderable{f.overlays(lo, hi)}

	if err := bc.Render(chart.SVG, w); err != nil {
		return eris.Wrap(err, "figure: render svg")
	}
	return nil
}

// yBounds returns the y range to draw, falling back to the bar extent
// (always including zero) when no usable range is set.
func (f *Figure) yBounds() (float64, float64) {
	if f.YRange != nil && f.YRange[1] > f.YRange[0] {
		return f.YRange[0], f.YRange[1]
	}
	lo, hi := 0.0, 0.0
	for _, b := range f.Bars {
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	if lo < 0 {
		lo -= pad
	}
	return lo, hi + pad
}

func barGeometry(n int) (width, spacing int) {
	switch {
	case n > 60:
		return 6, 2
	case n > 20:
		return 14, 4
	default:
		return 40, 24
	}
}

// overlays draws shapes, annotations and the subtitle on top of the bars.
// Category x coordinates map -0.5 and n-0.5 onto the canvas edges.
func (f *Figure) overlays(lo, hi float64) chart.Renderable {
	n := float64(len(f.Bars))
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		if defaults.Font != nil {
			r.SetFont(defaults.Font)
		}

		toY := func(v float64) int {
			y := box.Bottom - int(math.Round((v-lo)/(hi-lo)*float64(box.Height())))
			return min(box.Bottom, max(box.Top, y))
		}
		toX := func(x float64, ref string) int {
			frac := x
			if ref == RefData || ref == "" {
				frac = (x + 0.5) / n
			}
			return box.Left + int(math.Round(frac*float64(box.Width())))
		}

		for _, s := range f.Shapes {
			r.SetStrokeColor(parseColor(s.Line.Color))
			r.SetStrokeWidth(s.Line.Width)
			if s.Line.Dash != "" {
				r.SetStrokeDashArray([]float64{6, 4})
			} else {
				r.SetStrokeDashArray(nil)
			}
			r.MoveTo(toX(s.X0, RefData), toY(s.Y0))
			r.LineTo(toX(s.X1, RefData), toY(s.Y1))
			r.Stroke()
		}
		r.SetStrokeDashArray(nil)

		for _, a := range f.Annotations {
			size := a.FontSize
			if size == 0 {
				size = 10
			}
			r.SetFontSize(float64(size))
			text := svgText(a.Text)
			tb := r.MeasureText(text)
			x := toX(a.X, a.XRef) - tb.Width()/2
			y := toY(a.Y) - int(a.YShift)

			if a.BgColor != "" {
				r.SetFillColor(parseColor(a.BgColor))
				r.SetStrokeWidth(0)
				r.SetStrokeColor(drawing.ColorTransparent)
				if a.BorderWidth > 0 {
					r.SetStrokeWidth(a.BorderWidth)
					r.SetStrokeColor(parseColor(a.BorderColor))
				}
				pad := int(a.BorderPad) + 2
				r.MoveTo(x-pad, y-tb.Height()-pad)
				r.LineTo(x+tb.Width()+pad, y-tb.Height()-pad)
				r.LineTo(x+tb.Width()+pad, y+pad)
				r.LineTo(x-pad, y+pad)
				r.LineTo(x-pad, y-tb.Height()-pad)
				r.Close()
				r.FillStroke()
			}
			fontColor := a.FontColor
			if fontColor == "" {
				fontColor = "black"
			}
			r.SetFontColor(parseColor(fontColor))
			r.Text(text, x, y)
		}

		if f.Subtitle != "" {
			r.SetFontSize(11)
			r.SetFontColor(parseColor("gray"))
			text := svgText(f.Subtitle)
			tb := r.MeasureText(text)
			r.Text(text, box.Left+(box.Width()-tb.Width())/2, box.Top-8)
		}
	}
}

// renderPlaceholder writes a blank chart carrying the title and a
// "No data" message.
func renderPlaceholder(w io.Writer, title string) error {
	r, err := chart.SVG(svgMinWidth, svgHeight)
	if err != nil {
		return eris.Wrap(err, "figure: create svg renderer")
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return eris.Wrap(err, "figure: load font")
	}
	r.SetFont(font)

	r.SetFillColor(drawing.ColorWhite)
	r.SetStrokeColor(drawing.ColorWhite)
	r.MoveTo(0, 0)
	r.LineTo(svgMinWidth, 0)
	r.LineTo(svgMinWidth, svgHeight)
	r.LineTo(0, svgHeight)
	r.LineTo(0, 0)
	r.Close()
	r.FillStroke()

	if title != "" {
		r.SetFontSize(14)
		r.SetFontColor(drawing.ColorBlack)
		text := svgText(title)
		tb := r.MeasureText(text)
		r.Text(text, (svgMinWidth-tb.Width())/2, 32)
	}

	r.SetFontSize(20)
	r.SetFontColor(parseColor("gray"))
	tb := r.MeasureText(NoDataText)
	r.Text(NoDataText, (svgMinWidth-tb.Width())/2, svgHeight/2)

	return eris.Wrap(r.Save(w), "figure: write svg")
}
