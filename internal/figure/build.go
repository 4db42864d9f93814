package figure

import (
	"fmt"

	"github.com/sells-group/aq-dashboard/internal/aggregate"
)

// Text fixed by the comparison chart.
const (
	ComparisonSubtitle = "Winter 2022 to Summer 2023"
	OzoneNote          = "Ozone excluded due to no data collected from Winter 2022."
	NoDataText         = "No data"
)

// Overview ranks places by their mean level of one pollutant. The means are
// expected in display order.
func Overview(pollutant string, means []aggregate.Mean) *Figure {
	f := &Figure{
		Title:      fmt.Sprintf("Average %s by place", pollutant),
		XTitle:     "geo_place_name",
		YTitle:     "data_value",
		HideXTicks: true,
		NoData:     len(means) == 0,
	}
	for _, m := range means {
		f.Bars = append(f.Bars, Bar{Label: m.Key, Value: m.Value, Color: DefaultBarColor})
	}
	return f
}

// Detail shows every pollutant's mean at one place on the shared y range.
func Detail(place string, means []aggregate.Mean, yRange [2]float64) *Figure {
	f := &Figure{
		Title:  fmt.Sprintf("Average Pollutant Levels for %s", place),
		XTitle: "name",
		YTitle: "data_value",
		YRange: &yRange,
		NoData: len(means) == 0,
	}
	for _, m := range means {
		f.Bars = append(f.Bars, Bar{Label: m.Key, Value: m.Value, Color: DefaultBarColor})
	}
	return f
}

// Comparison charts the summer minus winter change per pollutant at one
// place, one colour per bar, on a range symmetric around zero.
func Comparison(place string, changes []aggregate.Change, yRange [2]float64) *Figure {
	f := &Figure{
		Title:    fmt.Sprintf("Change in Pollutant Levels for %s", place),
		Subtitle: ComparisonSubtitle,
		XTitle:   "name",
		YTitle:   "change",
		YRange:   &yRange,
		FontSize: 12,
		NoData:   len(changes) == 0,
		Annotations: []Annotation{{
			Text:        OzoneNote,
			X:           0.5,
			Y:           -30,
			XRef:        RefDomain,
			YRef:        RefY,
			BgColor:     "#D3D3D3",
			BorderColor: "#c7c7c7",
			BorderWidth: 2,
			BorderPad:   4,
		}},
	}
	for i, c := range changes {
		f.Bars = append(f.Bars, Bar{Label: c.Pollutant, Value: c.Change, Color: Palette[i%len(Palette)]})
	}
	return f
}

// Empty is the figure shown before any place has been clicked.
func Empty() *Figure {
	return &Figure{}
}

// Base returns a copy of f without shapes or annotations.
func Base(f *Figure) *Figure {
	c := f.Clone()
	c.Shapes = nil
	c.Annotations = nil
	return c
}

// WithReferenceLines re-renders base with dashed lines at the pollutant's
// dataset-wide max and mean. Existing overlays are replaced, so the result
// always carries exactly two shapes and two annotations.
func WithReferenceLines(base *Figure, ref aggregate.Reference) *Figure {
	f := Base(base)
	n := float64(len(f.Bars))

	for _, line := range []struct {
		label string
		value float64
	}{
		{"Max", ref.Max},
		{"Mean", ref.Mean},
	} {
		f.Shapes = append(f.Shapes, Shape{
			X0:   -0.5,
			X1:   n - 0.5,
			Y0:   line.value,
			Y1:   line.value,
			Line: Line{Color: ReferenceColor, Width: 2, Dash: "dash"},
		})
		f.Annotations = append(f.Annotations, Annotation{
			Text:      fmt.Sprintf("%s: %.2f %s", line.label, line.value, ref.Unit),
			X:         n / 2,
			Y:         line.value,
			XRef:      RefData,
			YRef:      RefY,
			YShift:    10,
			FontSize:  12,
			FontColor: ReferenceColor,
			BgColor:   "white",
		})
	}
	return f
}
