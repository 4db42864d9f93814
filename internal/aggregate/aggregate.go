// Package aggregate computes the grouped means and extrema behind every
// dashboard chart. All functions are pure reads of a dataset snapshot.
package aggregate

import (
	"math"
	"sort"

	"github.com/sells-group/aq-dashboard/internal/dataset"
)

// Range is the observed spread of one pollutant.
type Range struct {
	Pollutant string  `json:"pollutant" yaml:"pollutant"`
	Min       float64 `json:"min" yaml:"min"`
	Max       float64 `json:"max" yaml:"max"`
}

// Ranges is the per-pollutant range table plus dataset-wide extrema.
type Ranges struct {
	Pollutants   []Range `json:"pollutants" yaml:"pollutants"`
	GlobalMin    float64 `json:"global_min" yaml:"global_min"`
	GlobalMax    float64 `json:"global_max" yaml:"global_max"`
	MaxPollutant string  `json:"max_pollutant" yaml:"max_pollutant"`
}

// ComputeRanges builds the range table in first-seen pollutant order.
func ComputeRanges(ds *dataset.Dataset) Ranges {
	idx := make(map[string]int)
	var out Ranges
	first := true

	ds.Each(func(o dataset.Observation) {
		i, ok := idx[o.Pollutant]
		if !ok {
			i = len(out.Pollutants)
			idx[o.Pollutant] = i
			out.Pollutants = append(out.Pollutants, Range{Pollutant: o.Pollutant, Min: o.Value, Max: o.Value})
		}
		r := &out.Pollutants[i]
		r.Min = math.Min(r.Min, o.Value)
		r.Max = math.Max(r.Max, o.Value)

		if first {
			out.GlobalMin, out.GlobalMax, out.MaxPollutant = o.Value, o.Value, o.Pollutant
			first = false
			return
		}
		out.GlobalMin = math.Min(out.GlobalMin, o.Value)
		if o.Value > out.GlobalMax {
			out.GlobalMax, out.MaxPollutant = o.Value, o.Pollutant
		}
	})
	return out
}

// Lookup returns the range of one pollutant.
func (r Ranges) Lookup(pollutant string) (Range, bool) {
	for _, p := range r.Pollutants {
		if p.Pollutant == pollutant {
			return p, true
		}
	}
	return Range{}, false
}

// DetailRange is the y range shared by every detail chart.
func (r Ranges) DetailRange() [2]float64 {
	return [2]float64{r.GlobalMin, r.GlobalMax}
}

// ComparisonRange is the symmetric y range of the seasonal change chart.
func (r Ranges) ComparisonRange() [2]float64 {
	return [2]float64{-r.GlobalMax, r.GlobalMax}
}

// Mean is the average of the observations sharing Key.
type Mean struct {
	Key   string  `json:"key"`
	Value float64 `json:"mean"`
	Count int     `json:"count"`
}

type accumulator struct {
	sum   float64
	count int
}

func meansBy(obs []dataset.Observation, key func(dataset.Observation) string) []Mean {
	accs := make(map[string]*accumulator)
	var order []string
	for _, o := range obs {
		k := key(o)
		a, ok := accs[k]
		if !ok {
			a = &accumulator{}
			accs[k] = a
			order = append(order, k)
		}
		a.sum += o.Value
		a.count++
	}

	out := make([]Mean, 0, len(order))
	for _, k := range order {
		a := accs[k]
		out = append(out, Mean{Key: k, Value: a.sum / float64(a.count), Count: a.count})
	}
	return out
}

func byPlace(o dataset.Observation) string     { return o.Place }
func byPollutant(o dataset.Observation) string { return o.Pollutant }

// PlaceMeans averages one pollutant per place, highest mean first. Equal
// means are ordered by place name.
func PlaceMeans(ds *dataset.Dataset, pollutant string) []Mean {
	means := meansBy(ds.Select(func(o dataset.Observation) bool {
		return o.Pollutant == pollutant
	}), byPlace)
	sort.SliceStable(means, func(i, j int) bool {
		if means[i].Value != means[j].Value {
			return means[i].Value > means[j].Value
		}
		return means[i].Key < means[j].Key
	})
	return means
}

// PollutantMeans averages every pollutant measured at place, ordered by
// pollutant name.
func PollutantMeans(ds *dataset.Dataset, place string) []Mean {
	return seasonMeans(ds, place, "")
}

// seasonMeans averages per pollutant at place, optionally restricted to one
// period, ordered by pollutant name.
func seasonMeans(ds *dataset.Dataset, place, period string) []Mean {
	means := meansBy(ds.Select(func(o dataset.Observation) bool {
		return o.Place == place && (period == "" || o.Period == period)
	}), byPollutant)
	sort.Slice(means, func(i, j int) bool { return means[i].Key < means[j].Key })
	return means
}

// Change is the summer minus winter difference of one pollutant's mean.
type Change struct {
	Pollutant string  `json:"pollutant"`
	Winter    float64 `json:"winter_mean"`
	Summer    float64 `json:"summer_mean"`
	Change    float64 `json:"change"`
}

// SeasonalChange joins the winter and summer means at place on pollutant
// name. Pollutants missing from either season are left out; no value is
// imputed for them.
func SeasonalChange(ds *dataset.Dataset, place string) []Change {
	winter := seasonMeans(ds, place, dataset.SeasonWinter)
	summer := seasonMeans(ds, place, dataset.SeasonSummer)

	winterByName := make(map[string]float64, len(winter))
	for _, m := range winter {
		winterByName[m.Key] = m.Value
	}

	out := make([]Change, 0, len(summer))
	for _, s := range summer {
		w, ok := winterByName[s.Key]
		if !ok {
			continue
		}
		out = append(out, Change{Pollutant: s.Key, Winter: w, Summer: s.Value, Change: s.Value - w})
	}
	return out
}

// Reference holds the dataset-wide statistics drawn as hover reference lines.
type Reference struct {
	Pollutant string  `json:"pollutant"`
	Unit      string  `json:"unit"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	Count     int     `json:"count"`
}

// ReferenceFor computes the max and mean of pollutant over every place and
// period. It reports false when the pollutant has no observations.
func ReferenceFor(ds *dataset.Dataset, pollutant string) (Reference, bool) {
	ref := Reference{Pollutant: pollutant, Max: math.Inf(-1)}
	var sum float64
	ds.Each(func(o dataset.Observation) {
		if o.Pollutant != pollutant {
			return
		}
		if ref.Count == 0 {
			ref.Unit = o.Unit
		}
		ref.Count++
		sum += o.Value
		ref.Max = math.Max(ref.Max, o.Value)
	})
	if ref.Count == 0 {
		return Reference{}, false
	}
	ref.Mean = sum / float64(ref.Count)
	return ref, true
}
