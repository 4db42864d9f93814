// Package dataset loads the NYC air-quality export and exposes it as a
// read-only snapshot shared by every chart handler.
package dataset

import (
	"github.com/rotisserie/eris"
)

// Supported time periods. Every loaded observation carries one of these.
const (
	SeasonWinter = "Winter 2022-23"
	SeasonSummer = "Summer 2023"
)

var (
	// ErrMalformed is returned when the source lacks a header or a required column.
	ErrMalformed = eris.New("dataset: malformed source")
	// ErrEmpty is returned when no observation survives filtering.
	ErrEmpty = eris.New("dataset: no observations for supported periods")
)

// Observation is one measurement row.
type Observation struct {
	Place     string  `json:"geo_place_name" dataframe:"geo_place_name"`
	GeoType   string  `json:"geo_type_name" dataframe:"geo_type_name"`
	Pollutant string  `json:"name" dataframe:"name"`
	Period    string  `json:"time_period" dataframe:"time_period"`
	Value     float64 `json:"data_value" dataframe:"data_value"`
	Unit      string  `json:"measure_info" dataframe:"measure_info"`
}

// IsSupportedPeriod reports whether period is one of the two compared seasons.
func IsSupportedPeriod(period string) bool {
	return period == SeasonWinter || period == SeasonSummer
}

// Dataset is an immutable, ordered collection of observations. It is safe
// for concurrent use.
type Dataset struct {
	records    []Observation
	pollutants []string
	places     []string
	units      map[string]string
	skipped    int
}

// New builds a Dataset from records, keeping only supported periods.
// The slice is copied.
func New(records []Observation) *Dataset {
	return build(records, 0)
}

func build(records []Observation, skipped int) *Dataset {
	ds := &Dataset{
		records: make([]Observation, 0, len(records)),
		units:   make(map[string]string),
		skipped: skipped,
	}
	seenPlace := make(map[string]bool)
	for _, o := range records {
		if !IsSupportedPeriod(o.Period) {
			continue
		}
		ds.records = append(ds.records, o)
		if _, ok := ds.units[o.Pollutant]; !ok {
			ds.units[o.Pollutant] = o.Unit
			ds.pollutants = append(ds.pollutants, o.Pollutant)
		}
		if !seenPlace[o.Place] {
			seenPlace[o.Place] = true
			ds.places = append(ds.places, o.Place)
		}
	}
	return ds
}

// Len returns the number of observations.
func (d *Dataset) Len() int { return len(d.records) }

// Skipped returns how many source rows were dropped for an unusable data_value.
func (d *Dataset) Skipped() int { return d.skipped }

// Records returns a copy of all observations in source order.
func (d *Dataset) Records() []Observation {
	return append([]Observation(nil), d.records...)
}

// Each calls fn for every observation in source order.
func (d *Dataset) Each(fn func(Observation)) {
	for _, o := range d.records {
		fn(o)
	}
}

// Select returns the observations matching keep, in source order.
func (d *Dataset) Select(keep func(Observation) bool) []Observation {
	var out []Observation
	for _, o := range d.records {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

// Pollutants returns the distinct pollutant names in first-seen order.
func (d *Dataset) Pollutants() []string {
	return append([]string(nil), d.pollutants...)
}

// Places returns the distinct place names in first-seen order.
func (d *Dataset) Places() []string {
	return append([]string(nil), d.places...)
}

// HasPollutant reports whether any observation measures name.
func (d *Dataset) HasPollutant(name string) bool {
	_, ok := d.units[name]
	return ok
}

// Unit returns the measure_info of the first observation of pollutant.
func (d *Dataset) Unit(pollutant string) (string, bool) {
	u, ok := d.units[pollutant]
	return u, ok
}
