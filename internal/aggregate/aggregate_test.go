package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/aq-dashboard/internal/dataset"
)

const (
	pm   = "Fine particles (PM 2.5)"
	no2  = "Nitrogen dioxide (NO2)"
	o3   = "Ozone (O3)"
	win  = dataset.SeasonWinter
	summ = dataset.SeasonSummer
)

func obs(place, pollutant, period string, value float64, unit string) dataset.Observation {
	return dataset.Observation{Place: place, GeoType: "UHF42", Pollutant: pollutant, Period: period, Value: value, Unit: unit}
}

// fixture mirrors the shape of the real export: ozone only has summer rows.
func fixture() *dataset.Dataset {
	return dataset.New([]dataset.Observation{
		obs("Astoria", pm, win, 8, "mcg/m3"),
		obs("Chelsea", pm, win, 10, "mcg/m3"),
		obs("Bronx", pm, win, 9, "mcg/m3"),
		obs("Astoria", pm, summ, 7, "mcg/m3"),
		obs("Chelsea", pm, summ, 9.5, "mcg/m3"),
		obs("Bronx", pm, summ, 8.5, "mcg/m3"),
		obs("Astoria", no2, win, 22, "ppb"),
		obs("Chelsea", no2, win, 30, "ppb"),
		obs("Bronx", no2, win, 25, "ppb"),
		obs("Astoria", no2, summ, 15, "ppb"),
		obs("Chelsea", no2, summ, 20, "ppb"),
		obs("Bronx", no2, summ, 18, "ppb"),
		obs("Astoria", o3, summ, 32, "ppb"),
		obs("Chelsea", o3, summ, 28, "ppb"),
		obs("Bronx", o3, summ, 30, "ppb"),
	})
}

func TestComputeRanges(t *testing.T) {
	got := ComputeRanges(fixture())

	want := Ranges{
		Pollutants: []Range{
			{Pollutant: pm, Min: 7, Max: 10},
			{Pollutant: no2, Min: 15, Max: 30},
			{Pollutant: o3, Min: 28, Max: 32},
		},
		GlobalMin:    7,
		GlobalMax:    32,
		MaxPollutant: o3,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeRanges mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, [2]float64{7, 32}, got.DetailRange())
	assert.Equal(t, [2]float64{-32, 32}, got.ComparisonRange())

	r, ok := got.Lookup(no2)
	require.True(t, ok)
	assert.InDelta(t, 30, r.Max, 1e-9)
	_, ok = got.Lookup("Sulfur dioxide")
	assert.False(t, ok)
}

func TestComputeRanges_NegativeValues(t *testing.T) {
	got := ComputeRanges(dataset.New([]dataset.Observation{
		obs("A", "x", win, -3, ""),
		obs("A", "x", summ, -1, ""),
	}))
	assert.InDelta(t, -3, got.GlobalMin, 1e-9)
	assert.InDelta(t, -1, got.GlobalMax, 1e-9)
	assert.Equal(t, "x", got.MaxPollutant)
}

func TestPlaceMeans_OrderedByDescendingMean(t *testing.T) {
	ds := fixture()
	for _, p := range ds.Pollutants() {
		means := PlaceMeans(ds, p)
		require.NotEmpty(t, means, p)
		for i := 1; i < len(means); i++ {
			assert.GreaterOrEqual(t, means[i-1].Value, means[i].Value, "%s bar %d", p, i)
		}
	}

	got := PlaceMeans(ds, pm)
	want := []Mean{
		{Key: "Chelsea", Value: 9.75, Count: 2},
		{Key: "Bronx", Value: 8.75, Count: 2},
		{Key: "Astoria", Value: 7.5, Count: 2},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("PlaceMeans mismatch (-want +got):\n%s", diff)
	}
}

func TestPlaceMeans_TiesOrderedByName(t *testing.T) {
	ds := dataset.New([]dataset.Observation{
		obs("Zed", pm, win, 5, ""),
		obs("Alpha", pm, win, 5, ""),
		obs("Mid", pm, win, 6, ""),
	})
	got := PlaceMeans(ds, pm)
	keys := []string{got[0].Key, got[1].Key, got[2].Key}
	assert.Equal(t, []string{"Mid", "Alpha", "Zed"}, keys)
}

func TestPlaceMeans_UnknownPollutant(t *testing.T) {
	assert.Empty(t, PlaceMeans(fixture(), "Sulfur dioxide"))
}

func TestPollutantMeans_SortedByName(t *testing.T) {
	got := PollutantMeans(fixture(), "Astoria")
	want := []Mean{
		{Key: pm, Value: 7.5, Count: 2},
		{Key: no2, Value: 18.5, Count: 2},
		{Key: o3, Value: 32, Count: 1},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("PollutantMeans mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, PollutantMeans(fixture(), "Nowhere"))
}

func TestSeasonalChange_InnerJoin(t *testing.T) {
	got := SeasonalChange(fixture(), "Chelsea")

	require.Len(t, got, 2)
	for _, c := range got {
		assert.NotEqual(t, o3, c.Pollutant, "ozone has no winter rows")
	}
	assert.Equal(t, pm, got[0].Pollutant)
	assert.InDelta(t, -0.5, got[0].Change, 1e-9)
	assert.Equal(t, no2, got[1].Pollutant)
	assert.InDelta(t, -10, got[1].Change, 1e-9)
}

func TestSeasonalChange_KnownDifference(t *testing.T) {
	ds := dataset.New([]dataset.Observation{
		obs("A", "PM2.5", win, 10, ""),
		obs("A", "PM2.5", win, 20, ""),
		obs("A", "PM2.5", summ, 15, ""),
		obs("A", "PM2.5", summ, 25, ""),
		obs("B", "PM2.5", win, 100, ""),
	})

	got := SeasonalChange(ds, "A")
	require.Len(t, got, 1)
	assert.Equal(t, Change{Pollutant: "PM2.5", Winter: 15, Summer: 20, Change: 5}, got[0])
}

func TestSingleSeasonDataset(t *testing.T) {
	ds := dataset.New([]dataset.Observation{
		obs("A", pm, summ, 7, ""),
		obs("B", pm, summ, 9, ""),
	})

	assert.Len(t, PlaceMeans(ds, pm), 2)
	assert.Empty(t, SeasonalChange(ds, "A"))
}

func TestReferenceFor(t *testing.T) {
	ds := dataset.New([]dataset.Observation{
		obs("A", no2, win, 10, "ppb"),
		obs("B", no2, summ, 30, "parts per billion"),
		obs("A", pm, summ, 99, "mcg/m3"),
	})

	ref, ok := ReferenceFor(ds, no2)
	require.True(t, ok)
	assert.Equal(t, Reference{Pollutant: no2, Unit: "ppb", Max: 30, Mean: 20, Count: 2}, ref)

	_, ok = ReferenceFor(ds, "Sulfur dioxide")
	assert.False(t, ok)
}
