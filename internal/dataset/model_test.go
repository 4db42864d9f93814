package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FiltersUnsupportedPeriods(t *testing.T) {
	ds := New([]Observation{
		{Place: "A", Pollutant: "PM2.5", Period: SeasonWinter, Value: 10, Unit: "mcg/m3"},
		{Place: "B", Pollutant: "NO2", Period: "Annual Average 2022", Value: 99, Unit: "ppb"},
		{Place: "A", Pollutant: "PM2.5", Period: SeasonSummer, Value: 15, Unit: "ug"},
	})

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"PM2.5"}, ds.Pollutants())
	assert.Equal(t, []string{"A"}, ds.Places())
	assert.False(t, ds.HasPollutant("NO2"))

	unit, ok := ds.Unit("PM2.5")
	require.True(t, ok)
	assert.Equal(t, "mcg/m3", unit, "first-seen unit wins")
}

func TestDataset_AccessorsReturnCopies(t *testing.T) {
	ds := New([]Observation{
		{Place: "A", Pollutant: "PM2.5", Period: SeasonWinter, Value: 10},
	})

	recs := ds.Records()
	recs[0].Value = 1000
	pols := ds.Pollutants()
	pols[0] = "changed"
	places := ds.Places()
	places[0] = "changed"

	assert.InDelta(t, 10, ds.Records()[0].Value, 1e-9)
	assert.Equal(t, []string{"PM2.5"}, ds.Pollutants())
	assert.Equal(t, []string{"A"}, ds.Places())
}

func TestDataset_SelectAndEach(t *testing.T) {
	ds := New([]Observation{
		{Place: "A", Pollutant: "PM2.5", Period: SeasonWinter, Value: 10},
		{Place: "B", Pollutant: "PM2.5", Period: SeasonSummer, Value: 20},
		{Place: "A", Pollutant: "NO2", Period: SeasonSummer, Value: 30},
	})

	atA := ds.Select(func(o Observation) bool { return o.Place == "A" })
	require.Len(t, atA, 2)
	assert.Equal(t, "NO2", atA[1].Pollutant)

	var total float64
	ds.Each(func(o Observation) { total += o.Value })
	assert.InDelta(t, 60, total, 1e-9)
}

func TestIsSupportedPeriod(t *testing.T) {
	assert.True(t, IsSupportedPeriod("Winter 2022-23"))
	assert.True(t, IsSupportedPeriod("Summer 2023"))
	assert.False(t, IsSupportedPeriod("Summer 2022"))
	assert.False(t, IsSupportedPeriod(""))
}
