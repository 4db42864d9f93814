package dataset

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplore(t *testing.T) {
	ds, err := Parse(context.Background(), strings.NewReader(readSample(t)))
	require.NoError(t, err)

	summaries, err := Explore(ds)
	require.NoError(t, err)
	require.Len(t, summaries, 4)

	titles := make([]string, len(summaries))
	for i, s := range summaries {
		titles[i] = s.Title
	}
	assert.Equal(t, []string{"Records by pollutant", "Records by time period", "Records by geo type", "Places"}, titles)

	byPollutant := summaries[0].Table
	require.Len(t, byPollutant, 4, "header plus one row per pollutant")
	assert.Contains(t, byPollutant[0], "name")

	byPeriod := summaries[1].Table
	assert.Len(t, byPeriod, 3)

	byGeoType := summaries[2].Table
	assert.Len(t, byGeoType, 3)

	assert.Equal(t, [][]string{
		{"distinct_places", "records", "skipped_rows"},
		{"3", "15", "2"},
	}, summaries[3].Table)
}

func TestExplore_EmptyDataset(t *testing.T) {
	_, err := Explore(New(nil))
	require.Error(t, err)
}
