package dataset

import (
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/rotisserie/eris"
)

// Summary is one titled table of the exploration report. Table[0] is the header.
type Summary struct {
	Title string
	Table [][]string
}

// Explore summarizes the dataset the way an analyst would before charting
// it: record counts and value spread per pollutant, per period and per geo
// type, plus the number of distinct places.
func Explore(ds *Dataset) ([]Summary, error) {
	if ds.Len() == 0 {
		return nil, eris.Wrap(ErrEmpty, "explore")
	}
	df := dataframe.LoadStructs(ds.Records())
	if df.Err != nil {
		return nil, eris.Wrap(df.Err, "explore: load dataframe")
	}

	type grouping struct {
		title string
		key   string
		aggs  []dataframe.AggregationType
	}
	groupings := []grouping{
		{
			title: "Records by pollutant",
			key:   ColPollutant,
			aggs:  []dataframe.AggregationType{dataframe.Aggregation_COUNT, dataframe.Aggregation_MIN, dataframe.Aggregation_MAX},
		},
		{
			title: "Records by time period",
			key:   ColPeriod,
			aggs:  []dataframe.AggregationType{dataframe.Aggregation_COUNT, dataframe.Aggregation_MEAN},
		},
		{
			title: "Records by geo type",
			key:   ColGeoType,
			aggs:  []dataframe.AggregationType{dataframe.Aggregation_COUNT},
		},
	}

	out := make([]Summary, 0, len(groupings)+1)
	for _, g := range groupings {
		cols := make([]string, len(g.aggs))
		for i := range cols {
			cols[i] = ColValue
		}
		agg := df.GroupBy(g.key).Aggregation(g.aggs, cols).Arrange(dataframe.Sort(g.key))
		if agg.Err != nil {
			return nil, eris.Wrapf(agg.Err, "explore: group by %s", g.key)
		}
		out = append(out, Summary{Title: g.title, Table: agg.Records()})
	}

	places := df.Col(ColPlace).Records()
	distinct := make(map[string]struct{}, len(places))
	for _, p := range places {
		distinct[p] = struct{}{}
	}
	out = append(out, Summary{
		Title: "Places",
		Table: [][]string{
			{"distinct_places", "records", "skipped_rows"},
			{strconv.Itoa(len(distinct)), strconv.Itoa(df.Nrow()), strconv.Itoa(ds.Skipped())},
		},
	})
	return out, nil
}
