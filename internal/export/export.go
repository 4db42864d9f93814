// Package export writes the dashboard aggregates to a spreadsheet.
package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/aq-dashboard/internal/aggregate"
	"github.com/sells-group/aq-dashboard/internal/dataset"
)

// Sheet names, in workbook order.
const (
	SheetRanges         = "ranges"
	SheetOverview       = "overview"
	SheetSeasonalChange = "seasonal_change"
)

// Workbook builds a workbook with the range table, the place means of every
// pollutant, and the seasonal change at every place.
func Workbook(ds *dataset.Dataset) (*xlsx.File, error) {
	if ds.Len() == 0 {
		return nil, eris.Wrap(dataset.ErrEmpty, "export")
	}
	file := xlsx.NewFile()

	ranges, err := addSheet(file, SheetRanges, "pollutant", "min", "max")
	if err != nil {
		return nil, err
	}
	r := aggregate.ComputeRanges(ds)
	for _, pr := range r.Pollutants {
		row := ranges.AddRow()
		row.AddCell().SetString(pr.Pollutant)
		row.AddCell().SetFloat(pr.Min)
		row.AddCell().SetFloat(pr.Max)
	}

	overview, err := addSheet(file, SheetOverview, "pollutant", "place", "mean", "count")
	if err != nil {
		return nil, err
	}
	for _, p := range ds.Pollutants() {
		for _, m := range aggregate.PlaceMeans(ds, p) {
			row := overview.AddRow()
			row.AddCell().SetString(p)
			row.AddCell().SetString(m.Key)
			row.AddCell().SetFloat(m.Value)
			row.AddCell().SetInt(m.Count)
		}
	}

	changes, err := addSheet(file, SheetSeasonalChange, "place", "pollutant", "winter", "summer", "change")
	if err != nil {
		return nil, err
	}
	for _, place := range ds.Places() {
		for _, c := range aggregate.SeasonalChange(ds, place) {
			row := changes.AddRow()
			row.AddCell().SetString(place)
			row.AddCell().SetString(c.Pollutant)
			row.AddCell().SetFloat(c.Winter)
			row.AddCell().SetFloat(c.Summer)
			row.AddCell().SetFloat(c.Change)
		}
	}

	return file, nil
}

// Write builds the workbook for ds and writes it to w.
func Write(w io.Writer, ds *dataset.Dataset) error {
	file, err := Workbook(ds)
	if err != nil {
		return err
	}
	if err := file.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}

func addSheet(file *xlsx.File, name string, header ...string) (*xlsx.Sheet, error) {
	sheet, err := file.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "export: add sheet %s", name)
	}
	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}
	return sheet, nil
}
