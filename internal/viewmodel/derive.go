package viewmodel

import (
	"sort"

	"github.com/pandanoir/popviz/internal/schema"
)

// Row is one year of the derived dataset. Values is sparse: a prefecture
// whose series lacks this year has no entry, which the presentation layer
// renders as a gap.
type Row struct {
	Year   int
	Values map[int]float64
}

// Dataset is the year-indexed tabular structure consumed by the chart.
// Rows are ordered ascending by year, one row per distinct year. Values are
// raw population counts; display scaling is the renderer's business.
type Dataset struct {
	Rows []Row
	// SeriesKeys lists the prefecture codes with a resolved series, in
	// toggle order, for legend and color assignment.
	SeriesKeys []int
}

// DeriveDataset computes the dataset for a selection from the resolved
// series map. Pure: fixed inputs always produce an identical dataset, and
// toggle order never affects values. Prefectures missing from series (not
// yet fetched, or failed and omitted) contribute nothing.
func DeriveDataset(sel Selection, series map[int]*schema.PopulationSeries) Dataset {
	category := sel.CategoryIndex().Clamp()

	rowsByYear := make(map[int]map[int]float64)
	keys := make([]int, 0, len(sel.codes))

	for _, code := range sel.codes {
		s, ok := series[code]
		if !ok {
			continue
		}
		keys = append(keys, code)

		for _, p := range s.Categories[category].Points {
			row, ok := rowsByYear[p.Year]
			if !ok {
				row = make(map[int]float64)
				rowsByYear[p.Year] = row
			}
			row[code] = p.Value
		}
	}

	years := make([]int, 0, len(rowsByYear))
	for year := range rowsByYear {
		years = append(years, year)
	}
	sort.Ints(years)

	rows := make([]Row, 0, len(years))
	for _, year := range years {
		rows = append(rows, Row{Year: year, Values: rowsByYear[year]})
	}

	return Dataset{Rows: rows, SeriesKeys: keys}
}

// Empty reports whether the dataset has no rows.
func (d Dataset) Empty() bool {
	return len(d.Rows) == 0
}
