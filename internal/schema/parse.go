package schema

import (
	"encoding/json"

	"github.com/pandanoir/popviz/internal/errors"
)

// Wire shapes. Required fields are pointers so a missing or null field is
// distinguishable from a zero value.

type prefectureListPayload struct {
	Result []prefecturePayload `json:"result"`
}

type prefecturePayload struct {
	PrefCode *int    `json:"prefCode"`
	PrefName *string `json:"prefName"`
}

type populationPayload struct {
	Message *string           `json:"message"`
	Result  *populationResult `json:"result"`
}

type populationResult struct {
	BoundaryYear *int              `json:"boundaryYear"`
	Data         []categoryPayload `json:"data"`
}

type categoryPayload struct {
	Label *string        `json:"label"`
	Data  []pointPayload `json:"data"`
}

type pointPayload struct {
	Year  *int     `json:"year"`
	Value *float64 `json:"value"`
	Rate  *float64 `json:"rate"`
}

// ParsePrefectureList validates a raw prefecture-list payload and narrows it
// into domain values. Failures carry the SCHEMA error code.
func ParsePrefectureList(data []byte) ([]Prefecture, error) {
	var payload prefectureListPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.Wrap(err, errors.CodeSchema, "prefecture list: malformed JSON")
	}
	if payload.Result == nil {
		return nil, errors.Schema("prefecture list: missing result")
	}

	seen := make(map[int]bool, len(payload.Result))
	prefectures := make([]Prefecture, 0, len(payload.Result))
	for i, p := range payload.Result {
		if p.PrefCode == nil || p.PrefName == nil {
			return nil, errors.Schemaf("prefecture list: entry %d missing prefCode or prefName", i)
		}
		code := *p.PrefCode
		if code < 1 || code > MaxPrefCode {
			return nil, errors.Schemaf("prefecture list: prefCode %d out of range", code)
		}
		if seen[code] {
			return nil, errors.Schemaf("prefecture list: duplicate prefCode %d", code)
		}
		seen[code] = true
		prefectures = append(prefectures, Prefecture{Code: code, Name: *p.PrefName})
	}

	return prefectures, nil
}

// ParsePopulation validates a raw population-composition payload. It checks
// the top-level shape, that the data array has exactly the four fixed labels
// in canonical order, and that every point has a numeric year and value with
// an optional numeric rate.
func ParsePopulation(data []byte) (*PopulationSeries, error) {
	var payload populationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.Wrap(err, errors.CodeSchema, "population: malformed JSON")
	}
	if payload.Result == nil {
		return nil, errors.Schema("population: missing result")
	}
	if payload.Result.BoundaryYear == nil {
		return nil, errors.Schema("population: missing boundaryYear")
	}
	if len(payload.Result.Data) != NumCategories {
		return nil, errors.Schemaf("population: expected %d categories, got %d",
			NumCategories, len(payload.Result.Data))
	}

	series := &PopulationSeries{
		BoundaryYear: *payload.Result.BoundaryYear,
		Categories:   make([]Category, 0, NumCategories),
	}

	for i, c := range payload.Result.Data {
		if c.Label == nil {
			return nil, errors.Schemaf("population: category %d missing label", i)
		}
		if want := categoryLabels[i]; *c.Label != want {
			return nil, errors.Schemaf("population: category %d has label %q, want %q",
				i, *c.Label, want)
		}

		points := make([]Point, 0, len(c.Data))
		for j, p := range c.Data {
			if p.Year == nil || p.Value == nil {
				return nil, errors.Schemaf("population: category %q point %d missing year or value",
					*c.Label, j)
			}
			points = append(points, Point{Year: *p.Year, Value: *p.Value, Rate: p.Rate})
		}

		series.Categories = append(series.Categories, Category{Label: *c.Label, Points: points})
	}

	return series, nil
}
