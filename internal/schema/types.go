// Package schema validates and narrows raw JSON payloads from the population
// statistics API into typed domain values.
package schema

// Prefecture is one Japanese administrative region. Immutable once fetched.
type Prefecture struct {
	Code int    `json:"prefCode"`
	Name string `json:"prefName"`
}

// Point is a single year's population measurement.
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
	// Rate is the share of the total population, present for the breakdown
	// categories only.
	Rate *float64 `json:"rate,omitempty"`
}

// Category is one population breakdown with its time series.
type Category struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// PopulationSeries is the full composition data for one prefecture.
// Categories always has exactly NumCategories entries in canonical order.
type PopulationSeries struct {
	BoundaryYear int        `json:"boundaryYear"`
	Categories   []Category `json:"categories"`
}

// CategoryIndex identifies one of the four fixed population breakdowns.
// The index is position-significant: it addresses Categories directly.
type CategoryIndex int

// The four fixed categories, in canonical order.
const (
	CategoryTotal CategoryIndex = iota
	CategoryYouth
	CategoryWorkingAge
	CategoryElderly

	NumCategories = 4
)

// categoryLabels are the literal labels the upstream API uses, in canonical
// order. The upstream is a Japanese government statistics service; labels are
// Japanese on the wire.
var categoryLabels = [NumCategories]string{
	"総人口",
	"年少人口",
	"生産年齢人口",
	"老年人口",
}

// categoryNames are the canonical English names, used in logs and flags.
var categoryNames = [NumCategories]string{
	"total",
	"youth",
	"working-age",
	"elderly",
}

// Clamp clamps the index into the valid range.
func (i CategoryIndex) Clamp() CategoryIndex {
	if i < 0 {
		return 0
	}
	if i >= NumCategories {
		return NumCategories - 1
	}
	return i
}

// Label returns the upstream wire label for the category.
func (i CategoryIndex) Label() string {
	return categoryLabels[i.Clamp()]
}

// Name returns the canonical English name for the category.
func (i CategoryIndex) Name() string {
	return categoryNames[i.Clamp()]
}

// MaxPrefCode is the highest valid prefecture code (Okinawa).
const MaxPrefCode = 47
