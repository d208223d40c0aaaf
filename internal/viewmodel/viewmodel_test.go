package viewmodel

import (
	"context"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pandanoir/popviz/internal/errors"
	"github.com/pandanoir/popviz/internal/logger"
	"github.com/pandanoir/popviz/internal/schema"
)

// fakeFetcher serves canned series and counts fetches per code.
type fakeFetcher struct {
	mu      sync.Mutex
	series  map[int]*schema.PopulationSeries
	failing map[int]error
	calls   map[int]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		series:  make(map[int]*schema.PopulationSeries),
		failing: make(map[int]error),
		calls:   make(map[int]int),
	}
}

func (f *fakeFetcher) PopulationSeries(_ context.Context, prefCode int) (*schema.PopulationSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[prefCode]++
	if err, ok := f.failing[prefCode]; ok {
		return nil, err
	}
	if s, ok := f.series[prefCode]; ok {
		return s, nil
	}
	return nil, errors.Transport("no fixture")
}

func (f *fakeFetcher) callCount(prefCode int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[prefCode]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// seriesWith builds a full four-category series with the given points in one
// category; the other categories stay empty.
func seriesWith(cat schema.CategoryIndex, points ...schema.Point) *schema.PopulationSeries {
	s := &schema.PopulationSeries{BoundaryYear: 2020, Categories: make([]schema.Category, schema.NumCategories)}
	for i := range s.Categories {
		s.Categories[i] = schema.Category{Label: schema.CategoryIndex(i).Label()}
	}
	s.Categories[cat].Points = points
	return s
}

func TestSelection_ToggleIsItsOwnInverse(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(1)
	sel.Toggle(13)
	before := sel.Codes()

	sel.Toggle(47)
	sel.Toggle(47)

	assert.Equal(t, before, sel.Codes())
}

func TestSelection_ToggleRemoves(t *testing.T) {
	sel := NewSelection()
	sel.Toggle(1)
	sel.Toggle(13)
	sel.Toggle(1)

	assert.Equal(t, []int{13}, sel.Codes())
	assert.False(t, sel.Has(1))
	assert.True(t, sel.Has(13))
}

func TestSelection_SetCategoryClamps(t *testing.T) {
	sel := NewSelection()

	sel.SetCategory(2)
	assert.Equal(t, schema.CategoryWorkingAge, sel.CategoryIndex())

	sel.SetCategory(-1)
	assert.Equal(t, schema.CategoryTotal, sel.CategoryIndex())

	sel.SetCategory(99)
	assert.Equal(t, schema.CategoryElderly, sel.CategoryIndex())
}

func TestDeriveDataset_Purity(t *testing.T) {
	series := map[int]*schema.PopulationSeries{
		1:  seriesWith(schema.CategoryTotal, schema.Point{Year: 2015, Value: 100}, schema.Point{Year: 2020, Value: 90}),
		13: seriesWith(schema.CategoryTotal, schema.Point{Year: 2015, Value: 500}),
	}
	sel := NewSelection()
	sel.Toggle(1)
	sel.Toggle(13)

	first := DeriveDataset(sel, series)
	for n := 0; n < 10; n++ {
		again := DeriveDataset(sel, series)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("derivation not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestDeriveDataset_ToggleOrderDoesNotAffectValues(t *testing.T) {
	series := map[int]*schema.PopulationSeries{
		1:  seriesWith(schema.CategoryTotal, schema.Point{Year: 2015, Value: 100}),
		13: seriesWith(schema.CategoryTotal, schema.Point{Year: 2015, Value: 500}),
	}

	forward := NewSelection()
	forward.Toggle(1)
	forward.Toggle(13)

	backward := NewSelection()
	backward.Toggle(13)
	backward.Toggle(1)

	a := DeriveDataset(forward, series)
	b := DeriveDataset(backward, series)

	// Toggle order may reorder the legend, never the computed rows.
	if diff := cmp.Diff(a.Rows, b.Rows); diff != "" {
		t.Fatalf("rows differ by toggle order (-forward +backward):\n%s", diff)
	}
	assert.Equal(t, []int{1, 13}, a.SeriesKeys)
	assert.Equal(t, []int{13, 1}, b.SeriesKeys)
}

func TestDeriveDataset_SparseUnion(t *testing.T) {
	series := map[int]*schema.PopulationSeries{
		1: seriesWith(schema.CategoryTotal,
			schema.Point{Year: 2015, Value: 100}, schema.Point{Year: 2020, Value: 90}),
		2: seriesWith(schema.CategoryTotal,
			schema.Point{Year: 2015, Value: 200}, schema.Point{Year: 2025, Value: 180}),
	}
	sel := NewSelection()
	sel.Toggle(1)
	sel.Toggle(2)

	ds := DeriveDataset(sel, series)

	require.Len(t, ds.Rows, 3)
	assert.Equal(t, Row{Year: 2015, Values: map[int]float64{1: 100, 2: 200}}, ds.Rows[0])
	assert.Equal(t, Row{Year: 2020, Values: map[int]float64{1: 90}}, ds.Rows[1], "2020 has no column for prefecture 2")
	assert.Equal(t, Row{Year: 2025, Values: map[int]float64{2: 180}}, ds.Rows[2], "2025 has no column for prefecture 1")
}

func TestDeriveDataset_WorkingAgeScenario(t *testing.T) {
	series := map[int]*schema.PopulationSeries{
		47: seriesWith(schema.CategoryWorkingAge,
			schema.Point{Year: 2015, Value: 900000}, schema.Point{Year: 2020, Value: 850000}),
	}
	sel := NewSelection()
	sel.Toggle(47)
	sel.SetCategory(2)

	ds := DeriveDataset(sel, series)

	want := []Row{
		{Year: 2015, Values: map[int]float64{47: 900000}},
		{Year: 2020, Values: map[int]float64{47: 850000}},
	}
	// Derived values stay raw; any display scaling happens in the renderer.
	if diff := cmp.Diff(want, ds.Rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{47}, ds.SeriesKeys)
}

func TestDeriveDataset_UnresolvedPrefectureOmitted(t *testing.T) {
	series := map[int]*schema.PopulationSeries{
		1: seriesWith(schema.CategoryTotal, schema.Point{Year: 2015, Value: 100}),
	}
	sel := NewSelection()
	sel.Toggle(1)
	sel.Toggle(40) // never fetched

	ds := DeriveDataset(sel, series)

	assert.Equal(t, []int{1}, ds.SeriesKeys)
	require.Len(t, ds.Rows, 1)
	assert.NotContains(t, ds.Rows[0].Values, 40)
}

func TestSync_FetchesMissingOnly(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.series[1] = seriesWith(schema.CategoryTotal, schema.Point{Year: 2015, Value: 100})
	fetcher.series[13] = seriesWith(schema.CategoryTotal, schema.Point{Year: 2015, Value: 500})

	vm := New(fetcher, logger.Discard().Logger)
	vm.Toggle(1)
	vm.Sync(context.Background())

	vm.Toggle(13)
	vm.Sync(context.Background())

	assert.Equal(t, 1, fetcher.callCount(1), "already-resolved series is not refetched")
	assert.Equal(t, 1, fetcher.callCount(13))

	ds := vm.Dataset()
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, map[int]float64{1: 100, 13: 500}, ds.Rows[0].Values)
}

func TestSync_ZeroSelectionIssuesNoFetches(t *testing.T) {
	fetcher := newFakeFetcher()
	vm := New(fetcher, logger.Discard().Logger)

	vm.Sync(context.Background())

	assert.Zero(t, fetcher.totalCalls())
	assert.True(t, vm.Dataset().Empty(), "placeholder state, no chart data")
	assert.True(t, vm.Selection().Empty())
}

func TestSync_FailedSeriesOmitted(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.series[1] = seriesWith(schema.CategoryTotal, schema.Point{Year: 2015, Value: 100})
	fetcher.failing[2] = errors.Schema("only 3 categories")

	vm := New(fetcher, logger.Discard().Logger)
	vm.Toggle(1)
	vm.Toggle(2)
	vm.Sync(context.Background())

	ds := vm.Dataset()
	assert.Equal(t, []int{1}, ds.SeriesKeys, "failed prefecture contributes nothing")
	require.Len(t, ds.Rows, 1)
	assert.Equal(t, map[int]float64{1: 100}, ds.Rows[0].Values)
	assert.Equal(t, 1, vm.SeriesCount())
}

func TestStale(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.series[1] = seriesWith(schema.CategoryTotal, schema.Point{Year: 2015, Value: 100})

	vm := New(fetcher, logger.Discard().Logger)
	assert.True(t, vm.Stale(), "initial dataset has never been derived")

	vm.Sync(context.Background())
	assert.False(t, vm.Stale())

	vm.Toggle(1)
	assert.True(t, vm.Stale(), "selection moved past the derived dataset")

	vm.Sync(context.Background())
	assert.False(t, vm.Stale())
}

func TestSync_CategoryChangeRederivesWithoutFetch(t *testing.T) {
	fetcher := newFakeFetcher()
	s := seriesWith(schema.CategoryTotal, schema.Point{Year: 2015, Value: 100})
	s.Categories[schema.CategoryElderly].Points = []schema.Point{{Year: 2015, Value: 30}}
	fetcher.series[1] = s

	vm := New(fetcher, logger.Discard().Logger)
	vm.Toggle(1)
	vm.Sync(context.Background())

	vm.SetCategory(int(schema.CategoryElderly))
	vm.Sync(context.Background())

	assert.Equal(t, 1, fetcher.callCount(1), "category change needs no network")
	require.Len(t, vm.Dataset().Rows, 1)
	assert.Equal(t, map[int]float64{1: 30}, vm.Dataset().Rows[0].Values)
}
