package viewmodel

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pandanoir/popviz/internal/schema"
)

// Fetcher resolves one prefecture's population series. Backed by the
// resource cache, so repeated requests for the same code never refetch.
type Fetcher interface {
	PopulationSeries(ctx context.Context, prefCode int) (*schema.PopulationSeries, error)
}

// FailurePolicy names what happens when a single prefecture's fetch or
// validation fails during a sync.
type FailurePolicy string

// FailurePolicyOmit drops the failed prefecture from the dataset with no
// user-visible error and no retry. This preserves the historical behavior
// deliberately: the policy is named configuration, not an accidental
// catch-and-ignore.
const FailurePolicyOmit FailurePolicy = "omit"

// ViewModel owns the selection, the resolved series map, and the derived
// dataset. Selection transitions are synchronous and never fetch; Sync is
// the only operation that touches the network.
type ViewModel struct {
	fetcher            Fetcher
	logger             *slog.Logger
	onPerSeriesFailure FailurePolicy

	mu        sync.Mutex
	selection Selection
	series    map[int]*schema.PopulationSeries
	dataset   Dataset

	// version counts selection transitions; derivedVersion records which
	// version the dataset was computed against. While they differ, or a
	// sync is in flight, the rendered dataset is stale and the UI shows
	// its recomputing affordance.
	version        uint64
	derivedVersion uint64
	syncing        int
}

// New creates a view model in the initial state: empty selection, empty
// dataset, per-series failures omitted.
func New(fetcher Fetcher, logger *slog.Logger) *ViewModel {
	return &ViewModel{
		fetcher:            fetcher,
		logger:             logger,
		onPerSeriesFailure: FailurePolicyOmit,
		selection:          NewSelection(),
		series:             make(map[int]*schema.PopulationSeries),
		// A fresh view model has never derived, so it starts stale until
		// the first Sync.
		version: 1,
	}
}

// Toggle flips the selection state of one prefecture.
func (vm *ViewModel) Toggle(code int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.selection.Toggle(code)
	vm.version++
}

// SetCategory switches the population category, clamped to the valid range.
func (vm *ViewModel) SetCategory(index int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.selection.SetCategory(index)
	vm.version++
}

// Selection returns a copy of the current selection.
func (vm *ViewModel) Selection() Selection {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.selection.clone()
}

// Dataset returns the most recently derived dataset.
func (vm *ViewModel) Dataset() Dataset {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.dataset
}

// Stale reports whether the derived dataset lags the latest selection.
func (vm *ViewModel) Stale() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.syncing > 0 || vm.derivedVersion != vm.version
}

// Sync fetches series for selected-but-unresolved prefectures and rederives
// the dataset. Fetches fan out concurrently with no ordering guarantee.
// Per-prefecture failures are absorbed under the omit policy: the code stays
// absent from the series map and contributes nothing to the dataset. An
// empty selection derives the empty dataset without issuing any fetch.
func (vm *ViewModel) Sync(ctx context.Context) {
	vm.mu.Lock()
	vm.syncing++
	sel := vm.selection.clone()

	missing := make([]int, 0, len(sel.codes))
	for _, code := range sel.codes {
		if _, ok := vm.series[code]; !ok {
			missing = append(missing, code)
		}
	}
	vm.mu.Unlock()

	fetched := make([]*schema.PopulationSeries, len(missing))
	if len(missing) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		for i, code := range missing {
			i, code := i, code
			g.Go(func() error {
				s, err := vm.fetcher.PopulationSeries(gctx, code)
				if err != nil {
					// Policy "omit": no retry, no user-visible error.
					vm.logger.Debug("series omitted",
						"pref_code", code,
						"policy", string(vm.onPerSeriesFailure),
						"error", err,
					)
					return nil
				}
				fetched[i] = s
				return nil
			})
		}
		// Goroutines never return errors; Wait is a join point.
		_ = g.Wait()
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	for i, code := range missing {
		if fetched[i] != nil {
			vm.series[code] = fetched[i]
		}
	}
	// Derive against the latest selection, which may have moved on while
	// fetches were in flight.
	vm.dataset = DeriveDataset(vm.selection, vm.series)
	vm.derivedVersion = vm.version
	vm.syncing--
}

// SeriesCount reports how many prefecture series have resolved.
func (vm *ViewModel) SeriesCount() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.series)
}
