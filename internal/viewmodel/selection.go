// Package viewmodel holds user selection state and derives the chart-ready
// dataset from per-prefecture population series.
package viewmodel

import (
	"slices"

	"github.com/pandanoir/popviz/internal/schema"
)

// Selection is the user's current choice of prefectures and category.
// Transient state, mutated only by user interaction, never persisted.
type Selection struct {
	// codes keeps toggle order. Order affects legend and color assignment
	// only, never derived values.
	codes         []int
	categoryIndex schema.CategoryIndex
}

// NewSelection returns the initial state: nothing selected, total population.
func NewSelection() Selection {
	return Selection{categoryIndex: schema.CategoryTotal}
}

// Toggle adds code if absent and removes it if present. Toggling twice is a
// no-op.
func (s *Selection) Toggle(code int) {
	if i := slices.Index(s.codes, code); i >= 0 {
		s.codes = slices.Delete(s.codes, i, i+1)
		return
	}
	s.codes = append(s.codes, code)
}

// SetCategory replaces the category index, clamped to the valid range.
func (s *Selection) SetCategory(index int) {
	s.categoryIndex = schema.CategoryIndex(index).Clamp()
}

// Codes returns the selected prefecture codes in toggle order.
func (s Selection) Codes() []int {
	return slices.Clone(s.codes)
}

// Has reports whether code is selected.
func (s Selection) Has(code int) bool {
	return slices.Contains(s.codes, code)
}

// CategoryIndex returns the selected category.
func (s Selection) CategoryIndex() schema.CategoryIndex {
	return s.categoryIndex
}

// Empty reports whether no prefecture is selected. The zero-selection state
// is a first-class UI state: the presentation layer shows a placeholder and
// no fetches are issued for it.
func (s Selection) Empty() bool {
	return len(s.codes) == 0
}

// clone returns an independent copy.
func (s Selection) clone() Selection {
	return Selection{codes: slices.Clone(s.codes), categoryIndex: s.categoryIndex}
}
