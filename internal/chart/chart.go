// Package chart renders the derived dataset for the terminal. The derivation
// pipeline hands it rows, series keys, and a name lookup; everything about
// presentation (scaling, colors, layout) stays on this side of the boundary.
package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pandanoir/popviz/internal/viewmodel"
)

// DisplayDivisor converts raw population counts to 万人 (ten-thousands) for
// display. Derived values stay raw; only rendering scales.
const DisplayDivisor = 10000

// Options control rendering.
type Options struct {
	// Names maps prefecture code to display name for the legend.
	Names map[int]string
	// Width is the terminal width hint. Zero means unconstrained.
	Width int
	// Stale dims the output while a newer dataset is being computed.
	Stale bool
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	yearStyle   = lipgloss.NewStyle().Faint(true)
	staleStyle  = lipgloss.NewStyle().Faint(true)
)

// Render formats the dataset as a table: one row per year, one column per
// series key, values in 万人. An empty dataset renders as the empty string;
// the placeholder for zero selection is the caller's business.
func Render(ds viewmodel.Dataset, opts Options) string {
	if ds.Empty() {
		return ""
	}

	var b strings.Builder

	// Header: year column then one column per prefecture, colored stably.
	b.WriteString(yearStyle.Render(fmt.Sprintf("%-6s", "year")))
	for _, code := range ds.SeriesKeys {
		style := lipgloss.NewStyle().Foreground(SeriesColor(code)).Bold(true)
		b.WriteString(style.Render(fmt.Sprintf("  %10s", displayName(code, opts.Names))))
	}
	b.WriteString("\n")

	for _, row := range ds.Rows {
		b.WriteString(yearStyle.Render(fmt.Sprintf("%-6d", row.Year)))
		for _, code := range ds.SeriesKeys {
			v, ok := row.Values[code]
			if !ok {
				// Sparse gap: the prefecture has no point this year.
				b.WriteString(fmt.Sprintf("  %10s", "-"))
				continue
			}
			style := lipgloss.NewStyle().Foreground(SeriesColor(code))
			b.WriteString(style.Render(fmt.Sprintf("  %10.1f", v/DisplayDivisor)))
		}
		b.WriteString("\n")
	}

	b.WriteString(headerStyle.Render("unit: 万人"))
	b.WriteString("\n")

	out := b.String()
	if opts.Stale {
		out = staleStyle.Render(out)
	}
	return out
}

// Legend renders one colored label per series key.
func Legend(keys []int, names map[int]string) string {
	parts := make([]string, 0, len(keys))
	for _, code := range keys {
		style := lipgloss.NewStyle().Foreground(SeriesColor(code))
		parts = append(parts, style.Render("■ "+displayName(code, names)))
	}
	return strings.Join(parts, "  ")
}

func displayName(code int, names map[int]string) string {
	if name, ok := names[code]; ok {
		return name
	}
	return fmt.Sprintf("#%d", code)
}
