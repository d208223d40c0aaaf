package chart

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/pandanoir/popviz/internal/schema"
)

// SeriesColor returns the stable color for a prefecture. The hue walks the
// color wheel by code, hsl((360/47)*code, 80%, 40%), so each of the 47
// prefectures keeps its color across renders and sessions.
func SeriesColor(code int) lipgloss.Color {
	hue := math.Mod(float64(code)*(360.0/schema.MaxPrefCode), 360)
	r, g, b := hslToRGB(hue, 0.8, 0.4)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
}

// hslToRGB converts HSL (h in degrees, s and l in [0,1]) to 8-bit RGB.
func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8(math.Round((r + m) * 255)),
		uint8(math.Round((g + m) * 255)),
		uint8(math.Round((b + m) * 255))
}
