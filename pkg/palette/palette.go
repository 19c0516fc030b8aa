// Package palette derives display colors from a single base color.
//
// Charts are drawn in shades of one base color: [Shades] walks the HSL
// lightness of the base up and down in even steps so that neighbouring
// entries stay distinguishable. [Theme] supplies the background and text
// colors chart actions draw with.
package palette

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Lightness bounds (percent) shades are clipped to.
const (
	minLightness = 10.0
	maxLightness = 90.0
)

// Shades returns n colors sharing the hue and saturation of hex. Lightness
// steps by 100/(n+1) percent, centred on the base so that entry n/2 keeps the
// base lightness. Results are lowercase "#rrggbb" strings.
//
// If hex cannot be parsed, every entry is hex unchanged.
func Shades(hex string, n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, n)

	c, err := parse(hex)
	if err != nil {
		for i := range out {
			out[i] = hex
		}
		return out
	}

	h, s, l := c.Hsl()
	h, s, l = math.Round(h), math.Round(s*100), math.Round(l*100)
	step := 100.0 / float64(n+1)

	for i := range out {
		shade := l + float64(i-n/2)*step
		shade = max(minLightness, min(maxLightness, shade))
		out[i] = colorful.Hsl(h, s/100, shade/100).Clamped().Hex()
	}
	return out
}

// IsLight reports whether hex is bright enough that dark text reads better
// on it. Unparseable colors are treated as dark.
func IsLight(hex string) bool {
	if !strings.HasPrefix(hex, "#") {
		return false
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return false
	}
	r, g, b := c.RGB255()
	return 0.299*float64(r)+0.587*float64(g)+0.114*float64(b) > 186
}

// Normalize returns hex as a lowercase "#rrggbb" string, or fallback if it
// cannot be parsed.
func Normalize(hex, fallback string) string {
	c, err := parse(hex)
	if err != nil {
		return fallback
	}
	return c.Hex()
}

func parse(hex string) (colorful.Color, error) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	return colorful.Hex(hex)
}
