package palette

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// named covers the CSS color keywords canvas clients commonly send.
var named = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"lime":    "#00ff00",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"aqua":    "#00ffff",
	"magenta": "#ff00ff",
	"fuchsia": "#ff00ff",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"pink":    "#ffc0cb",
	"brown":   "#a52a2a",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"navy":    "#000080",
	"teal":    "#008080",
	"maroon":  "#800000",
	"olive":   "#808000",
	"gold":    "#ffd700",
}

// Parse parses a CSS color: #rgb, #rrggbb, #rrggbbaa, a basic keyword or
// "transparent".
func Parse(s string) (color.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "transparent" {
		return color.Transparent, true
	}
	if hex, ok := named[s]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		return nil, false
	}
	if len(s) == 9 {
		c, err := colorful.Hex(s[:7])
		if err != nil {
			return nil, false
		}
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return nil, false
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: uint8(a)}, true
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, false
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, true
}

// CSS returns s if it parses as a color and fallback otherwise. Use it
// before writing an untrusted color into markup.
func CSS(s, fallback string) string {
	if _, ok := Parse(s); !ok {
		return fallback
	}
	return strings.ToLower(strings.TrimSpace(s))
}
