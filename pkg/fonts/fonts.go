// Package fonts provides the embedded Go font family used to measure and
// rasterize canvas text.
//
// The fonts ship with golang.org/x/image, so rendering never depends on
// what is installed on the host. Faces are cached per family and size.
package fonts

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Family selects one of the embedded typefaces.
type Family int

const (
	Sans Family = iota
	SansBold
	Mono
	MonoBold
)

// FontFamily is the CSS font-family emitted into SVG output. Browsers without
// the Go fonts fall back to a generic sans-serif.
const FontFamily = `'Go', Arial, Helvetica, sans-serif`

// MonoFontFamily is the CSS font-family for monospace text.
const MonoFontFamily = `'Go Mono', 'Courier New', monospace`

// Lookup maps a CSS-ish font name from a draw command onto a family.
// Unknown names resolve to Sans.
func Lookup(name string, bold bool) Family {
	mono := false
	switch name {
	case "monospace", "Courier", "Courier New", "Go Mono", "mono":
		mono = true
	}
	switch {
	case mono && bold:
		return MonoBold
	case mono:
		return Mono
	case bold:
		return SansBold
	default:
		return Sans
	}
}

// TTF returns the raw TrueType data of f.
func (f Family) TTF() []byte {
	switch f {
	case SansBold:
		return gobold.TTF
	case Mono:
		return gomono.TTF
	case MonoBold:
		return gomonobold.TTF
	default:
		return goregular.TTF
	}
}

// CSS returns the font-family string to use for f in SVG output.
func (f Family) CSS() string {
	if f == Mono || f == MonoBold {
		return MonoFontFamily
	}
	return FontFamily
}

// Bold reports whether f is a bold weight.
func (f Family) Bold() bool { return f == SansBold || f == MonoBold }

// =============================================================================
// Parsed fonts and faces
// =============================================================================

var (
	mu        sync.Mutex
	truetypes = map[Family]*truetype.Font{}
	opentypes = map[Family]*opentype.Font{}
)

// Face returns a rasterizing face of family f at size pixels (72 DPI), as
// consumed by gg.Context.SetFontFace. Parsed fonts are shared but faces are
// not safe for concurrent use, so every call builds a new one.
func Face(f Family, size float64) (font.Face, error) {
	mu.Lock()
	tt, ok := truetypes[f]
	if !ok {
		var err error
		tt, err = truetype.Parse(f.TTF())
		if err != nil {
			mu.Unlock()
			return nil, fmt.Errorf("parse font %d: %w", f, err)
		}
		truetypes[f] = tt
	}
	mu.Unlock()
	return truetype.NewFace(tt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

// measureFace returns an unhinted face for layout measurement.
func measureFace(f Family, size float64) (font.Face, error) {
	mu.Lock()
	ot, ok := opentypes[f]
	if !ok {
		var err error
		ot, err = opentype.Parse(f.TTF())
		if err != nil {
			mu.Unlock()
			return nil, fmt.Errorf("parse font %d: %w", f, err)
		}
		opentypes[f] = ot
	}
	mu.Unlock()

	face, err := opentype.NewFace(ot, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("new face %d@%v: %w", f, size, err)
	}
	return face, nil
}

// Measure returns the advance width of text set in f at size pixels.
// It falls back to a 0.6em-per-rune estimate if the face cannot be built.
func Measure(f Family, text string, size float64) float64 {
	face, err := measureFace(f, size)
	if err != nil {
		return float64(len([]rune(text))) * 0.6 * size
	}
	defer face.Close()
	return float64(font.MeasureString(face, text)) / 64
}

// Measurer measures text in a fixed family. It satisfies the word cloud
// layout's measurer interface.
type Measurer struct {
	Family Family
}

// MeasureText returns the width of text at size pixels.
func (m Measurer) MeasureText(text string, size float64) float64 {
	return Measure(m.Family, text, size)
}
