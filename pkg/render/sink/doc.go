// Package sink renders a [scene.Scene] into an output format.
//
// # Formats
//
//   - SVG: [RenderSVG], vector output via github.com/ajstarks/svgo
//   - PNG: [RenderPNG], rasterized with github.com/fogleman/gg using the
//     embedded Go fonts
//   - JSON: [RenderJSON], the draw commands themselves
//   - PDF: [RenderPDF], the SVG converted by rsvg-convert (requires librsvg)
//
// Every sink draws the same thing: the scene's commands in order, starting
// from a transparent canvas. A Clear command erases everything before it, so
// the vector sinks only emit [scene.Scene.Visible].
//
// Colors and font names come from untrusted canvas histories. They are
// validated before reaching markup; unparseable colors fall back to black
// strokes and no fill.
//
// [scene.Scene]: github.com/matzehuels/wordcanvas/pkg/scene.Scene
// [scene.Scene.Visible]: github.com/matzehuels/wordcanvas/pkg/scene.Scene.Visible
package sink

import (
	"fmt"
	"strings"

	"github.com/matzehuels/wordcanvas/pkg/errors"
	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// Output format names.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

// Formats lists every supported format.
var Formats = []string{FormatSVG, FormatPNG, FormatJSON, FormatPDF}

// ContentType returns the MIME type of format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// Options selects format-specific options for [Render].
type Options struct {
	Scale float64
}

// Render dispatches to the sink for format.
func Render(sc *scene.Scene, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(sc), nil
	case FormatPNG:
		var po []PNGOption
		if opts.Scale > 0 {
			po = append(po, WithScale(opts.Scale))
		}
		return RenderPNG(sc, po...)
	case FormatJSON:
		return RenderJSON(sc)
	case FormatPDF:
		return RenderPDF(sc)
	default:
		return nil, errors.ValidateFormat(format, Formats...)
	}
}

// fontFamily sanitizes a font name for use inside a style attribute.
func fontFamily(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', ';', '<', '>', '&', '{', '}', '\\', '=':
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "sans-serif"
	}
	return fmt.Sprintf("'%s'", name)
}
