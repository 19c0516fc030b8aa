package sink

import (
	"bytes"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/wordcanvas/pkg/fonts"
	"github.com/matzehuels/wordcanvas/pkg/palette"
	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithScale sets the PNG scale factor (default 1.0). Non-positive values are
// ignored.
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// RenderPNG rasterizes the scene. Coordinates, line widths and font sizes
// are multiplied by the scale so text stays crisp at higher resolutions.
func RenderPNG(sc *scene.Scene, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 1.0}
	for _, opt := range opts {
		opt(&r)
	}

	w := max(1, int(math.Ceil(sc.Width*r.scale)))
	h := max(1, int(math.Ceil(sc.Height*r.scale)))
	dc := gg.NewContext(w, h)

	for _, c := range sc.Visible() {
		if err := r.draw(dc, c); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r pngRenderer) draw(dc *gg.Context, c scene.Command) error {
	s := r.scale
	switch c := c.(type) {
	case scene.Fill:
		dc.SetColor(parseColor(c.Color, color.Black))
		dc.Clear()
	case scene.Clear:
		dc.SetColor(color.Transparent)
		dc.Clear()
	case scene.Line:
		dc.SetLineWidth(c.Width * s)
		dc.DrawLine(c.X1*s, c.Y1*s, c.X2*s, c.Y2*s)
		dc.SetColor(parseColor(c.Color, color.Black))
		if len(c.Dash) > 0 {
			dash := make([]float64, len(c.Dash))
			for i, d := range c.Dash {
				dash[i] = d * s
			}
			dc.SetDash(dash...)
			defer dc.SetDash()
		}
		dc.Stroke()
	case scene.Circle:
		dc.NewSubPath()
		dc.DrawCircle(c.CX*s, c.CY*s, c.Radius*s)
		r.strokeAndFill(dc, c.Color, c.FillColor)
	case scene.Rect:
		dc.DrawRectangle(c.X*s, c.Y*s, c.W*s, c.H*s)
		r.strokeAndFill(dc, c.Color, c.FillColor)
	case scene.Point:
		dc.NewSubPath()
		dc.DrawCircle(c.X*s, c.Y*s, c.Radius*s)
		dc.SetColor(parseColor(c.Color, color.Black))
		dc.Fill()
	case scene.Arc:
		sweep := c.EndAngle - c.StartAngle
		if sweep < 2*math.Pi {
			sweep = math.Mod(sweep, 2*math.Pi)
			if sweep < 0 {
				sweep += 2 * math.Pi
			}
		} else {
			sweep = 2 * math.Pi
		}
		dc.NewSubPath()
		dc.DrawArc(c.CX*s, c.CY*s, c.Radius*s, c.StartAngle, c.StartAngle+sweep)
		dc.SetLineWidth(c.Width * s)
		dc.SetColor(parseColor(c.Color, color.Black))
		dc.Stroke()
	case scene.Polygon:
		if len(c.Points) == 0 {
			return nil
		}
		dc.NewSubPath()
		dc.MoveTo(c.Points[0][0]*s, c.Points[0][1]*s)
		for _, p := range c.Points[1:] {
			dc.LineTo(p[0]*s, p[1]*s)
		}
		dc.ClosePath()
		r.strokeAndFill(dc, c.Color, c.FillColor)
	case scene.Polyline:
		if len(c.Points) < 2 {
			return nil
		}
		dc.NewSubPath()
		dc.MoveTo(c.Points[0][0]*s, c.Points[0][1]*s)
		for _, p := range c.Points[1:] {
			dc.LineTo(p[0]*s, p[1]*s)
		}
		dc.SetLineJoin(gg.LineJoinRound)
		dc.SetLineWidth(c.Width * s)
		dc.SetColor(parseColor(c.Color, color.Black))
		dc.Stroke()
	case scene.Text:
		face, err := fonts.Face(fonts.Lookup(c.Font, c.Bold), c.Size*s)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		dc.SetColor(parseColor(c.Color, color.Black))
		ax := 0.0
		if c.Anchor == scene.AnchorMiddle {
			ax = 0.5
		}
		if c.Rotate != 0 {
			dc.Push()
			defer dc.Pop()
			dc.RotateAbout(gg.Radians(c.Rotate), c.X*s, c.Y*s)
		}
		dc.DrawStringAnchored(c.Text, c.X*s, c.Y*s, ax, 0)
	}
	return nil
}

// strokeAndFill strokes the current path and then fills it, matching the
// browser client's draw order.
func (r pngRenderer) strokeAndFill(dc *gg.Context, strokeColor, fillColor string) {
	if strokeColor == "" && fillColor != "" {
		dc.SetColor(parseColor(fillColor, color.Transparent))
		dc.Fill()
		return
	}
	dc.SetLineWidth(r.scale)
	dc.SetColor(parseColor(strokeColor, color.Black))
	if fillColor == "" {
		dc.Stroke()
		return
	}
	dc.StrokePreserve()
	dc.SetColor(parseColor(fillColor, color.Transparent))
	dc.Fill()
}

func parseColor(s string, fallback color.Color) color.Color {
	if c, ok := palette.Parse(s); ok {
		return c
	}
	return fallback
}
