package sink

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/wordcanvas/pkg/fonts"
	"github.com/matzehuels/wordcanvas/pkg/palette"
	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// RenderSVG renders the scene as a standalone SVG document.
func RenderSVG(sc *scene.Scene) []byte {
	var buf bytes.Buffer
	canvas := svg.New(&buf)

	w, h := px(sc.Width), px(sc.Height)
	canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, w, h))
	if sc.Name != "" {
		canvas.Title(sc.Name)
	}
	for _, c := range sc.Visible() {
		drawSVG(canvas, sc, c)
	}
	canvas.End()
	return buf.Bytes()
}

func drawSVG(canvas *svg.SVG, sc *scene.Scene, c scene.Command) {
	switch c := c.(type) {
	case scene.Fill:
		canvas.Rect(0, 0, px(sc.Width), px(sc.Height), "fill:"+fill(c.Color))
	case scene.Line:
		canvas.Line(px(c.X1), px(c.Y1), px(c.X2), px(c.Y2), stroke(c.Color, c.Width)+dashArray(c.Dash))
	case scene.Circle:
		canvas.Circle(px(c.CX), px(c.CY), px(c.Radius), shape(c.Color, c.FillColor))
	case scene.Rect:
		canvas.Rect(px(c.X), px(c.Y), px(c.W), px(c.H), shape(c.Color, c.FillColor))
	case scene.Point:
		canvas.Circle(px(c.X), px(c.Y), px(c.Radius), "fill:"+fill(c.Color))
	case scene.Text:
		if c.Rotate != 0 {
			canvas.Text(px(c.X), px(c.Y), c.Text, textStyle(c),
				fmt.Sprintf(`transform="rotate(%g %d %d)"`, c.Rotate, px(c.X), px(c.Y)))
			return
		}
		canvas.Text(px(c.X), px(c.Y), c.Text, textStyle(c))
	case scene.Arc:
		canvas.Path(arcPath(c), stroke(c.Color, c.Width)+";fill:none")
	case scene.Polygon:
		xs := make([]int, len(c.Points))
		ys := make([]int, len(c.Points))
		for i, p := range c.Points {
			xs[i], ys[i] = px(p[0]), px(p[1])
		}
		canvas.Polygon(xs, ys, shape(c.Color, c.FillColor))
	case scene.Polyline:
		if len(c.Points) < 2 {
			return
		}
		canvas.Path(polylinePath(c.Points), stroke(c.Color, c.Width)+";fill:none;stroke-linejoin:round")
	}
}

func polylinePath(pts [][2]float64) string {
	var sb strings.Builder
	for i, p := range pts {
		if i == 0 {
			fmt.Fprintf(&sb, "M %.2f %.2f", p[0], p[1])
			continue
		}
		fmt.Fprintf(&sb, " L %.2f %.2f", p[0], p[1])
	}
	return sb.String()
}

func dashArray(dash []float64) string {
	if len(dash) == 0 {
		return ""
	}
	parts := make([]string, len(dash))
	for i, d := range dash {
		parts[i] = strconv.FormatFloat(d, 'g', -1, 64)
	}
	return ";stroke-dasharray:" + strings.Join(parts, ",")
}

func px(v float64) int { return int(math.Round(v)) }

func fill(c string) string { return palette.CSS(c, "none") }

func stroke(c string, width float64) string {
	return fmt.Sprintf("stroke:%s;stroke-width:%g", palette.CSS(c, "#000000"), width)
}

func shape(strokeColor, fillColor string) string {
	if fillColor == "" {
		return "fill:none;" + stroke(strokeColor, 1)
	}
	if strokeColor == "" {
		return "fill:" + fill(fillColor)
	}
	return fmt.Sprintf("fill:%s;%s", fill(fillColor), stroke(strokeColor, 1))
}

func textStyle(t scene.Text) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "font-family:%s;font-size:%gpx;fill:%s", svgFontFamily(t.Font), t.Size, palette.CSS(t.Color, "#000000"))
	if t.Bold {
		sb.WriteString(";font-weight:bold")
	}
	if t.Anchor == scene.AnchorMiddle {
		sb.WriteString(";text-anchor:middle")
	}
	return sb.String()
}

// svgFontFamily puts the requested font first and the embedded family the
// PNG sink draws with after it.
func svgFontFamily(name string) string {
	fam := fonts.Lookup(name, false)
	if name == "" {
		return fam.CSS()
	}
	return fontFamily(name) + ", " + fam.CSS()
}

// arcPath converts a clockwise canvas arc into an SVG path. Sweeps of a full
// turn or more are drawn as two half arcs since a single SVG arc cannot
// start and end on the same point.
func arcPath(a scene.Arc) string {
	sweep := a.EndAngle - a.StartAngle
	if sweep >= 2*math.Pi {
		x0, y0 := a.CX+a.Radius, a.CY
		x1, y1 := a.CX-a.Radius, a.CY
		return fmt.Sprintf("M %g %g A %g %g 0 1 1 %g %g A %g %g 0 1 1 %g %g",
			x0, y0, a.Radius, a.Radius, x1, y1, a.Radius, a.Radius, x0, y0)
	}
	sweep = math.Mod(sweep, 2*math.Pi)
	if sweep < 0 {
		sweep += 2 * math.Pi
	}
	end := a.StartAngle + sweep
	x0, y0 := a.CX+a.Radius*math.Cos(a.StartAngle), a.CY+a.Radius*math.Sin(a.StartAngle)
	x1, y1 := a.CX+a.Radius*math.Cos(end), a.CY+a.Radius*math.Sin(end)
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M %.2f %.2f A %g %g 0 %d 1 %.2f %.2f", x0, y0, a.Radius, a.Radius, large, x1, y1)
}
