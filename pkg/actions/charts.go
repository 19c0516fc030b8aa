package actions

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/wordcanvas/pkg/palette"
	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// Chart geometry shared by the graph_* actions.
const (
	chartMargin   = 40.0
	chartTitlePad = 30.0
	barSpacing    = 10.0
	gridSteps     = 5
	lineTension   = 0.5
	labelFont     = "sans-serif"
	labelSize     = 12.0

	// translucent is the alpha suffix area and radar fills append to their
	// stroke color.
	translucent = "33"

	maxHistogramBins = 1000
)

var gridDash = []float64{4, 4}

// chartHeader holds the params every chart action accepts.
type chartHeader struct {
	Color       string `json:"color"`
	Theme       string `json:"theme"`
	Title       string `json:"title"`
	Transparent bool   `json:"transparent"`
}

// begin paints the theme background and the title. It returns the theme
// and the vertical room the title takes from the plot.
func (h chartHeader) begin(sc *scene.Scene) (palette.Style, float64) {
	style := palette.Theme(h.Theme)
	if !h.Transparent {
		sc.Append(scene.Fill{Color: style.Background})
	}
	if h.Title == "" {
		return style, 0
	}
	sc.Append(chartText(h.Title, sc.Width/2, chartMargin, titleSize, style.Text, true))
	return style, chartTitlePad
}

func chartText(text string, x, y, size float64, color string, bold bool) scene.Text {
	return scene.Text{Text: text, X: x, Y: y, Font: wordCloudFont, Size: size, Color: color, Bold: bold, Anchor: scene.AnchorMiddle}
}

func chartLabel(text string, x, y float64, color string) scene.Text {
	return scene.Text{Text: text, X: x, Y: y, Font: labelFont, Size: labelSize, Color: color, Anchor: scene.AnchorMiddle}
}

func gridLine(x1, y1, x2, y2 float64, color string) scene.Line {
	return scene.Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Color: color, Width: 1, Dash: gridDash}
}

// plot is the rectangle data is drawn into.
type plot struct {
	left, top, right, bottom float64
}

func newPlot(sc *scene.Scene, titlePad float64) plot {
	return plot{
		left:   chartMargin,
		top:    chartMargin + titlePad,
		right:  sc.Width - chartMargin,
		bottom: sc.Height - chartMargin,
	}
}

func (p plot) width() float64  { return p.right - p.left }
func (p plot) height() float64 { return p.bottom - p.top }

// scale maps [lo, hi] linearly onto [from, to]. A zero-width domain maps as
// if it were one unit wide.
type scale struct {
	lo, hi, from, to float64
}

func (s scale) at(v float64) float64 {
	d := s.hi - s.lo
	if d == 0 {
		d = 1
	}
	return s.from + (v-s.lo)/d*(s.to-s.from)
}

func extent(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi
}

// arcPoints samples the circle arc from one angle to another, both ends
// included. Angles are radians, clockwise from +x.
func arcPoints(cx, cy, r, from, to float64) []point {
	n := max(2, int(math.Ceil(math.Abs(to-from)/(2*math.Pi)*64)))
	pts := make([]point, 0, n+1)
	for i := 0; i <= n; i++ {
		a := from + (to-from)*float64(i)/float64(n)
		pts = append(pts, point{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return pts
}

// =============================================================================
// Labelled values: bar, pie, donut, radar
// =============================================================================

type labeledParams struct {
	chartHeader
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

func (p labeledParams) valid(minLen int) bool {
	return len(p.Values) >= minLen && len(p.Labels) == len(p.Values) && p.Color != ""
}

func decodeLabeled(s *State, params json.RawMessage, kind string, minLen int) (labeledParams, bool, error) {
	var p labeledParams
	if err := decode(params, &p); err != nil {
		return p, false, err
	}
	if !p.valid(minLen) {
		s.Logger.Debug("ignoring chart with malformed params",
			"chart", kind, "labels", len(p.Labels), "values", len(p.Values), "color", p.Color)
		return p, false, nil
	}
	return p, true, nil
}

func handleBarChart(s *State, params json.RawMessage) error {
	p, ok, err := decodeLabeled(s, params, "bar", 2)
	if !ok {
		return err
	}
	sc := s.Scene
	style, pad := p.begin(sc)
	area := newPlot(sc, pad)

	n := float64(len(p.Values))
	barW := (area.width() - barSpacing*(n-1)) / n
	_, top := extent(p.Values)
	shades := palette.Shades(p.Color, len(p.Values))

	for i, v := range p.Values {
		x := area.left + float64(i)*(barW+barSpacing)
		if h := v / top * area.height(); top > 0 && h > 0 {
			sc.Append(scene.Polygon{
				Points:    roundedBar(x, area.bottom-h, barW, h, min(barW, h)*0.15),
				FillColor: shades[i],
			})
		}
		sc.Append(chartLabel(p.Labels[i], x+barW/2, area.bottom+14, style.Text))
	}
	return nil
}

// roundedBar outlines a bar whose top corners are rounded by r.
func roundedBar(x, y, w, h, r float64) []point {
	pts := []point{{x, y + h}}
	pts = append(pts, arcPoints(x+r, y+r, r, math.Pi, 1.5*math.Pi)...)
	pts = append(pts, arcPoints(x+w-r, y+r, r, 1.5*math.Pi, 2*math.Pi)...)
	return append(pts, point{x + w, y + h})
}

func handlePieChart(s *State, params json.RawMessage) error {
	p, ok, err := decodeLabeled(s, params, "pie", 2)
	if !ok {
		return err
	}
	drawSlices(s, p, 0)
	return nil
}

// handleDonutChart draws a pie with a hole of 0.55 of the radius and the
// largest slice's label in the middle.
func handleDonutChart(s *State, params json.RawMessage) error {
	p, ok, err := decodeLabeled(s, params, "donut", 2)
	if !ok {
		return err
	}
	cx, cy, outer := drawSlices(s, p, 0.55)
	if outer == 0 {
		return nil
	}
	best := 0
	for i, v := range p.Values {
		if v > p.Values[best] {
			best = i
		}
	}
	style := palette.Theme(p.Theme)
	s.Scene.Append(chartText(p.Labels[best], cx, cy+6, 16, style.Text, true))
	return nil
}

// drawSlices draws one wedge per value, clockwise from twelve o'clock. A
// positive hole turns wedges into ring segments. It returns the centre and
// outer radius, or a zero radius when nothing could be drawn.
func drawSlices(s *State, p labeledParams, hole float64) (cx, cy, outer float64) {
	var total float64
	for _, v := range p.Values {
		total += v
	}
	if total <= 0 {
		s.Logger.Debug("ignoring chart with no positive total", "total", total)
		return 0, 0, 0
	}
	sc := s.Scene
	p.begin(sc)
	shades := palette.Shades(p.Color, len(p.Values))

	cx, cy = sc.Width/2, sc.Height/2+10
	outer = min(sc.Width, sc.Height)/2 - chartMargin
	inner := outer * hole
	labelR := outer * 0.7
	if hole > 0 {
		labelR = (outer + inner) / 2
	}

	start := -math.Pi / 2
	for i, v := range p.Values {
		end := start + v/total*2*math.Pi
		var pts []point
		if hole > 0 {
			pts = append(arcPoints(cx, cy, outer, start, end), arcPoints(cx, cy, inner, end, start)...)
		} else {
			pts = append([]point{{cx, cy}}, arcPoints(cx, cy, outer, start, end)...)
		}
		sc.Append(scene.Polygon{Points: pts, FillColor: shades[i]})

		mid := (start + end) / 2
		ink := "#ffffff"
		if palette.IsLight(shades[i]) {
			ink = "#000000"
		}
		sc.Append(chartLabel(p.Labels[i], cx+math.Cos(mid)*labelR, cy+math.Sin(mid)*labelR, ink))
		start = end
	}
	return cx, cy, outer
}

func handleRadarChart(s *State, params json.RawMessage) error {
	p, ok, err := decodeLabeled(s, params, "radar", 3)
	if !ok {
		return err
	}
	_, top := extent(p.Values)
	if top <= 0 {
		s.Logger.Debug("ignoring radar with no positive value", "max", top)
		return nil
	}
	sc := s.Scene
	style, _ := p.begin(sc)
	stroke := palette.Shades(p.Color, 1)[0]

	cx, cy := sc.Width/2, sc.Height/2+10
	radius := min(sc.Width, sc.Height)/2 - 50
	n := len(p.Values)
	step := 2 * math.Pi / float64(n)
	spoke := func(i int, r float64) point {
		a := float64(i) * step
		return point{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}

	for l := 1; l <= gridSteps; l++ {
		r := radius * float64(l) / gridSteps
		for i := range n {
			a, b := spoke(i, r), spoke(i+1, r)
			sc.Append(gridLine(a[0], a[1], b[0], b[1], style.Grid))
		}
	}
	for i := range n {
		end := spoke(i, radius)
		sc.Append(gridLine(cx, cy, end[0], end[1], style.Grid))
	}

	shape := make([]point, n)
	for i, v := range p.Values {
		shape[i] = spoke(i, v/top*radius)
	}
	sc.Append(scene.Polygon{Points: shape, FillColor: stroke + translucent})
	sc.Append(scene.Polyline{Points: append(shape, shape[0]), Color: stroke, Width: 2})

	for i, l := range p.Labels {
		at := spoke(i, radius+20)
		sc.Append(chartText(l, at[0], at[1], labelSize, style.Text, false))
	}
	return nil
}

// =============================================================================
// XY series: line, area, scatter, bubble
// =============================================================================

type xyParams struct {
	chartHeader
	XValues []float64 `json:"x_values"`
	YValues []float64 `json:"y_values"`
	Sizes   []float64 `json:"sizes"`
	XLabel  string    `json:"x_label"`
	YLabel  string    `json:"y_label"`
}

type xyChart struct {
	style  palette.Style
	area   plot
	stroke string
	points []point
}

func decodeXY(s *State, params json.RawMessage, kind string) (xyParams, bool, error) {
	var p xyParams
	if err := decode(params, &p); err != nil {
		return p, false, err
	}
	n := len(p.XValues)
	ok := n >= 2 && len(p.YValues) == n && p.Color != ""
	if kind == "bubble" {
		ok = ok && len(p.Sizes) == n
	}
	if !ok {
		s.Logger.Debug("ignoring chart with malformed params",
			"chart", kind, "x", n, "y", len(p.YValues), "color", p.Color)
	}
	return p, ok, nil
}

// frame draws the background, title and dashed grid and scales the series
// into the plot.
func (p xyParams) frame(sc *scene.Scene) xyChart {
	style, pad := p.begin(sc)
	area := newPlot(sc, pad)
	minX, maxX := extent(p.XValues)
	minY, maxY := extent(p.YValues)
	sx := scale{lo: minX, hi: maxX, from: area.left, to: area.right}
	sy := scale{lo: minY, hi: maxY, from: area.bottom, to: area.top}

	c := xyChart{style: style, area: area, stroke: palette.Shades(p.Color, 1)[0]}
	for i, x := range p.XValues {
		c.points = append(c.points, point{sx.at(x), sy.at(p.YValues[i])})
	}

	for _, pt := range c.points {
		sc.Append(gridLine(pt[0], chartMargin, pt[0], area.bottom, style.Grid))
	}
	for j := 0; j <= gridSteps; j++ {
		y := area.top + area.height()*float64(j)/gridSteps
		sc.Append(gridLine(area.left, y, area.right, y, style.Grid))
	}
	return c
}

// axisLabels writes the x label under the plot and the y label up its left
// edge.
func (p xyParams) axisLabels(sc *scene.Scene, style palette.Style) {
	if p.XLabel != "" {
		sc.Append(chartText(p.XLabel, sc.Width/2, sc.Height-8, labelSize, style.Text, false))
	}
	if p.YLabel != "" {
		t := chartText(p.YLabel, 12, sc.Height/2, labelSize, style.Text, false)
		t.Rotate = -90
		sc.Append(t)
	}
}

func handleLineChart(s *State, params json.RawMessage) error {
	p, ok, err := decodeXY(s, params, "line")
	if !ok {
		return err
	}
	c := p.frame(s.Scene)
	s.Scene.Append(scene.Polyline{Points: smooth(c.points, lineTension), Color: c.stroke, Width: 2})
	p.axisLabels(s.Scene, c.style)
	return nil
}

// handleAreaChart draws a line chart with the region under the curve
// filled down to the x axis.
func handleAreaChart(s *State, params json.RawMessage) error {
	p, ok, err := decodeXY(s, params, "area")
	if !ok {
		return err
	}
	c := p.frame(s.Scene)
	curve := smooth(c.points, lineTension)

	fill := []point{{c.points[0][0], c.area.bottom}}
	fill = append(fill, curve...)
	fill = append(fill, point{c.points[len(c.points)-1][0], c.area.bottom})
	s.Scene.Append(scene.Polygon{Points: fill, FillColor: c.stroke + translucent})
	s.Scene.Append(scene.Polyline{Points: curve, Color: c.stroke, Width: 2})
	p.axisLabels(s.Scene, c.style)
	return nil
}

func handleScatterChart(s *State, params json.RawMessage) error {
	p, ok, err := decodeXY(s, params, "scatter")
	if !ok {
		return err
	}
	c := p.frame(s.Scene)
	for _, pt := range c.points {
		s.Scene.Append(scene.Point{X: pt[0], Y: pt[1], Color: c.stroke, Radius: 4})
	}
	p.axisLabels(s.Scene, c.style)
	return nil
}

// handleBubbleChart draws a scatter whose dot radii run from 5 to 35 with
// the size series.
func handleBubbleChart(s *State, params json.RawMessage) error {
	p, ok, err := decodeXY(s, params, "bubble")
	if !ok {
		return err
	}
	c := p.frame(s.Scene)
	lo, hi := extent(p.Sizes)
	sr := scale{lo: lo, hi: hi, from: 5, to: 35}
	for i, pt := range c.points {
		s.Scene.Append(scene.Circle{CX: pt[0], CY: pt[1], Radius: sr.at(p.Sizes[i]), FillColor: c.stroke})
	}
	p.axisLabels(s.Scene, c.style)
	return nil
}

// =============================================================================
// Grids and distributions: heatmap, histogram, gauge
// =============================================================================

// handleHeatmap fills one cell per matrix entry, shaded from the darkest to
// the lightest of 100 tints by value. Rows shorter than the first are drawn
// as far as they go.
func handleHeatmap(s *State, params json.RawMessage) error {
	var p struct {
		chartHeader
		Matrix [][]float64 `json:"matrix"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	if len(p.Matrix) == 0 || len(p.Matrix[0]) == 0 || p.Color == "" {
		s.Logger.Debug("ignoring heatmap with malformed params", "rows", len(p.Matrix), "color", p.Color)
		return nil
	}
	sc := s.Scene
	_, pad := p.begin(sc)
	area := newPlot(sc, pad)
	tint := palette.Shades(p.Color, 100)

	rows, cols := len(p.Matrix), len(p.Matrix[0])
	cellW, cellH := area.width()/float64(cols), area.height()/float64(rows)
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range p.Matrix {
		l, h := extent(row)
		lo, hi = min(lo, l), max(hi, h)
	}
	shade := scale{lo: lo, hi: hi, from: 0, to: float64(len(tint) - 1)}

	for y, row := range p.Matrix {
		for x := 0; x < cols && x < len(row); x++ {
			i := max(0, min(len(tint)-1, int(math.Floor(shade.at(row[x])))))
			sc.Append(scene.Rect{
				X: area.left + float64(x)*cellW, Y: area.top + float64(y)*cellH,
				W: cellW, H: cellH, FillColor: tint[i],
			})
		}
	}
	return nil
}

// handleHistogram buckets values into equal-width bins between their
// minimum and maximum and draws one bar per non-empty bin, scaled to the
// fullest bin.
func handleHistogram(s *State, params json.RawMessage) error {
	var p struct {
		chartHeader
		Values []float64 `json:"values"`
		Bins   int       `json:"bins"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	if len(p.Values) == 0 || p.Color == "" {
		s.Logger.Debug("ignoring histogram with malformed params", "values", len(p.Values), "color", p.Color)
		return nil
	}
	if p.Bins <= 0 {
		p.Bins = 10
	}
	p.Bins = min(p.Bins, maxHistogramBins)

	counts := binCounts(p.Values, p.Bins)
	fullest := 0
	for _, c := range counts {
		fullest = max(fullest, c)
	}

	sc := s.Scene
	_, pad := p.begin(sc)
	area := newPlot(sc, pad)
	barW := area.width() / float64(p.Bins)
	colors := palette.Shades(p.Color, p.Bins)
	for i, c := range counts {
		if c == 0 {
			continue
		}
		h := float64(c) / float64(fullest) * area.height()
		sc.Append(scene.Rect{
			X: area.left + float64(i)*barW + 2, Y: area.bottom - h,
			W: barW - 4, H: h, FillColor: colors[i],
		})
	}
	return nil
}

// binCounts counts values per bin. The maximum lands in the last bin;
// identical values all land in the first.
func binCounts(values []float64, bins int) []int {
	lo, hi := extent(values)
	size := (hi - lo) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		i := 0
		if size > 0 {
			i = max(0, min(bins-1, int(math.Floor((v-lo)/size))))
		}
		counts[i]++
	}
	return counts
}

const gaugeWidth = 30.0

// handleGauge draws a half-circle dial filled to value percent, with the
// percentage and an optional label under it.
func handleGauge(s *State, params json.RawMessage) error {
	var p struct {
		chartHeader
		Value *float64 `json:"value"`
		Label string   `json:"label"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	if p.Value == nil || *p.Value < 0 || *p.Value > 100 || p.Color == "" {
		s.Logger.Debug("ignoring gauge with malformed params", "color", p.Color)
		return nil
	}
	v := *p.Value
	sc := s.Scene
	style := palette.Theme(p.Theme)
	if !p.Transparent {
		sc.Append(scene.Fill{Color: style.Background})
	}
	cx := sc.Width / 2
	if p.Title != "" {
		sc.Append(chartText(p.Title, cx, chartMargin, 20, style.Text, true))
	}

	radius := min(sc.Width, sc.Height)/2 - chartMargin
	cy := sc.Height/2 + (radius+gaugeWidth/2-20)/2

	sc.Append(scene.Arc{CX: cx, CY: cy, Radius: radius, StartAngle: math.Pi, EndAngle: 2 * math.Pi, Color: style.Grid, Width: gaugeWidth})
	sc.Append(scene.Arc{
		CX: cx, CY: cy, Radius: radius,
		StartAngle: math.Pi, EndAngle: math.Pi + math.Pi*v/100,
		Color: palette.Shades(p.Color, 1)[0], Width: gaugeWidth,
	})
	sc.Append(chartText(fmt.Sprintf("%.0f%%", v), cx, cy+10, 28, style.Text, true))
	if p.Label != "" {
		sc.Append(chartText(p.Label, cx, cy+36, 14, style.Text, false))
	}
	return nil
}
