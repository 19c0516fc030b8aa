package actions

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/wordcanvas/pkg/canvas"
	"github.com/matzehuels/wordcanvas/pkg/palette"
	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// The test state is 800x600, so an untitled plot spans x 40..760 and
// y 40..560.

func replayChart(t *testing.T, action, params string) *scene.Scene {
	t.Helper()
	s := newTestState()
	NewRegistry().Replay(s, []canvas.Entry{entry(action, params)})
	if s.Stats.Applied != 1 {
		t.Fatalf("stats = %+v, want 1 applied", s.Stats)
	}
	return s.Scene
}

func opCounts(cmds []scene.Command) map[scene.Op]int {
	counts := make(map[scene.Op]int)
	for _, c := range cmds {
		counts[c.Op()]++
	}
	return counts
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func nearPoint(a, b point) bool { return near(a[0], b[0]) && near(a[1], b[1]) }

func commandsOf[T scene.Command](sc *scene.Scene) []T {
	var out []T
	for _, c := range sc.Commands {
		if v, ok := c.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestChartCommandKinds(t *testing.T) {
	tests := []struct {
		name   string
		action string
		params string
		want   map[scene.Op]int
	}{
		{
			"bar", "graph_bar",
			`{"labels":["a","b"],"values":[1,2],"color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpPolygon: 2, scene.OpText: 2},
		},
		{
			"bar titled transparent", "graph_bar",
			`{"labels":["a","b"],"values":[1,2],"color":"#336699","title":"T","transparent":true}`,
			map[scene.Op]int{scene.OpPolygon: 2, scene.OpText: 3},
		},
		{
			"bar with an empty value", "graph_bar",
			`{"labels":["a","b"],"values":[0,2],"color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpPolygon: 1, scene.OpText: 2},
		},
		{
			"line", "graph_line",
			`{"x_values":[0,1,2],"y_values":[0,10,5],"color":"#336699","x_label":"x","y_label":"y"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpLine: 9, scene.OpPolyline: 1, scene.OpText: 2},
		},
		{
			"area", "graph_area",
			`{"x_values":[0,1],"y_values":[3,4],"color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpLine: 8, scene.OpPolygon: 1, scene.OpPolyline: 1},
		},
		{
			"scatter", "graph_scatter",
			`{"x_values":[0,1,2],"y_values":[0,10,5],"color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpLine: 9, scene.OpPoint: 3},
		},
		{
			"bubble", "graph_bubble",
			`{"x_values":[0,1,2],"y_values":[0,10,5],"sizes":[1,2,3],"color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpLine: 9, scene.OpCircle: 3},
		},
		{
			"pie", "graph_pie",
			`{"labels":["a","b","c"],"values":[1,1,2],"color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpPolygon: 3, scene.OpText: 3},
		},
		{
			"donut", "graph_donut",
			`{"labels":["big","small"],"values":[3,1],"color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpPolygon: 2, scene.OpText: 3},
		},
		{
			"radar", "graph_radar",
			`{"labels":["a","b","c"],"values":[1,2,2],"color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpLine: 18, scene.OpPolygon: 1, scene.OpPolyline: 1, scene.OpText: 3},
		},
		{
			"heatmap", "graph_heatmap",
			`{"matrix":[[0,1],[2,3]],"color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpRect: 4},
		},
		{
			"ragged heatmap", "graph_heatmap",
			`{"matrix":[[1,2,3],[4]],"color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpRect: 4},
		},
		{
			"histogram", "graph_histogram",
			`{"values":[1,1,2,3],"bins":2,"color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpRect: 2},
		},
		{
			"gauge", "graph_gauge",
			`{"value":50,"label":"cpu","title":"Load","color":"#336699"}`,
			map[scene.Op]int{scene.OpFill: 1, scene.OpArc: 2, scene.OpText: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := replayChart(t, tt.action, tt.params)
			if got := opCounts(sc.Commands); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("commands = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMalformedChartsAreSkipped(t *testing.T) {
	tests := []struct {
		name   string
		action string
		params string
	}{
		{"bar with one value", "graph_bar", `{"labels":["a"],"values":[1],"color":"#fff"}`},
		{"bar with mismatched labels", "graph_bar", `{"labels":["a"],"values":[1,2],"color":"#fff"}`},
		{"pie without color", "graph_pie", `{"labels":["a","b"],"values":[1,2]}`},
		{"pie with zero total", "graph_pie", `{"labels":["a","b"],"values":[0,0],"color":"#fff"}`},
		{"radar with two axes", "graph_radar", `{"labels":["a","b"],"values":[1,2],"color":"#fff"}`},
		{"radar with zero values", "graph_radar", `{"labels":["a","b","c"],"values":[0,0,0],"color":"#fff"}`},
		{"line with mismatched series", "graph_line", `{"x_values":[0,1,2],"y_values":[0,1],"color":"#fff"}`},
		{"bubble without sizes", "graph_bubble", `{"x_values":[0,1],"y_values":[0,1],"color":"#fff"}`},
		{"empty heatmap", "graph_heatmap", `{"matrix":[],"color":"#fff"}`},
		{"heatmap with empty row", "graph_heatmap", `{"matrix":[[]],"color":"#fff"}`},
		{"empty histogram", "graph_histogram", `{"values":[],"color":"#fff"}`},
		{"gauge over 100", "graph_gauge", `{"value":120,"color":"#fff"}`},
		{"gauge without value", "graph_gauge", `{"color":"#fff"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := replayChart(t, tt.action, tt.params)
			if sc.Len() != 0 {
				t.Errorf("drew %d commands, want none", sc.Len())
			}
		})
	}
}

func TestChartInvalidParamsFail(t *testing.T) {
	s := newTestState()
	NewRegistry().Replay(s, []canvas.Entry{entry("graph_bar", `{"values":"tall"}`)})
	if s.Stats.Failed != 1 || s.Scene.Len() != 0 {
		t.Errorf("stats = %+v with %d commands, want 1 failed and none drawn", s.Stats, s.Scene.Len())
	}
}

func TestBarChartGeometry(t *testing.T) {
	sc := replayChart(t, "graph_bar", `{"labels":["a","b"],"values":[1,2],"color":"#336699","theme":"light"}`)

	if fill := sc.Commands[0]; fill != (scene.Fill{Color: "#ffffff"}) {
		t.Errorf("background = %+v, want the light theme", fill)
	}

	// Two bars of (720-10)/2 = 355 wide, the taller one filling 520.
	bars := commandsOf[scene.Polygon](sc)
	shades := palette.Shades("#336699", 2)
	wantBounds := [][4]float64{{40, 300, 395, 560}, {405, 40, 760, 560}}
	for i, bar := range bars {
		lo, hi := point{math.Inf(1), math.Inf(1)}, point{math.Inf(-1), math.Inf(-1)}
		for _, p := range bar.Points {
			lo = point{min(lo[0], p[0]), min(lo[1], p[1])}
			hi = point{max(hi[0], p[0]), max(hi[1], p[1])}
		}
		got := [4]float64{lo[0], lo[1], hi[0], hi[1]}
		for j := range got {
			if !near(got[j], wantBounds[i][j]) {
				t.Errorf("bar %d bounds = %v, want %v", i, got, wantBounds[i])
				break
			}
		}
		if bar.FillColor != shades[i] || bar.Color != "" {
			t.Errorf("bar %d colors = %q/%q, want fill-only %q", i, bar.Color, bar.FillColor, shades[i])
		}
	}

	labels := commandsOf[scene.Text](sc)
	want := scene.Text{Text: "a", X: 217.5, Y: 574, Font: labelFont, Size: labelSize, Color: "#000000", Anchor: scene.AnchorMiddle}
	if len(labels) != 2 || labels[0] != want {
		t.Errorf("labels = %+v, want first %+v", labels, want)
	}
}

func TestBarChartTitleShrinksPlot(t *testing.T) {
	sc := replayChart(t, "graph_bar", `{"labels":["a","b"],"values":[1,2],"color":"#336699","title":"Sales"}`)

	title := sc.Commands[1].(scene.Text)
	if title.Text != "Sales" || title.Y != chartMargin || !title.Bold || title.Size != titleSize {
		t.Errorf("title = %+v", title)
	}
	top := math.Inf(1)
	for _, p := range commandsOf[scene.Polygon](sc)[1].Points {
		top = min(top, p[1])
	}
	if !near(top, chartMargin+chartTitlePad) {
		t.Errorf("tallest bar top = %v, want %v", top, chartMargin+chartTitlePad)
	}
}

func TestPieSlicesCoverCircle(t *testing.T) {
	sc := replayChart(t, "graph_pie", `{"labels":["a","b","c"],"values":[1,1,2],"color":"#336699"}`)

	// Centre (400, 310), radius 300-40.
	slices := commandsOf[scene.Polygon](sc)
	noon := point{400, 50}
	if slices[0].Points[0] != (point{400, 310}) {
		t.Errorf("first slice starts at %v, want the centre", slices[0].Points[0])
	}
	if !nearPoint(slices[0].Points[1], noon) {
		t.Errorf("first slice edge = %v, want %v", slices[0].Points[1], noon)
	}
	last := slices[2].Points
	if !nearPoint(last[len(last)-1], noon) {
		t.Errorf("last slice ends at %v, want back at %v", last[len(last)-1], noon)
	}

	labels := commandsOf[scene.Text](sc)
	r := 260 * 0.7
	want := point{400 + r*math.Cos(-math.Pi/4), 310 + r*math.Sin(-math.Pi/4)}
	if !nearPoint(point{labels[0].X, labels[0].Y}, want) {
		t.Errorf("first label at %v,%v, want %v", labels[0].X, labels[0].Y, want)
	}
	for i, l := range labels {
		ink := "#ffffff"
		if palette.IsLight(slices[i].FillColor) {
			ink = "#000000"
		}
		if l.Color != ink {
			t.Errorf("label %d color = %s on %s, want %s", i, l.Color, slices[i].FillColor, ink)
		}
	}
}

func TestDonutChart(t *testing.T) {
	sc := replayChart(t, "graph_donut", `{"labels":["small","big"],"values":[1,3],"color":"#336699"}`)

	outer := 260.0
	inner := outer * 0.55
	for i, ring := range commandsOf[scene.Polygon](sc) {
		for _, p := range ring.Points {
			d := math.Hypot(p[0]-400, p[1]-310)
			if d < inner-1e-6 || d > outer+1e-6 {
				t.Fatalf("segment %d point %v is %v from the centre, want within [%v, %v]", i, p, d, inner, outer)
			}
		}
	}

	centre := sc.Commands[len(sc.Commands)-1]
	want := scene.Text{Text: "big", X: 400, Y: 316, Font: wordCloudFont, Size: 16, Color: "#ffffff", Bold: true, Anchor: scene.AnchorMiddle}
	if centre != want {
		t.Errorf("centre label = %+v, want %+v", centre, want)
	}
}

func TestLineChartGeometry(t *testing.T) {
	sc := replayChart(t, "graph_line", `{"x_values":[0,1,2],"y_values":[0,10,5],"color":"#336699","x_label":"time","y_label":"load"}`)

	line := commandsOf[scene.Polyline](sc)[0]
	if len(line.Points) != 1+2*curveSegments {
		t.Fatalf("curve points = %d", len(line.Points))
	}
	for i, want := range []point{{40, 560}, {400, 40}, {760, 300}} {
		if got := line.Points[i*curveSegments]; !nearPoint(got, want) {
			t.Errorf("data point %d at %v, want %v", i, got, want)
		}
	}
	if line.Width != 2 || line.Color != palette.Shades("#336699", 1)[0] {
		t.Errorf("stroke = %s/%v", line.Color, line.Width)
	}

	grid := commandsOf[scene.Line](sc)
	wantGrid := scene.Line{X1: 400, Y1: 40, X2: 400, Y2: 560, Color: "#444444", Width: 1, Dash: []float64{4, 4}}
	if !reflect.DeepEqual(grid[1], wantGrid) {
		t.Errorf("middle grid line = %+v, want %+v", grid[1], wantGrid)
	}

	axis := commandsOf[scene.Text](sc)
	if len(axis) != 2 || axis[0].Text != "time" || axis[0].Y != 592 {
		t.Fatalf("axis labels = %+v", axis)
	}
	if axis[1].Text != "load" || axis[1].X != 12 || axis[1].Y != 300 || axis[1].Rotate != -90 {
		t.Errorf("y label = %+v, want rotated at 12,300", axis[1])
	}
}

func TestAreaChartFillsToAxis(t *testing.T) {
	sc := replayChart(t, "graph_area", `{"x_values":[0,1,2],"y_values":[1,3,2],"color":"#336699"}`)

	area := commandsOf[scene.Polygon](sc)[0]
	line := commandsOf[scene.Polyline](sc)[0]
	if area.Points[0] != (point{40, 560}) || area.Points[len(area.Points)-1] != (point{760, 560}) {
		t.Errorf("area runs %v..%v, want along the baseline", area.Points[0], area.Points[len(area.Points)-1])
	}
	if area.FillColor != line.Color+translucent || area.Color != "" {
		t.Errorf("area colors = %q/%q, want fill-only %s", area.Color, area.FillColor, line.Color+translucent)
	}
	if len(area.Points) != len(line.Points)+2 {
		t.Errorf("area points = %d, want curve plus two baseline corners", len(area.Points))
	}
}

func TestScatterAndBubbleMarks(t *testing.T) {
	sc := replayChart(t, "graph_scatter", `{"x_values":[0,2],"y_values":[0,4],"color":"#336699"}`)
	pts := commandsOf[scene.Point](sc)
	if len(pts) != 2 || pts[1].X != 760 || pts[1].Y != 40 || pts[1].Radius != 4 {
		t.Errorf("scatter points = %+v", pts)
	}

	sc = replayChart(t, "graph_bubble", `{"x_values":[0,1,2],"y_values":[0,1,2],"sizes":[10,20,30],"color":"#336699"}`)
	for i, c := range commandsOf[scene.Circle](sc) {
		if want := 5 + 15*float64(i); c.Radius != want || c.Color != "" || c.FillColor == "" {
			t.Errorf("bubble %d = %+v, want fill-only radius %v", i, c, want)
		}
	}
}

func TestHeatmapCells(t *testing.T) {
	sc := replayChart(t, "graph_heatmap", `{"matrix":[[0,1],[2,3]],"color":"#336699"}`)

	tint := palette.Shades("#336699", 100)
	cells := commandsOf[scene.Rect](sc)
	want := []scene.Rect{
		{X: 40, Y: 40, W: 360, H: 260, FillColor: tint[0]},
		{X: 400, Y: 300, W: 360, H: 260, FillColor: tint[99]},
	}
	if cells[0] != want[0] || cells[3] != want[1] {
		t.Errorf("corner cells = %+v, %+v, want %+v", cells[0], cells[3], want)
	}
}

func TestHistogramBars(t *testing.T) {
	tests := []struct {
		name   string
		params string
		want   []scene.Rect
	}{
		{
			"two bins",
			`{"values":[1,1,2,3],"bins":2,"color":"#336699"}`,
			[]scene.Rect{
				{X: 42, Y: 40, W: 356, H: 520},
				{X: 402, Y: 40, W: 356, H: 520},
			},
		},
		{
			"identical values default bins",
			`{"values":[5,5,5],"color":"#336699"}`,
			[]scene.Rect{{X: 42, Y: 40, W: 68, H: 520}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := commandsOf[scene.Rect](replayChart(t, "graph_histogram", tt.params))
			if len(bars) != len(tt.want) {
				t.Fatalf("bars = %d, want %d", len(bars), len(tt.want))
			}
			for i, b := range bars {
				b.FillColor = ""
				if b != tt.want[i] {
					t.Errorf("bar %d = %+v, want %+v", i, b, tt.want[i])
				}
			}
		})
	}
}

func TestBinCounts(t *testing.T) {
	tests := []struct {
		values []float64
		bins   int
		want   []int
	}{
		{[]float64{1, 1, 2, 3}, 2, []int{2, 2}},
		{[]float64{5, 5, 5}, 3, []int{3, 0, 0}},
		{[]float64{0, 10}, 4, []int{1, 0, 0, 1}},
		{[]float64{0, 1, 2, 3, 4}, 5, []int{1, 1, 1, 1, 1}},
	}
	for _, tt := range tests {
		if got := binCounts(tt.values, tt.bins); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("binCounts(%v, %d) = %v, want %v", tt.values, tt.bins, got, tt.want)
		}
	}
}

func TestRadarChart(t *testing.T) {
	sc := replayChart(t, "graph_radar", `{"labels":["a","b","c"],"values":[1,2,2],"color":"#336699"}`)

	shape := commandsOf[scene.Polygon](sc)[0]
	outline := commandsOf[scene.Polyline](sc)[0]
	// Radius 300-50; the first axis points along +x.
	if shape.Points[0] != (point{525, 310}) {
		t.Errorf("first vertex = %v, want half way out the first spoke", shape.Points[0])
	}
	want := point{400 + 250*math.Cos(2*math.Pi/3), 310 + 250*math.Sin(2*math.Pi/3)}
	if !nearPoint(shape.Points[1], want) {
		t.Errorf("second vertex = %v, want %v", shape.Points[1], want)
	}
	if len(outline.Points) != 4 || outline.Points[0] != outline.Points[3] {
		t.Errorf("outline = %v, want a closed triangle", outline.Points)
	}
	if shape.FillColor != outline.Color+translucent || outline.Width != 2 {
		t.Errorf("shape fill %s outline %s/%v", shape.FillColor, outline.Color, outline.Width)
	}
	for _, l := range commandsOf[scene.Line](sc) {
		if !reflect.DeepEqual(l.Dash, gridDash) {
			t.Fatalf("grid line %+v is not dashed", l)
		}
	}
}

func TestGauge(t *testing.T) {
	sc := replayChart(t, "graph_gauge", `{"value":50,"label":"cpu","title":"Load","color":"#336699","theme":"light"}`)
	if sc.Len() != 6 {
		t.Fatalf("commands = %d, want 6", sc.Len())
	}

	// cy = 300 + (260 + 15 - 20) / 2
	track := scene.Arc{CX: 400, CY: 427.5, Radius: 260, StartAngle: math.Pi, EndAngle: 2 * math.Pi, Color: "#cccccc", Width: gaugeWidth}
	if sc.Commands[2] != track {
		t.Errorf("track = %+v, want %+v", sc.Commands[2], track)
	}
	if v := sc.Commands[3].(scene.Arc); !near(v.EndAngle, 1.5*math.Pi) {
		t.Errorf("value arc ends at %v, want 1.5π", v.EndAngle)
	}

	var texts []string
	for _, c := range commandsOf[scene.Text](sc) {
		texts = append(texts, c.Text)
	}
	if got := strings.Join(texts, "|"); got != "Load|50%|cpu" {
		t.Errorf("texts = %q", got)
	}
	if title := sc.Commands[1].(scene.Text); title.Size != 20 || !title.Bold {
		t.Errorf("title = %+v", title)
	}
}
