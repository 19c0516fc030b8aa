package actions

import (
	"encoding/json"

	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// curveSegments is how many straight pieces a single curve span is
// flattened into.
const curveSegments = 24

type point = [2]float64

type curveParams struct {
	Points        []point `json:"points"`
	ControlPoints []point `json:"control_points"`
	Color         string  `json:"color"`
	Width         float64 `json:"width"`
}

func (p curveParams) polyline(pts []point) scene.Polyline {
	w := p.Width
	if w <= 0 {
		w = defaultLineWidth
	}
	return scene.Polyline{Points: pts, Color: p.Color, Width: w}
}

func handleBezier(s *State, params json.RawMessage) error {
	var p curveParams
	if err := decode(params, &p); err != nil {
		return err
	}
	cp := p.ControlPoints
	if len(cp) < 4 {
		s.Logger.Debug("ignoring bezier with too few control points", "points", len(cp))
		return nil
	}
	pts := []point{cp[0]}
	pts = appendCubic(pts, cp[0], cp[1], cp[2], cp[3])
	s.Scene.Append(p.polyline(pts))
	return nil
}

func handlePath(s *State, params json.RawMessage) error {
	var p curveParams
	if err := decode(params, &p); err != nil {
		return err
	}
	if len(p.Points) < 2 {
		s.Logger.Debug("ignoring path with too few points", "points", len(p.Points))
		return nil
	}
	s.Scene.Append(p.polyline(p.Points))
	return nil
}

// handleSpline draws quadratic spans through the midpoints of consecutive
// control points, finishing with a straight run to the last point.
func handleSpline(s *State, params json.RawMessage) error {
	var p curveParams
	if err := decode(params, &p); err != nil {
		return err
	}
	cp := p.ControlPoints
	if len(cp) < 2 {
		s.Logger.Debug("ignoring spline with too few control points", "points", len(cp))
		return nil
	}
	pts := []point{cp[0]}
	for i := 1; i < len(cp)-1; i++ {
		mid := point{(cp[i][0] + cp[i+1][0]) / 2, (cp[i][1] + cp[i+1][1]) / 2}
		pts = appendQuad(pts, pts[len(pts)-1], cp[i], mid)
	}
	pts = append(pts, cp[len(cp)-1])
	s.Scene.Append(p.polyline(pts))
	return nil
}

// appendCubic appends the flattened cubic from p0 to p3, excluding p0.
func appendCubic(dst []point, p0, p1, p2, p3 point) []point {
	for i := 1; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		dst = append(dst, point{
			a*p0[0] + b*p1[0] + c*p2[0] + d*p3[0],
			a*p0[1] + b*p1[1] + c*p2[1] + d*p3[1],
		})
	}
	return dst
}

// appendQuad appends the flattened quadratic from p0 to p2, excluding p0.
func appendQuad(dst []point, p0, p1, p2 point) []point {
	for i := 1; i <= curveSegments; i++ {
		t := float64(i) / curveSegments
		u := 1 - t
		a, b, c := u*u, 2*u*t, t*t
		dst = append(dst, point{
			a*p0[0] + b*p1[0] + c*p2[0],
			a*p0[1] + b*p1[1] + c*p2[1],
		})
	}
	return dst
}

// smooth runs a cardinal-style cubic through every point. Control points
// come from the neighbours on each side, scaled by tension.
func smooth(pts []point, tension float64) []point {
	if len(pts) < 2 {
		return pts
	}
	out := []point{pts[0]}
	last := len(pts) - 1
	for i := 0; i < last; i++ {
		p0, p1, p2, p3 := pts[max(i-1, 0)], pts[i], pts[i+1], pts[min(i+2, last)]
		c1 := point{p1[0] + (p2[0]-p0[0])/6*tension, p1[1] + (p2[1]-p0[1])/6*tension}
		c2 := point{p2[0] - (p3[0]-p1[0])/6*tension, p2[1] - (p3[1]-p1[1])/6*tension}
		out = appendCubic(out, p1, c1, c2, p2)
	}
	return out
}
