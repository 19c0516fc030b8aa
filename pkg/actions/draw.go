package actions

import (
	"encoding/json"

	"github.com/matzehuels/wordcanvas/pkg/errors"
	"github.com/matzehuels/wordcanvas/pkg/scene"
)

// Defaults for params the browser client would inherit from canvas state.
const (
	defaultLineWidth = 1.0
	defaultTextFont  = "sans-serif"
	defaultTextSize  = 10.0
	defaultTextColor = "#ffffff"
)

func decode(params json.RawMessage, v any) error {
	if err := json.Unmarshal(params, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidHistory, err, "invalid params")
	}
	return nil
}

// fillColor maps the "fill" param onto a fill color; "none" means unfilled.
func fillColor(fill string) string {
	if fill == "none" {
		return ""
	}
	return fill
}

func handleCreate(s *State, params json.RawMessage) error {
	var p struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Color string  `json:"color"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	if s.Framed {
		return nil
	}
	if p.X > 0 {
		s.Scene.Width = min(p.X, scene.MaxSize)
	}
	if p.Y > 0 {
		s.Scene.Height = min(p.Y, scene.MaxSize)
	}
	if p.Color == "" {
		p.Color = scene.DefaultBackground
	}
	s.Scene.Background = p.Color
	s.Scene.Append(scene.Fill{Color: p.Color})
	s.Framed = true
	return nil
}

func handleClear(s *State, _ json.RawMessage) error {
	s.Scene.Append(scene.Clear{})
	return nil
}

func handleLine(s *State, params json.RawMessage) error {
	var p struct {
		StartX float64 `json:"start_x"`
		StartY float64 `json:"start_y"`
		EndX   float64 `json:"end_x"`
		EndY   float64 `json:"end_y"`
		Color  string  `json:"color"`
		Width  float64 `json:"width"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	if p.Width <= 0 {
		p.Width = defaultLineWidth
	}
	s.Scene.Append(scene.Line{X1: p.StartX, Y1: p.StartY, X2: p.EndX, Y2: p.EndY, Color: p.Color, Width: p.Width})
	return nil
}

func handleCircle(s *State, params json.RawMessage) error {
	var p struct {
		CenterX float64 `json:"center_x"`
		CenterY float64 `json:"center_y"`
		Radius  float64 `json:"radius"`
		Color   string  `json:"color"`
		Fill    string  `json:"fill"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	s.Scene.Append(scene.Circle{CX: p.CenterX, CY: p.CenterY, Radius: p.Radius, Color: p.Color, FillColor: fillColor(p.Fill)})
	return nil
}

func handleRectangle(s *State, params json.RawMessage) error {
	var p struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		Color  string  `json:"color"`
		Fill   string  `json:"fill"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	s.Scene.Append(scene.Rect{X: p.X, Y: p.Y, W: p.Width, H: p.Height, Color: p.Color, FillColor: fillColor(p.Fill)})
	return nil
}

func handleText(s *State, params json.RawMessage) error {
	var p struct {
		Text  string  `json:"text"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Font  string  `json:"font"`
		Size  float64 `json:"size"`
		Color string  `json:"color"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	if p.Font == "" {
		p.Font = defaultTextFont
	}
	if p.Size <= 0 {
		p.Size = defaultTextSize
	}
	if p.Color == "" {
		p.Color = defaultTextColor
	}
	s.Scene.Append(scene.Text{Text: p.Text, X: p.X, Y: p.Y, Font: p.Font, Size: p.Size, Color: p.Color, Anchor: scene.AnchorStart})
	return nil
}

func handlePoint(s *State, params json.RawMessage) error {
	var p struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Color  string  `json:"color"`
		Radius float64 `json:"radius"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	s.Scene.Append(scene.Point{X: p.X, Y: p.Y, Color: p.Color, Radius: p.Radius})
	return nil
}

func handleArc(s *State, params json.RawMessage) error {
	var p struct {
		CenterX    float64 `json:"center_x"`
		CenterY    float64 `json:"center_y"`
		Radius     float64 `json:"radius"`
		StartAngle float64 `json:"start_angle"`
		EndAngle   float64 `json:"end_angle"`
		Color      string  `json:"color"`
		Width      float64 `json:"width"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	if p.Width <= 0 {
		p.Width = defaultLineWidth
	}
	s.Scene.Append(scene.Arc{
		CX: p.CenterX, CY: p.CenterY, Radius: p.Radius,
		StartAngle: p.StartAngle, EndAngle: p.EndAngle,
		Color: p.Color, Width: p.Width,
	})
	return nil
}

func handlePolygon(s *State, params json.RawMessage) error {
	var p struct {
		Points [][2]float64 `json:"points"`
		Color  string       `json:"color"`
		Fill   string       `json:"fill"`
	}
	if err := decode(params, &p); err != nil {
		return err
	}
	if len(p.Points) == 0 {
		return nil
	}
	s.Scene.Append(scene.Polygon{Points: p.Points, Color: p.Color, FillColor: fillColor(p.Fill)})
	return nil
}
