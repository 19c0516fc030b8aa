// Package scene holds the retained list of draw commands a canvas history
// replays into.
//
// Commands are plain immutable values. Sinks (SVG, PNG, JSON) walk a [Scene]
// in order; nothing here knows how a command ends up as pixels.
package scene

import (
	"encoding/json"
	"fmt"
)

// Op names a draw command kind. It doubles as the "op" tag in JSON output.
type Op string

const (
	OpFill     Op = "fill"
	OpClear    Op = "clear"
	OpLine     Op = "line"
	OpCircle   Op = "circle"
	OpRect     Op = "rect"
	OpText     Op = "text"
	OpPoint    Op = "point"
	OpArc      Op = "arc"
	OpPolygon  Op = "polygon"
	OpPolyline Op = "polyline"
)

// Command is a single draw instruction.
type Command interface {
	Op() Op
}

// Fill paints the whole canvas with Color.
type Fill struct {
	Color string `json:"color"`
}

// Clear erases the canvas to transparent.
type Clear struct{}

// Line is a stroked segment. Dash alternates dash and gap lengths; empty
// means solid.
type Line struct {
	X1    float64   `json:"x1"`
	Y1    float64   `json:"y1"`
	X2    float64   `json:"x2"`
	Y2    float64   `json:"y2"`
	Color string    `json:"color"`
	Width float64   `json:"width"`
	Dash  []float64 `json:"dash,omitempty"`
}

// Circle is a stroked circle, filled with FillColor when it is set.
// Shapes with a fill and no Color are filled only.
type Circle struct {
	CX        float64 `json:"cx"`
	CY        float64 `json:"cy"`
	Radius    float64 `json:"radius"`
	Color     string  `json:"color"`
	FillColor string  `json:"fill,omitempty"`
}

// Rect is a stroked rectangle with its origin at the top-left, filled with
// FillColor when it is set.
type Rect struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	W         float64 `json:"width"`
	H         float64 `json:"height"`
	Color     string  `json:"color"`
	FillColor string  `json:"fill,omitempty"`
}

// Anchor is the horizontal alignment of a text run relative to its X.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
)

// Text is a single line of text. Y is the baseline. Rotate turns the run
// about (X, Y), in degrees clockwise.
type Text struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Font   string  `json:"font"`
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
	Bold   bool    `json:"bold,omitempty"`
	Anchor Anchor  `json:"anchor,omitempty"`
	Rotate float64 `json:"rotate,omitempty"`
}

// Point is a filled dot.
type Point struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  string  `json:"color"`
	Radius float64 `json:"radius"`
}

// Arc is a stroked circular arc. Angles are radians, clockwise from +x.
type Arc struct {
	CX         float64 `json:"cx"`
	CY         float64 `json:"cy"`
	Radius     float64 `json:"radius"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	Color      string  `json:"color"`
	Width      float64 `json:"width"`
}

// Polygon is a stroked closed path, filled with FillColor when it is set.
type Polygon struct {
	Points    [][2]float64 `json:"points"`
	Color     string       `json:"color"`
	FillColor string       `json:"fill,omitempty"`
}

// Polyline is a stroked open path. Curves arrive here already flattened.
type Polyline struct {
	Points [][2]float64 `json:"points"`
	Color  string       `json:"color"`
	Width  float64      `json:"width"`
}

func (Fill) Op() Op     { return OpFill }
func (Clear) Op() Op    { return OpClear }
func (Line) Op() Op     { return OpLine }
func (Circle) Op() Op   { return OpCircle }
func (Rect) Op() Op     { return OpRect }
func (Text) Op() Op     { return OpText }
func (Point) Op() Op    { return OpPoint }
func (Arc) Op() Op      { return OpArc }
func (Polygon) Op() Op  { return OpPolygon }
func (Polyline) Op() Op { return OpPolyline }

// Default canvas geometry used before a history frames the canvas.
const (
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultBackground = "#111"

	// MaxSize bounds canvas width and height. Word cloud search time and
	// raster memory both grow with the canvas.
	MaxSize = 8192
)

// Scene is an ordered command list plus the canvas frame it draws into.
type Scene struct {
	Width      float64
	Height     float64
	Background string
	Name       string
	Commands   []Command
}

// New returns an empty scene with the given frame.
func New(width, height float64, background string) *Scene {
	return &Scene{Width: width, Height: height, Background: background}
}

// Append adds commands to the end of the scene.
func (s *Scene) Append(cmds ...Command) {
	s.Commands = append(s.Commands, cmds...)
}

// Reset drops every command, keeping the frame.
func (s *Scene) Reset() {
	s.Commands = nil
}

// Len returns the number of commands.
func (s *Scene) Len() int { return len(s.Commands) }

// =============================================================================
// JSON
// =============================================================================

type sceneJSON struct {
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Background string            `json:"background"`
	Name       string            `json:"name,omitempty"`
	Commands   []json.RawMessage `json:"commands"`
}

type envelope struct {
	Op Op `json:"op"`
}

// MarshalJSON encodes the scene with every command tagged by its op.
func (s Scene) MarshalJSON() ([]byte, error) {
	out := sceneJSON{
		Width:      s.Width,
		Height:     s.Height,
		Background: s.Background,
		Name:       s.Name,
		Commands:   make([]json.RawMessage, 0, len(s.Commands)),
	}
	for _, c := range s.Commands {
		raw, err := marshalCommand(c)
		if err != nil {
			return nil, err
		}
		out.Commands = append(out.Commands, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a scene written by MarshalJSON.
func (s *Scene) UnmarshalJSON(data []byte) error {
	var in sceneJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Scene{Width: in.Width, Height: in.Height, Background: in.Background, Name: in.Name}
	for i, raw := range in.Commands {
		c, err := unmarshalCommand(raw)
		if err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
		s.Commands = append(s.Commands, c)
	}
	return nil
}

func marshalCommand(c Command) (json.RawMessage, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	tag, _ := json.Marshal(envelope{Op: c.Op()})
	if string(body) == "{}" {
		return tag, nil
	}
	// Splice {"op":"..."} and the command body into one object.
	merged := make([]byte, 0, len(tag)+len(body))
	merged = append(merged, tag[:len(tag)-1]...)
	merged = append(merged, ',')
	merged = append(merged, body[1:]...)
	return merged, nil
}

func unmarshalCommand(raw json.RawMessage) (Command, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.Op {
	case OpFill:
		return decode[Fill](raw)
	case OpClear:
		return Clear{}, nil
	case OpLine:
		return decode[Line](raw)
	case OpCircle:
		return decode[Circle](raw)
	case OpRect:
		return decode[Rect](raw)
	case OpText:
		return decode[Text](raw)
	case OpPoint:
		return decode[Point](raw)
	case OpArc:
		return decode[Arc](raw)
	case OpPolygon:
		return decode[Polygon](raw)
	case OpPolyline:
		return decode[Polyline](raw)
	default:
		return nil, fmt.Errorf("unknown op %q", env.Op)
	}
}

func decode[T Command](raw json.RawMessage) (Command, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Visible returns the commands that survive the last Clear. Earlier
// commands, the background Fill included, were erased and have no effect on
// the final image: a canvas is transparent after a clear.
func (s *Scene) Visible() []Command {
	for i := len(s.Commands) - 1; i >= 0; i-- {
		if s.Commands[i].Op() == OpClear {
			return s.Commands[i+1:]
		}
	}
	return s.Commands
}
