package wordcloud

// Rect is an axis-aligned box with its origin at the top-left corner.
// Coordinates are canvas pixels with y growing downwards.
type Rect struct {
	X, Y float64
	W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Intersects reports whether r and o overlap. Boxes that only touch along an
// edge count as overlapping.
func (r Rect) Intersects(o Rect) bool {
	return !(r.Right() < o.X || o.Right() < r.X ||
		r.Bottom() < o.Y || o.Bottom() < r.Y)
}

// Overlaps reports whether candidate intersects any of the placed boxes.
func Overlaps(candidate Rect, placed []Rect) bool {
	for _, p := range placed {
		if candidate.Intersects(p) {
			return true
		}
	}
	return false
}

// Frame describes the drawable canvas: its pixel size, the margin kept free
// on every side and an extra band reserved below the top margin for a title.
type Frame struct {
	Width     float64
	Height    float64
	Margin    float64
	TitleBand float64
}

// Default reservations used by the word cloud action.
const (
	DefaultMargin    = 40.0
	DefaultTitleBand = 30.0
)

// NewFrame returns a frame with the default margin. The title band is only
// reserved when withTitle is set.
func NewFrame(width, height float64, withTitle bool) Frame {
	f := Frame{Width: width, Height: height, Margin: DefaultMargin}
	if withTitle {
		f.TitleBand = DefaultTitleBand
	}
	return f
}

// Bounds returns the box words must stay inside.
func (f Frame) Bounds() Rect {
	top := f.Margin + f.TitleBand
	return Rect{
		X: f.Margin,
		Y: top,
		W: f.Width - 2*f.Margin,
		H: f.Height - f.Margin - top,
	}
}

// Contains reports whether r lies entirely inside the frame bounds.
func (f Frame) Contains(r Rect) bool {
	b := f.Bounds()
	return r.X >= b.X && r.Y >= b.Y && r.Right() <= b.Right() && r.Bottom() <= b.Bottom()
}

// Center returns the spiral origin.
func (f Frame) Center() (x, y float64) {
	return f.Width / 2, f.Height / 2
}
