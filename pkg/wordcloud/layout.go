package wordcloud

import (
	"github.com/matzehuels/wordcanvas/pkg/palette"
)

// Default sizing and spiral parameters.
const (
	DefaultMinSize   = 14.0
	DefaultMaxSize   = 50.0
	DefaultAngleStep = 0.2
	DefaultGrowth    = 4.0
)

// Option configures a layout pass.
type Option func(*options)

type options struct {
	minSize, maxSize  float64
	angleStep, growth float64
}

func defaultOptions() options {
	return options{
		minSize:   DefaultMinSize,
		maxSize:   DefaultMaxSize,
		angleStep: DefaultAngleStep,
		growth:    DefaultGrowth,
	}
}

// WithFontRange sets the font sizes used for the smallest and largest value.
// Non-positive sizes are ignored.
func WithFontRange(minSize, maxSize float64) Option {
	return func(o *options) {
		if minSize > 0 && maxSize >= minSize {
			o.minSize, o.maxSize = minSize, maxSize
		}
	}
}

// WithSpiral sets the angular step (radians) and radial growth rate of the
// search spiral. Non-positive values are ignored.
func WithSpiral(angleStep, growth float64) Option {
	return func(o *options) {
		if angleStep > 0 && growth > 0 {
			o.angleStep, o.growth = angleStep, growth
		}
	}
}

// Result is the outcome of one layout pass.
type Result struct {
	// Words holds the placed words in processing order.
	Words []PlacedWord `json:"words"`
	// Dropped holds the words the spiral could not fit, in processing order.
	Dropped []Word `json:"dropped,omitempty"`
}

// Layout places texts weighted by values inside frame. Each word is colored
// with a shade of color picked by its input position.
//
// The pass is a no-op, returning an empty Result, when texts is empty, the
// sequences differ in length or color is empty.
func Layout(texts []string, values []float64, color string, frame Frame, m Measurer, opts ...Option) Result {
	words := Zip(texts, values)
	if words == nil || color == "" {
		return Result{}
	}
	return Place(words, palette.Shades(color, len(words)), frame, m, opts...)
}

// Place runs the spiral search for words. colors[i] is the color of
// words[i]; missing colors leave the placed word uncolored.
func Place(words []Word, colors []string, frame Frame, m Measurer, opts ...Option) Result {
	if len(words) == 0 {
		return Result{}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	lo, hi := ValueRange(words)
	p := placer{frame: frame, opts: o}
	var res Result

	for _, i := range Order(words) {
		w := words[i]
		size := FontSize(w.Value, lo, hi, o.minSize, o.maxSize)
		box, ok := p.place(m.MeasureText(w.Text, size), size)
		if !ok {
			res.Dropped = append(res.Dropped, w)
			continue
		}
		pw := PlacedWord{
			Text:     w.Text,
			X:        box.X,
			Y:        box.Y,
			Width:    box.W,
			Height:   box.H,
			FontSize: size,
		}
		if i < len(colors) {
			pw.Color = colors[i]
		}
		res.Words = append(res.Words, pw)
	}
	return res
}

// placer owns the occupancy set of a single pass.
type placer struct {
	frame    Frame
	opts     options
	occupied []Rect
}

// place walks a fresh spiral until a box of the given size fits, recording
// it in the occupancy set. It gives up once the radius reaches the larger
// canvas dimension.
func (p *placer) place(width, height float64) (Rect, bool) {
	bound := max(p.frame.Width, p.frame.Height)
	cx, cy := p.frame.Center()

	for c := range Spiral(cx, cy, p.opts.angleStep, p.opts.growth) {
		if c.Radius >= bound {
			break
		}
		box := Rect{X: c.X - width/2, Y: c.Y - height/2, W: width, H: height}
		if p.frame.Contains(box) && !Overlaps(box, p.occupied) {
			p.occupied = append(p.occupied, box)
			return box, true
		}
	}
	return Rect{}, false
}
