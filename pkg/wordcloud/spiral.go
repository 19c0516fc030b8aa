package wordcloud

import (
	"iter"
	"math"
)

// Cursor is the search state of a single word on its spiral.
type Cursor struct {
	Angle  float64
	Radius float64
}

// Advance moves the cursor one step outward.
func (c Cursor) Advance(angleStep, growth float64) Cursor {
	return Cursor{
		Angle:  c.Angle + angleStep,
		Radius: c.Radius + growth*angleStep,
	}
}

// Candidate is a point on the spiral together with the cursor that produced it.
type Candidate struct {
	X, Y float64
	Cursor
}

// Spiral yields the points of an Archimedean spiral around (originX, originY).
// The first point is the origin itself; every following point advances the
// angle by angleStep and the radius by growth*angleStep.
//
// The sequence is infinite. Consumers stop ranging once the radius exceeds
// whatever bound they care about. Each call starts from a fresh cursor.
func Spiral(originX, originY, angleStep, growth float64) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		var c Cursor
		for {
			p := Candidate{
				X:      originX + c.Radius*math.Cos(c.Angle),
				Y:      originY + c.Radius*math.Sin(c.Angle),
				Cursor: c,
			}
			if !yield(p) {
				return
			}
			c = c.Advance(angleStep, growth)
		}
	}
}
