package wordcloud

import (
	"math"
	"testing"
)

func TestSpiralStartsAtOrigin(t *testing.T) {
	for c := range Spiral(100, 50, 0.2, 4) {
		if c.X != 100 || c.Y != 50 || c.Radius != 0 || c.Angle != 0 {
			t.Errorf("first candidate = %+v, want origin", c)
		}
		break
	}
}

func TestSpiralGrowth(t *testing.T) {
	const (
		step   = 0.2
		growth = 4.0
	)
	var got []Candidate
	for c := range Spiral(0, 0, step, growth) {
		got = append(got, c)
		if len(got) == 50 {
			break
		}
	}

	for i := 1; i < len(got); i++ {
		if got[i].Radius <= got[i-1].Radius {
			t.Fatalf("radius not increasing at %d: %v <= %v", i, got[i].Radius, got[i-1].Radius)
		}
		if got[i].Angle <= got[i-1].Angle {
			t.Fatalf("angle not increasing at %d", i)
		}
		wantR := float64(i) * growth * step
		if math.Abs(got[i].Radius-wantR) > 1e-9 {
			t.Errorf("radius[%d] = %v, want %v", i, got[i].Radius, wantR)
		}
		dist := math.Hypot(got[i].X, got[i].Y)
		if math.Abs(dist-got[i].Radius) > 1e-9 {
			t.Errorf("point %d at distance %v, want radius %v", i, dist, got[i].Radius)
		}
	}
}

func TestSpiralRestartable(t *testing.T) {
	seq := Spiral(10, 10, 0.5, 2)
	first := collect(seq, 5)
	second := collect(seq, 5)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("spiral should restart from a fresh cursor: %v vs %v", first[i], second[i])
		}
	}
}

func collect(seq func(func(Candidate) bool), n int) []Candidate {
	var out []Candidate
	for c := range seq {
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out
}
