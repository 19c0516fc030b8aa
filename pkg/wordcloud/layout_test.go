package wordcloud

import (
	"fmt"
	"reflect"
	"testing"
)

var mono = FixedMeasurer(0.6)

func TestFontSize(t *testing.T) {
	tests := []struct {
		name          string
		value, lo, hi float64
		want          float64
	}{
		{"minimum", 1, 1, 11, 14},
		{"maximum", 11, 1, 11, 50},
		{"midpoint", 6, 1, 11, 32},
		{"degenerate range", 10, 10, 10, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FontSize(tt.value, tt.lo, tt.hi, 14, 50); got != tt.want {
				t.Errorf("FontSize(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestOrderStable(t *testing.T) {
	words := []Word{
		{"a", 5}, {"b", 10}, {"c", 5}, {"d", 10}, {"e", 1},
	}
	got := Order(words)
	want := []int{1, 3, 0, 2, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Order() = %v, want %v", got, want)
	}
}

func TestLayoutMalformedInput(t *testing.T) {
	frame := NewFrame(800, 600, false)
	tests := []struct {
		name   string
		texts  []string
		values []float64
		color  string
	}{
		{"empty", nil, nil, "#4ba3ff"},
		{"length mismatch", []string{"a", "b"}, []float64{1}, "#4ba3ff"},
		{"missing color", []string{"a"}, []float64{1}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Layout(tt.texts, tt.values, tt.color, frame, mono)
			if len(res.Words) != 0 || len(res.Dropped) != 0 {
				t.Errorf("Layout() = %+v, want empty result", res)
			}
		})
	}
}

func TestLayoutSingleWord(t *testing.T) {
	frame := NewFrame(800, 600, false)
	res := Layout([]string{"hello"}, []float64{10}, "#808080", frame, mono)

	if len(res.Words) != 1 {
		t.Fatalf("placed %d words, want 1", len(res.Words))
	}
	w := res.Words[0]
	if w.FontSize != DefaultMinSize {
		t.Errorf("FontSize = %v, want %v", w.FontSize, DefaultMinSize)
	}
	wantW := 5 * 0.6 * DefaultMinSize
	if w.Width != wantW || w.Height != DefaultMinSize {
		t.Errorf("box = %vx%v, want %vx%v", w.Width, w.Height, wantW, DefaultMinSize)
	}
	if cx, cy := w.X+w.Width/2, w.Y+w.Height/2; cx != 400 || cy != 300 {
		t.Errorf("center = (%v, %v), want (400, 300)", cx, cy)
	}
	if w.Color != "#808080" {
		t.Errorf("Color = %q, want base color", w.Color)
	}
}

func TestLayoutPriority(t *testing.T) {
	frame := NewFrame(800, 600, false)
	res := Layout([]string{"small", "large"}, []float64{10, 100}, "#4ba3ff", frame, mono)

	if len(res.Words) != 2 {
		t.Fatalf("placed %d words, want 2", len(res.Words))
	}
	if res.Words[0].Text != "large" {
		t.Errorf("first placed = %q, want the larger value", res.Words[0].Text)
	}
	if res.Words[0].FontSize != DefaultMaxSize || res.Words[1].FontSize != DefaultMinSize {
		t.Errorf("font sizes = %v, %v", res.Words[0].FontSize, res.Words[1].FontSize)
	}
	large := res.Words[0]
	if cx := large.X + large.Width/2; cx != 400 {
		t.Errorf("larger word should claim the center, got center x %v", cx)
	}
}

func TestLayoutInvariants(t *testing.T) {
	texts, values := sampleWords(60)
	frames := []Frame{
		NewFrame(800, 600, false),
		NewFrame(800, 600, true),
		NewFrame(400, 800, true),
		{Width: 300, Height: 200, Margin: 10},
	}

	for _, frame := range frames {
		t.Run(fmt.Sprintf("%vx%v+%v", frame.Width, frame.Height, frame.TitleBand), func(t *testing.T) {
			res := Layout(texts, values, "#4ba3ff", frame, mono)
			if len(res.Words)+len(res.Dropped) != len(texts) {
				t.Errorf("placed %d + dropped %d != %d", len(res.Words), len(res.Dropped), len(texts))
			}
			assertNoOverlap(t, res.Words)
			assertInside(t, frame, res.Words)
		})
	}
}

func TestLayoutOverflow(t *testing.T) {
	texts := make([]string, 50)
	values := make([]float64, 50)
	for i := range texts {
		texts[i] = fmt.Sprintf("word%02d", i)
		values[i] = float64(i + 1)
	}
	frame := Frame{Width: 100, Height: 100, Margin: 5}

	res := Layout(texts, values, "#4ba3ff", frame, mono)
	if len(res.Words) >= len(texts) {
		t.Fatalf("placed %d words in a 100x100 canvas, expected drops", len(res.Words))
	}
	if len(res.Dropped) == 0 {
		t.Error("dropped words should be reported")
	}
	assertNoOverlap(t, res.Words)
	assertInside(t, frame, res.Words)
}

func TestLayoutDeterministic(t *testing.T) {
	texts, values := sampleWords(40)
	frame := NewFrame(640, 480, true)

	first := Layout(texts, values, "#e74c3c", frame, mono)
	second := Layout(texts, values, "#e74c3c", frame, mono)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs should produce identical layouts")
	}
}

func TestLayoutOptions(t *testing.T) {
	frame := NewFrame(800, 600, false)
	res := Layout([]string{"a", "b"}, []float64{1, 2}, "#4ba3ff", frame, mono,
		WithFontRange(10, 20), WithSpiral(0.5, 2))

	if len(res.Words) != 2 {
		t.Fatalf("placed %d words, want 2", len(res.Words))
	}
	if res.Words[0].FontSize != 20 || res.Words[1].FontSize != 10 {
		t.Errorf("font sizes = %v, %v, want 20, 10", res.Words[0].FontSize, res.Words[1].FontSize)
	}
	assertNoOverlap(t, res.Words)
}

func TestLayoutColorsFollowInputOrder(t *testing.T) {
	frame := NewFrame(800, 600, false)
	colors := []string{"#111111", "#222222"}
	res := Place([]Word{{"first", 1}, {"second", 2}}, colors, frame, mono)

	byText := map[string]string{}
	for _, w := range res.Words {
		byText[w.Text] = w.Color
	}
	if byText["first"] != "#111111" || byText["second"] != "#222222" {
		t.Errorf("colors = %v, want colors bound to input position", byText)
	}
}

func sampleWords(n int) ([]string, []float64) {
	texts := make([]string, n)
	values := make([]float64, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("w%d", i) + string(rune('a'+i%26))
		values[i] = float64((i*37)%101 + 1)
	}
	return texts, values
}

func assertNoOverlap(t *testing.T, words []PlacedWord) {
	t.Helper()
	for i := range words {
		for j := i + 1; j < len(words); j++ {
			if words[i].Rect().Intersects(words[j].Rect()) {
				t.Errorf("%q overlaps %q", words[i].Text, words[j].Text)
			}
		}
	}
}

func assertInside(t *testing.T, f Frame, words []PlacedWord) {
	t.Helper()
	for _, w := range words {
		r := w.Rect()
		if r.X < f.Margin || r.Right() > f.Width-f.Margin ||
			r.Y < f.Margin+f.TitleBand || r.Bottom() > f.Height-f.Margin {
			t.Errorf("%q at %+v escapes frame %+v", w.Text, r, f)
		}
	}
}
