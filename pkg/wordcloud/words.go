package wordcloud

import (
	"cmp"
	"slices"
)

// Word is one input entry of a word cloud.
type Word struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

// PlacedWord is a word that found room on the canvas. X and Y are the
// top-left corner of its bounding box.
type PlacedWord struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	FontSize float64 `json:"font_size"`
	Color    string  `json:"color"`
}

// Rect returns the bounding box of the word.
func (w PlacedWord) Rect() Rect {
	return Rect{X: w.X, Y: w.Y, W: w.Width, H: w.Height}
}

// Baseline returns the y coordinate text should be drawn at so that its
// glyphs sit on the bottom edge of the box.
func (w PlacedWord) Baseline() float64 { return w.Y + w.Height }

// Measurer reports the rendered width of text at the given font size.
type Measurer interface {
	MeasureText(text string, size float64) float64
}

// MeasurerFunc adapts a plain function to [Measurer].
type MeasurerFunc func(text string, size float64) float64

// MeasureText calls f.
func (f MeasurerFunc) MeasureText(text string, size float64) float64 { return f(text, size) }

// FixedMeasurer approximates a monospace font: every rune advances by
// ratio*size.
func FixedMeasurer(ratio float64) Measurer {
	return MeasurerFunc(func(text string, size float64) float64 {
		return float64(len([]rune(text))) * ratio * size
	})
}

// FontSize maps value linearly from [minValue, maxValue] onto
// [minSize, maxSize]. A degenerate value range maps everything to minSize.
func FontSize(value, minValue, maxValue, minSize, maxSize float64) float64 {
	span := maxValue - minValue
	if span == 0 {
		span = 1
	}
	return minSize + (value-minValue)/span*(maxSize-minSize)
}

// ValueRange returns the smallest and largest value in words.
func ValueRange(words []Word) (lo, hi float64) {
	if len(words) == 0 {
		return 0, 0
	}
	lo, hi = words[0].Value, words[0].Value
	for _, w := range words[1:] {
		lo = min(lo, w.Value)
		hi = max(hi, w.Value)
	}
	return lo, hi
}

// Order returns the indexes of words sorted by value, largest first.
// Words with equal values keep their input order.
func Order(words []Word) []int {
	idx := make([]int, len(words))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(words[b].Value, words[a].Value)
	})
	return idx
}

// Zip pairs texts with values. It returns nil when the sequences are empty or
// differ in length.
func Zip(texts []string, values []float64) []Word {
	if len(texts) == 0 || len(texts) != len(values) {
		return nil
	}
	words := make([]Word, len(texts))
	for i, t := range texts {
		words[i] = Word{Text: t, Value: values[i]}
	}
	return words
}
