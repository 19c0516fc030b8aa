// Package wordcloud lays out weighted words on a canvas by spiral search.
//
// # Overview
//
// A word cloud pass takes parallel sequences of texts and values, a base
// color and a [Frame], and returns the words that could be placed as
// [PlacedWord] boxes. Nothing is painted here: the result is a list of
// geometry decisions that a renderer turns into draw calls.
//
// # Algorithm
//
// Words are processed by value, largest first. Equal values keep their input
// order. Each word gets a font size interpolated linearly between the
// configured minimum and maximum over the value range of the input.
//
// For every word a fresh Archimedean [Spiral] is walked outward from the
// canvas center. The first candidate whose box fits inside the frame and
// does not intersect any previously placed box wins. When the spiral radius
// reaches max(width, height) the word is dropped:
//
//	res := wordcloud.Layout(texts, values, "#4ba3ff", frame, measurer)
//	for _, w := range res.Words {
//	    fmt.Println(w.Text, w.X, w.Y)
//	}
//
// Dropping is a best-effort policy, not an error. [Result.Dropped] lists
// the words that found no room, for diagnostics.
//
// # Determinism
//
// There is no randomness in a pass. The same input, frame, measurer and
// options always produce the same [Result].
//
// # Options
//
//   - [WithFontRange]: minimum and maximum font size (default 14..50)
//   - [WithSpiral]: angular step and radial growth rate (default 0.2, 4)
package wordcloud
