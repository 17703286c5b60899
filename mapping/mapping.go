// Package mapping turns positions on the playing surface into notes and
// timbre parameters. Horizontal position picks the note; vertical position
// shapes the sound.
package mapping

import (
	"math"

	"soundspace/scale"
)

// TimbreParameters are the continuous controls derived from y.
type TimbreParameters struct {
	Detune     float64 // cents, -50 at the top, +50 at the bottom
	Brightness float64 // 1..2
	Modulation float64 // 0..5
}

// FilterCutoff is the lowpass cutoff in Hz for these parameters.
func (p TimbreParameters) FilterCutoff() float64 {
	return 20000 - p.Modulation*5000
}

// Center is the parameter set for the vertical middle of the surface.
var Center = ParametersForY(0.5, 1)

// IndexForX returns the bucket x falls into when width is split into n
// equal slices. The result is always in [0, n-1]; n must be positive.
func IndexForX(x, width float64, n int) int {
	if width <= 0 || n <= 1 || x <= 0 {
		return 0
	}
	i := int(math.Floor(x / width * float64(n)))
	return min(i, n-1)
}

// NoteForX returns the note under x and its index in s.
func NoteForX(x, width float64, s scale.Scale) (scale.Note, int) {
	i := IndexForX(x, width, len(s))
	return s[i], i
}

// ParametersForY maps y in [0, height] to timbre parameters. Values outside
// the surface are clamped to its edges.
func ParametersForY(y, height float64) TimbreParameters {
	n := 0.5
	if height > 0 {
		n = math.Max(0, math.Min(1, y/height))
	}
	return TimbreParameters{
		Detune:     (n - 0.5) * 100,
		Brightness: 1 + n,
		Modulation: n * 5,
	}
}

// XForIndex is the x a note would be played at when it has no pointer
// position of its own, used to draw keyboard and pattern notes.
func XForIndex(index, count int, width float64) float64 {
	if count <= 1 {
		return width / 2
	}
	return float64(index) / float64(count-1) * width
}
