// Package analysis computes the frequency snapshot drawn as spectrum bars.
// An Analyzer taps the rendered output into a ring buffer and transforms
// the most recent window on demand.
package analysis

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// FFTSize is the analysis window length.
	FFTSize = 256
	// Bins is the number of magnitudes in a snapshot.
	Bins = FFTSize / 2

	minDecibels = -100.0
	maxDecibels = -30.0
	smoothing   = 0.8
)

// Analyzer keeps the last FFTSize samples it was given.
type Analyzer struct {
	mu       sync.Mutex
	ring     [FFTSize]float64
	pos      int
	smoothed [Bins]float64
	window   [FFTSize]float64
}

func New() *Analyzer {
	a := &Analyzer{}
	for i := range a.window {
		a.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(FFTSize)))
	}
	return a
}

// Tap stores a rendered block.
func (a *Analyzer) Tap(block []float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(block) > FFTSize {
		block = block[len(block)-FFTSize:]
	}
	for _, s := range block {
		a.ring[a.pos] = float64(s)
		a.pos = (a.pos + 1) % FFTSize
	}
}

// Snapshot returns Bins magnitudes scaled to 0..255, lowest frequency
// first. Successive snapshots are smoothed over time.
func (a *Analyzer) Snapshot() []uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()

	frame := make([]float64, FFTSize)
	for i := range frame {
		frame[i] = a.ring[(a.pos+i)%FFTSize] * a.window[i]
	}
	spectrum := fft.FFTReal(frame)

	out := make([]uint8, Bins)
	for i := range out {
		mag := cmplx.Abs(spectrum[i]) / FFTSize
		a.smoothed[i] = smoothing*a.smoothed[i] + (1-smoothing)*mag
		out[i] = toByte(a.smoothed[i])
	}
	return out
}

func toByte(mag float64) uint8 {
	if mag <= 0 {
		return 0
	}
	db := 20 * math.Log10(mag)
	v := (db - minDecibels) / (maxDecibels - minDecibels) * 255
	return uint8(math.Max(0, math.Min(255, v)))
}
