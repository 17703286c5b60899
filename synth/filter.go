package synth

import "math"

// lowpass is a second order Butterworth lowpass.
type lowpass struct {
	g  *Graph
	id int
	inputs

	cutoff float64
	q      float64

	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64

	m memo
}

func (f *lowpass) NodeID() int { return f.id }
func (f *lowpass) owner() *Graph { return f.g }
func (f *lowpass) finished() bool { return f.allFinished() }

func (f *lowpass) SetCutoff(hz float64) {
	f.g.mu.Lock()
	f.cutoff = hz
	f.design()
	f.g.mu.Unlock()
}

// Cutoff returns the current cutoff frequency.
func (f *lowpass) Cutoff() float64 {
	f.g.mu.Lock()
	defer f.g.mu.Unlock()
	return f.cutoff
}

func (f *lowpass) design() {
	fc := clamp(f.cutoff, 10, f.g.rate*0.45)
	w0 := 2 * math.Pi * fc / f.g.rate
	alpha := math.Sin(w0) / (2 * f.q)
	cosw := math.Cos(w0)

	a0 := 1 + alpha
	f.b0 = (1 - cosw) / 2 / a0
	f.b1 = (1 - cosw) / a0
	f.b2 = f.b0
	f.a1 = -2 * cosw / a0
	f.a2 = (1 - alpha) / a0
}

func (f *lowpass) process(frame uint64) float64 {
	if v, ok := f.m.get(frame); ok {
		return v
	}
	x := f.sum(frame)
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return f.m.set(frame, y)
}
