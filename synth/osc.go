package synth

import (
	"math"

	"soundspace/voice"
)

// oscillator is a band-limited periodic generator. Square and sawtooth use
// polyBLEP correction at their discontinuities.
type oscillator struct {
	g      *Graph
	id     int
	wave   voice.Waveform
	freq   float64
	detune float64 // cents

	phase   float64
	inc     float64
	started bool
	stopped bool
	m       memo
}

func (o *oscillator) NodeID() int { return o.id }
func (o *oscillator) owner() *Graph { return o.g }
func (o *oscillator) finished() bool { return o.stopped }

func (o *oscillator) Start() {
	o.g.mu.Lock()
	o.started = true
	o.g.mu.Unlock()
}

func (o *oscillator) Stop() {
	o.g.mu.Lock()
	o.stopped = true
	o.g.mu.Unlock()
}

func (o *oscillator) SetDetune(cents float64) {
	o.g.mu.Lock()
	o.detune = cents
	o.retune()
	o.g.mu.Unlock()
}

func (o *oscillator) retune() {
	o.inc = o.freq * math.Pow(2, o.detune/1200) / o.g.rate
}

func (o *oscillator) process(frame uint64) float64 {
	if v, ok := o.m.get(frame); ok {
		return v
	}
	if !o.started || o.stopped {
		return o.m.set(frame, 0)
	}
	v := shape(o.wave, o.phase, o.inc)
	o.phase += o.inc
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}
	return o.m.set(frame, v)
}

func shape(w voice.Waveform, t, dt float64) float64 {
	switch w {
	case voice.Square:
		v := 1.0
		if t >= 0.5 {
			v = -1
		}
		return v + polyBLEP(t, dt) - polyBLEP(math.Mod(t+0.5, 1), dt)
	case voice.Sawtooth:
		return 2*t - 1 - polyBLEP(t, dt)
	case voice.Triangle:
		return 1 - 4*math.Abs(t-0.5)
	default:
		return math.Sin(2 * math.Pi * t)
	}
}

func polyBLEP(t, dt float64) float64 {
	switch {
	case dt <= 0:
		return 0
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}
