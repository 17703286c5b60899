package synth

import (
	"math"
	"time"
)

// gain scales the sum of its inputs. Its level can follow an exponential
// ramp measured in rendered frames.
type gain struct {
	g  *Graph
	id int
	inputs

	level float64
	bus   bool // never finishes

	ramping   bool
	from, to  float64
	rampStart uint64
	rampLen   uint64

	m memo
}

func (a *gain) NodeID() int { return a.id }
func (a *gain) owner() *Graph { return a.g }

func (a *gain) finished() bool {
	return !a.bus && a.allFinished()
}

func (a *gain) valueAt(frame uint64) float64 {
	if !a.ramping {
		return a.level
	}
	if frame <= a.rampStart {
		return a.from
	}
	if frame >= a.rampStart+a.rampLen {
		return a.to
	}
	t := float64(frame-a.rampStart) / float64(a.rampLen)
	return a.from * math.Pow(a.to/a.from, t)
}

func (a *gain) process(frame uint64) float64 {
	if v, ok := a.m.get(frame); ok {
		return v
	}
	level := a.valueAt(frame)
	if a.ramping && frame >= a.rampStart+a.rampLen {
		a.level = a.to
		a.ramping = false
	}
	return a.m.set(frame, a.sum(frame)*level)
}

func (a *gain) SetValueNow(v float64) {
	a.g.mu.Lock()
	a.level = v
	a.ramping = false
	a.g.mu.Unlock()
}

func (a *gain) Value() float64 {
	a.g.mu.Lock()
	defer a.g.mu.Unlock()
	return a.valueAt(a.g.frame)
}

// RampExponential starts an exponential ramp from the current value. An
// exponential curve cannot cross zero, so both ends are kept positive.
func (a *gain) RampExponential(target float64, d time.Duration) {
	const floor = 1e-4

	a.g.mu.Lock()
	defer a.g.mu.Unlock()
	from := a.valueAt(a.g.frame)
	a.level = from
	a.from = math.Max(from, floor)
	a.to = math.Max(target, floor)
	a.rampStart = a.g.frame
	a.rampLen = a.g.frames(d)
	a.ramping = true
}
