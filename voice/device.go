package voice

import (
	"fmt"
	"strings"
	"time"
)

// Waveform is the oscillator shape.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

var waveformNames = []string{"sine", "square", "sawtooth", "triangle"}

func (w Waveform) String() string {
	if w < 0 || int(w) >= len(waveformNames) {
		return fmt.Sprintf("waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// Next cycles through the waveforms.
func (w Waveform) Next() Waveform {
	return Waveform((int(w) + 1) % len(waveformNames))
}

// ParseWaveform accepts the lower-case waveform names.
func ParseWaveform(s string) (Waveform, error) {
	for i, name := range waveformNames {
		if strings.EqualFold(s, name) {
			return Waveform(i), nil
		}
	}
	return Sine, fmt.Errorf("unknown waveform %q", s)
}

// DeviceState reports whether the device is producing sound.
type DeviceState int

const (
	Running DeviceState = iota
	Suspended
)

func (s DeviceState) String() string {
	if s == Suspended {
		return "suspended"
	}
	return "running"
}

// Node is anything that can be connected in the device graph.
type Node interface {
	NodeID() int
}

// Generator is a periodic oscillator.
type Generator interface {
	Node
	Start()
	Stop()
	SetDetune(cents float64)
}

// Amplitude is a gain stage with scheduled ramps.
type Amplitude interface {
	Node
	// SetValueNow sets the gain immediately, cancelling any scheduled ramp.
	SetValueNow(v float64)
	// Value is the gain at the current device time.
	Value() float64
	// RampExponential moves the gain to target over d, starting now.
	RampExponential(target float64, d time.Duration)
}

// Filter is a lowpass stage.
type Filter interface {
	Node
	SetCutoff(hz float64)
}

// Sends describes which effect buses a new voice should feed.
type Sends struct {
	Delay  bool    // delay time > 0
	Reverb float64 // wet level, 0 disables the send
}

// Device is the tone-generation device voices are built on.
type Device interface {
	State() DeviceState
	Resume() error

	NewGenerator(w Waveform, freq, detune float64) Generator
	NewAmplitude(level float64) Amplitude
	NewFilter(cutoff float64) Filter
	Connect(from, to Node) error

	Output() Node
	DelayInput() Node
	ReverbInput() Node

	Waveform() Waveform
	Sends() Sends
}
