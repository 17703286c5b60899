package voice

import (
	"soundspace/clock"
	"soundspace/mapping"
	"soundspace/scale"
)

// State is a voice's position in its lifecycle. A voice that finished
// releasing is removed from the registry and has no state.
type State int

const (
	Sounding State = iota
	Releasing
)

func (s State) String() string {
	if s == Releasing {
		return "releasing"
	}
	return "sounding"
}

// Voice is one sounding note and the device nodes that produce it.
type Voice struct {
	Note      scale.Note
	Params    mapping.TimbreParameters
	Generator Generator
	Amplitude Amplitude
	Filter    Filter      // nil unless a FilterLayer is in the chain
	Sends     []Amplitude // wet gains feeding effect buses

	state   State
	release clock.Timer
	// gen changes whenever a pending release is cancelled so that a stale
	// release callback can tell it no longer applies.
	gen uint64
}

func (v *Voice) State() State {
	return v.state
}

// Snapshot is a read-only copy of a voice's observable state.
type Snapshot struct {
	Note   scale.Note
	Params mapping.TimbreParameters
	State  State
}

func (v *Voice) snapshot() Snapshot {
	return Snapshot{Note: v.Note, Params: v.Params, State: v.state}
}
