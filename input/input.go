// Package input turns raw pointer, touch and key events into voice starts,
// updates and stops. Each adapter keeps its own held state; they share a
// voice controller, so two sources playing the same note drive one voice.
package input

import (
	"soundspace/mapping"
	"soundspace/scale"
)

// Player is the voice lifecycle the adapters drive.
type Player interface {
	Start(note scale.Note, p mapping.TimbreParameters) error
	Update(note scale.Note, p mapping.TimbreParameters)
	Stop(note scale.Note)
}

// Scales provides the scale currently mapped onto the surface.
type Scales interface {
	Scale() scale.Scale
}

// Surface reports the size positions are measured against.
type Surface interface {
	Size() (w, h float64)
}

// Size is a fixed surface.
type Size struct {
	W, H float64
}

func (s Size) Size() (float64, float64) { return s.W, s.H }

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func() (float64, float64)

func (f SurfaceFunc) Size() (float64, float64) { return f() }

// Position is a located input event, as handed to the presentation side.
type Position struct {
	X, Y          float64
	Width, Height float64
	Note          scale.Note
	Index         int
	Count         int
	Params        mapping.TimbreParameters
}

// Presenter receives positions to draw.
type Presenter interface {
	// Move reports where the input currently is.
	Move(pos Position)
	// Burst marks a note starting at pos.
	Burst(pos Position)
}

// NopPresenter draws nothing.
type NopPresenter struct{}

func (NopPresenter) Move(Position)  {}
func (NopPresenter) Burst(Position) {}

// locate maps a surface coordinate to a note and parameters.
func locate(s scale.Scale, surf Surface, x, y float64) Position {
	w, h := surf.Size()
	note, idx := mapping.NoteForX(x, w, s)
	return Position{
		X: x, Y: y, Width: w, Height: h,
		Note: note, Index: idx, Count: len(s),
		Params: mapping.ParametersForY(y, h),
	}
}
