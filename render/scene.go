package render

import (
	"sync"
	"time"

	"soundspace/input"
	"soundspace/scale"
)

// Scene collects what the inputs report and turns it into frames. It is
// the input.Presenter shared by every adapter.
type Scene struct {
	mu        sync.Mutex
	particles *Particles
	pos       input.Position
	seen      bool
}

func NewScene(p *Particles) *Scene {
	return &Scene{particles: p}
}

func (s *Scene) Move(pos input.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos, s.seen = pos, true
}

func (s *Scene) Burst(pos input.Position) {
	if s.particles != nil {
		s.particles.Burst(pos.X, pos.Y, pos.Width)
	}
}

// Last is the most recent reported position.
func (s *Scene) Last() (input.Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos, s.seen
}

// Frame builds a w x h frame for the current scale. Positions reported on
// a surface of another size are rescaled; before any input the focus is
// the centre.
func (s *Scene) Frame(w, h int, sc scale.Scale, active bool, spectrum []uint8, now time.Time) Frame {
	pos, seen := s.Last()
	f := Frame{
		Width:    w,
		Height:   h,
		X:        float64(w) / 2,
		Y:        float64(h) / 2,
		Count:    len(sc),
		Labels:   sc.Names(),
		Active:   active,
		Now:      now,
		Spectrum: spectrum,
	}
	if !seen {
		return f
	}
	f.X, f.Y = pos.X, pos.Y
	if pos.Width > 0 && pos.Height > 0 {
		f.X = pos.X / pos.Width * float64(w)
		f.Y = pos.Y / pos.Height * float64(h)
	}
	f.Params = pos.Params
	f.Note = pos.Note
	f.Index = min(pos.Index, max(len(sc)-1, 0))
	return f
}
