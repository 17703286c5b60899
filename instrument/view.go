package instrument

import (
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"soundspace/recorder"
	"soundspace/render"
	"soundspace/voice"
)

// Status is a snapshot of everything the UI shows besides the canvas.
type Status struct {
	Note   string // last started note, empty when nothing sounds
	Voices int
	X, Y   int
	Moved  bool

	Scale    string
	Waveform voice.Waveform
	Volume   float64
	Delay    float64
	Reverb   float64
	Audio    bool

	Pattern string
	Playing bool
	Tempo   int

	Recording   bool
	Elapsed     time.Duration
	CanRecord   bool
	HasTake     bool
	TakePlaying bool
	TakeLength  time.Duration

	Controller string
}

func (i *Instrument) Status() Status {
	s := Status{
		Voices:      i.Voices.Len(),
		Scale:       i.Scales.Label(),
		Waveform:    i.Graph.Waveform(),
		Volume:      i.Graph.Volume(),
		Delay:       i.Graph.Delay(),
		Reverb:      i.Graph.Reverb(),
		Audio:       i.output != nil,
		Pattern:     i.Patterns.Library().Name(i.Patterns.Selected()),
		Playing:     i.Patterns.Playing(),
		Tempo:       i.Patterns.Tempo(),
		Recording:   i.Recorder.Recording(),
		Elapsed:     i.Recorder.Elapsed(),
		CanRecord:   i.Recorder.Available(),
		TakePlaying: i.TakePlaying(),
	}
	if take := i.Recorder.Take(); take != nil {
		s.HasTake = true
		s.TakeLength = take.Duration()
	}
	if pos, ok := i.Scene.Last(); ok {
		s.X, s.Y, s.Moved = int(pos.X), int(pos.Y), true
	}

	i.mu.Lock()
	if s.Voices > 0 {
		s.Note = i.lastNote
	}
	if i.controller != nil {
		s.Controller = i.controller.ID()
	}
	i.mu.Unlock()
	return s
}

// RecordingClock is the MM:SS shown while recording.
func (s Status) RecordingClock() string {
	return recorder.FormatElapsed(s.Elapsed)
}

func (s Status) Coordinates() string {
	if !s.Moved {
		return "X: - Y: -"
	}
	return fmt.Sprintf("X: %d Y: %d", s.X, s.Y)
}

// Canvas renders the playing surface at w x h cells over bg.
func (i *Instrument) Canvas(w, h int, bg colorful.Color) string {
	var spectrum []uint8
	if i.cfg.Audio.Enhanced {
		spectrum = i.Analyzer.Snapshot()
	}
	active := i.Voices.Len() > 0
	f := i.Scene.Frame(w, h, i.Scales.Scale(), active, spectrum, i.clk.Now())
	return render.Render(i.renderer, bg, f)
}
