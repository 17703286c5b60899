package instrument

import (
	"soundspace/config"
	"soundspace/debug"
)

// Effect steps used by the +/- style controls.
const (
	VolumeStep = 0.05
	DelayStep  = 0.25
	ReverbStep = 0.05
	TempoStep  = 5
)

// silence ends pattern playback and every sounding note, as any change of
// scale does.
func (i *Instrument) silence() {
	i.Patterns.Stop()
	i.Keys.ReleaseAll()
	i.Touch.Cancel()
	i.Voices.StopAll()
}

// SetScale switches the scale kind.
func (i *Instrument) SetScale(kind string) error {
	i.silence()
	if err := i.Scales.SetKind(kind); err != nil {
		return err
	}
	i.cfg.Music.Scale = kind
	i.changed()
	return nil
}

// CycleScale moves to the next scale kind.
func (i *Instrument) CycleScale() {
	i.silence()
	if err := i.Scales.CycleKind(1); err != nil {
		debug.Log("scale", "cycle: %v", err)
	}
	i.cfg.Music.Scale = i.Scales.Kind()
	i.changed()
}

// SetKey switches the root note.
func (i *Instrument) SetKey(key string) error {
	i.silence()
	if err := i.Scales.SetKey(key); err != nil {
		return err
	}
	i.cfg.Music.Key = key
	i.changed()
	return nil
}

// CycleKey moves the root up a semitone, wrapping after B.
func (i *Instrument) CycleKey() {
	i.silence()
	if err := i.Scales.CycleKey(1); err != nil {
		debug.Log("scale", "cycle key: %v", err)
	}
	i.cfg.Music.Key = i.Scales.Key()
	i.changed()
}

// ShiftOctave moves the scale by delta octaves. Shifts past the range are
// ignored and leave playback alone.
func (i *Instrument) ShiftOctave(delta int) bool {
	cur := i.Scales.Octave() + delta
	if cur < config.MinOctave || cur > config.MaxOctave {
		return false
	}
	i.silence()
	i.Scales.ShiftOctave(delta)
	i.cfg.Music.Octave = i.Scales.Octave()
	i.changed()
	return true
}

// CycleWaveform selects the next oscillator shape for new voices. Pattern
// playback stops; notes already sounding keep their shape.
func (i *Instrument) CycleWaveform() {
	i.Patterns.Stop()
	w := i.Graph.Waveform().Next()
	i.Graph.SetWaveform(w)
	i.cfg.Audio.Waveform = w.String()
	debug.Log("audio", "waveform %s", w)
	i.notifyUpdate()
}

func (i *Instrument) AdjustVolume(delta float64) {
	i.Graph.SetVolume(i.Graph.Volume() + delta)
	i.cfg.Audio.Volume = i.Graph.Volume()
	i.notifyUpdate()
}

func (i *Instrument) AdjustDelay(delta float64) {
	i.Graph.SetDelay(i.Graph.Delay() + delta)
	i.cfg.Audio.Delay = i.Graph.Delay()
	i.notifyUpdate()
}

func (i *Instrument) AdjustReverb(delta float64) {
	i.Graph.SetReverb(i.Graph.Reverb() + delta)
	i.cfg.Audio.Reverb = i.Graph.Reverb()
	i.notifyUpdate()
}

// CyclePattern selects the next pattern. It takes effect on the next play.
func (i *Instrument) CyclePattern() string {
	id := i.Patterns.CycleSelection()
	i.cfg.UI.LastPattern = id
	i.notifyUpdate()
	return id
}

// TogglePattern starts or stops the selected pattern. Starting with no
// selection returns an error carrying a message for the user.
func (i *Instrument) TogglePattern() error {
	err := i.Patterns.Toggle()
	i.markLEDs()
	i.notifyUpdate()
	return err
}

func (i *Instrument) AdjustTempo(delta int) int {
	bpm := i.Patterns.SetTempo(i.Patterns.Tempo() + delta)
	i.cfg.Music.Tempo = bpm
	i.notifyUpdate()
	return bpm
}

func (i *Instrument) changed() {
	debug.Log("scale", "now %s", i.Scales.Label())
	i.markLEDs()
	i.notifyUpdate()
}
