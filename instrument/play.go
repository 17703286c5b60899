package instrument

import (
	"fmt"
	"strings"

	"soundspace/config"
	"soundspace/debug"
	"soundspace/midi"
)

// DefaultBaseNote is the MIDI note played as the first scale degree.
const DefaultBaseNote = 60

func (i *Instrument) logErr(source string, err error) {
	if err != nil {
		debug.Log("input", "%s: %v", source, err)
	}
}

// Press, Drag and Lift are the mouse on the canvas, in cells.
func (i *Instrument) Press(x, y float64) {
	i.logErr("pointer", i.Pointer.Press(x, y))
	i.notifyUpdate()
}

func (i *Instrument) Drag(x, y float64) {
	i.logErr("pointer", i.Pointer.Move(x, y))
	i.notifyUpdate()
}

func (i *Instrument) Lift() {
	i.Pointer.Release()
	i.notifyUpdate()
}

// Key plays a mapped computer key and reports whether it was mapped.
func (i *Instrument) Key(key string) bool {
	ok, err := i.Keys.Press(key)
	i.logErr("key "+key, err)
	return ok
}

// HandlePad routes a Launchpad pad. The 8x8 grid is a touch surface with
// row 0 at the bottom. It plays one note at a time: the latest pad pressed
// takes over, and releasing an earlier pad does nothing. The top row holds
// the scale controls.
func (i *Instrument) HandlePad(ev midi.PadEvent) {
	switch {
	case ev.Row < midi.GridSize && ev.Col < midi.GridSize:
		id := ev.Row*midi.GridSize + ev.Col
		if ev.Pressed {
			x := float64(ev.Col) + 0.5
			y := float64(midi.GridSize-1-ev.Row) + 0.5
			i.logErr("pad", i.Touch.Begin(id, x, y))
		} else {
			i.Touch.End(id)
		}
		i.markLEDs()
	case ev.Row == 8 && ev.Pressed:
		i.handleTopRow(ev.Col)
	case ev.Col == 8 && ev.Pressed && ev.Row == 0:
		i.logErr("pad", i.TogglePattern())
	}
}

func (i *Instrument) handleTopRow(col int) {
	switch col {
	case 0:
		i.ShiftOctave(-1)
	case 1:
		i.ShiftOctave(1)
	case 2:
		i.CycleScale()
	case 3:
		i.CycleKey()
	case 4:
		i.CycleWaveform()
	case 5:
		i.CyclePattern()
	case 6:
		i.AdjustTempo(-TempoStep)
	case 7:
		i.AdjustTempo(TempoStep)
	}
}

// HandleNote routes a MIDI keyboard note onto the keyboard adapter. Notes
// count up the scale from the controller's base note.
func (i *Instrument) HandleNote(ctrlID string, ev midi.NoteEvent) {
	base := DefaultBaseNote
	if cc := i.cfg.FindController(ctrlID); cc != nil && cc.BaseNote > 0 {
		base = cc.BaseNote
	}
	id := fmt.Sprintf("midi:%d", ev.Note)
	if ev.On {
		i.logErr(ctrlID, i.Keys.PressIndex(id, int(ev.Note)-base))
	} else {
		i.Keys.Release(id)
	}
}

// Attach starts routing a newly connected controller's events. Controllers
// saved with auto-connect off are ignored; new ones are remembered.
func (i *Instrument) Attach(c midi.Controller) bool {
	saved := i.cfg.FindController(c.ID())
	if saved == nil {
		typ := config.ControllerKeyboard
		if c.Type() == midi.ControllerLaunchpad {
			typ = config.ControllerLaunchpadX
			if strings.Contains(strings.ToLower(c.ID()), "mini") {
				typ = config.ControllerLaunchpadMini
			}
		}
		i.cfg.AddController(config.ControllerConfig{PortName: c.ID(), Type: typ, AutoConnect: true})
	} else if !saved.AutoConnect {
		debug.Log("midi", "skipping %s (autoConnect off)", c.ID())
		return false
	}

	switch c.Type() {
	case midi.ControllerLaunchpad:
		i.SetController(c)
		go func() {
			for ev := range c.PadEvents() {
				i.HandlePad(ev)
			}
		}()
	case midi.ControllerKeyboard:
		go func() {
			for ev := range c.NoteEvents() {
				i.HandleNote(c.ID(), ev)
			}
		}()
	}
	i.notifyUpdate()
	return true
}

// Detach forgets a disconnected controller.
func (i *Instrument) Detach(id string) {
	i.mu.Lock()
	lp := i.controller != nil && i.controller.ID() == id
	i.mu.Unlock()
	if lp {
		i.Touch.Cancel()
		i.SetController(nil)
	}
	i.notifyUpdate()
}
