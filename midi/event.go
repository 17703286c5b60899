package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// parseNote decodes note on/off. A note on with velocity 0 is a note off.
func parseNote(msg gomidi.Message) (NoteEvent, bool) {
	var channel, note, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity):
		return NoteEvent{Note: note, Velocity: velocity, Channel: channel, On: velocity > 0}, true
	case msg.GetNoteOff(&channel, &note, &velocity):
		return NoteEvent{Note: note, Velocity: velocity, Channel: channel}, true
	}
	return NoteEvent{}, false
}

// parsePad decodes a Launchpad message into a pad event. Grid pads and the
// side column send notes; the top row sends CCs.
func parsePad(msg gomidi.Message) (PadEvent, bool) {
	if ev, ok := parseNote(msg); ok {
		row, col := noteToRowCol(ev.Note)
		if row < 0 {
			return PadEvent{}, false
		}
		return PadEvent{Row: row, Col: col, Velocity: ev.Velocity, Pressed: ev.On}, true
	}

	var channel, cc, value uint8
	if msg.GetControlChange(&channel, &cc, &value) {
		row, col := ccToRowCol(cc)
		if row < 0 {
			return PadEvent{}, false
		}
		return PadEvent{Row: row, Col: col, Velocity: value, Pressed: value > 0}, true
	}
	return PadEvent{}, false
}

// send delivers ev without blocking the driver callback; events are dropped
// when the consumer falls behind.
func send[T any](ch chan<- T, ev T) {
	select {
	case ch <- ev:
	default:
	}
}
