package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"soundspace/widgets"
)

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keyMap struct {
	Waveform   key.Binding
	VolumeDown key.Binding
	VolumeUp   key.Binding
	DelayDown  key.Binding
	DelayUp    key.Binding
	ReverbDown key.Binding
	ReverbUp   key.Binding

	OctaveDown key.Binding
	OctaveUp   key.Binding
	Scale      key.Binding
	Root       key.Binding

	Pattern   key.Binding
	Play      key.Binding
	TempoUp   key.Binding
	TempoDown key.Binding

	Record  key.Binding
	Listen  key.Binding
	Save    key.Binding
	Discard key.Binding

	Pads  key.Binding
	Intro key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Waveform:   Key("waveform", "tab", "b"),
		VolumeDown: Key("volume -", "["),
		VolumeUp:   Key("volume +", "]"),
		DelayDown:  Key("delay -", "9"),
		DelayUp:    Key("delay +", "0"),
		ReverbDown: Key("reverb -", "7"),
		ReverbUp:   Key("reverb +", "8"),

		OctaveDown: Key("octave down", "z"),
		OctaveUp:   Key("octave up", "x"),
		Scale:      Key("next scale", "c"),
		Root:       Key("next key", "v"),

		Pattern:   Key("next pattern", "n"),
		Play:      Key("play/stop pattern", "p", " "),
		TempoUp:   Key("tempo +", "+", "="),
		TempoDown: Key("tempo -", "-", "_"),

		Record:  Key("record", "r"),
		Listen:  Key("play take", "y"),
		Save:    Key("save take", "e"),
		Discard: Key("discard take", "u"),

		Pads:  Key("launchpad mirror", "m"),
		Intro: Key("welcome screen", "i"),
		Help:  Key("help", "?"),
		Quit:  Key("quit", "q", "ctrl+c"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Pattern, k.Scale, k.Waveform, k.Record, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Waveform, k.VolumeDown, k.VolumeUp, k.DelayDown, k.DelayUp, k.ReverbDown, k.ReverbUp},
		{k.OctaveDown, k.OctaveUp, k.Scale, k.Root},
		{k.Pattern, k.Play, k.TempoDown, k.TempoUp},
		{k.Record, k.Listen, k.Save, k.Discard},
		{k.Pads, k.Intro, k.Help, k.Quit},
	}
}

// notes is a display-only binding for the home-row note keys.
var notes = Key("play notes", "a s d f g h j k l ; '")

func (k keyMap) sections() []widgets.KeySection {
	return []widgets.KeySection{
		{Title: "Play", Keys: []key.Binding{notes, k.OctaveDown, k.OctaveUp, k.Scale, k.Root}},
		{Title: "Sound", Keys: []key.Binding{k.Waveform, k.VolumeDown, k.VolumeUp, k.DelayDown, k.DelayUp, k.ReverbDown, k.ReverbUp}},
		{Title: "Patterns", Keys: []key.Binding{k.Pattern, k.Play, k.TempoDown, k.TempoUp}},
		{Title: "Recording", Keys: []key.Binding{k.Record, k.Listen, k.Save, k.Discard}},
	}
}
