package scale

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultMatchesPentatonicC(t *testing.T) {
	s := Default().Scale()
	want := []struct {
		name string
		freq float64
	}{
		{"C4", 261.63}, {"D4", 293.66}, {"E4", 329.63}, {"G4", 392.00}, {"A4", 440.00},
		{"C5", 523.25}, {"D5", 587.33}, {"E5", 659.25}, {"G5", 783.99}, {"A5", 880.00},
		{"C6", 1046.50},
	}
	if len(s) != len(want) {
		t.Fatalf("len = %d, want %d", len(s), len(want))
	}
	for i, w := range want {
		if s[i].Name != w.name {
			t.Errorf("note %d name = %s, want %s", i, s[i].Name, w.name)
		}
		if math.Abs(s[i].Frequency-w.freq) > 0.01 {
			t.Errorf("note %d freq = %.3f, want %.2f", i, s[i].Frequency, w.freq)
		}
	}
}

func TestBuildNamesAreUnique(t *testing.T) {
	for _, kind := range Kinds {
		for _, key := range NoteNames {
			for shift := MinOctave; shift <= MaxOctave; shift++ {
				s, err := Build(kind, key, shift)
				if err != nil {
					t.Fatalf("Build(%s, %s, %d): %v", kind, key, shift, err)
				}
				seen := map[string]bool{}
				for _, n := range s {
					if seen[n.Name] {
						t.Fatalf("%s %s %d: duplicate %s", kind, key, shift, n.Name)
					}
					seen[n.Name] = true
				}
			}
		}
	}
}

func TestOctaveShiftDoublesFrequency(t *testing.T) {
	base, _ := Build("major", "D", 0)
	up, _ := Build("major", "D", 1)
	down, _ := Build("major", "D", -2)
	for i := range base {
		if math.Abs(up[i].Frequency-2*base[i].Frequency) > 1e-9 {
			t.Errorf("note %d: +1 octave %.3f, want %.3f", i, up[i].Frequency, 2*base[i].Frequency)
		}
		if math.Abs(down[i].Frequency-base[i].Frequency/4) > 1e-9 {
			t.Errorf("note %d: -2 octaves %.3f, want %.3f", i, down[i].Frequency, base[i].Frequency/4)
		}
	}
	if up[0].Name != "D5" || down[0].Name != "D2" {
		t.Errorf("shifted roots = %s, %s", up[0].Name, down[0].Name)
	}
}

func TestKeyWrapsIntoNextOctave(t *testing.T) {
	s, err := Build("pentatonic", "A", 0)
	if err != nil {
		t.Fatal(err)
	}
	// A4 B4 C#5 E5 F#5 ...
	if s[0].Name != "A4" || s[2].Name != "C#5" {
		t.Errorf("got %v", s.Names()[:3])
	}
	if math.Abs(s[0].Frequency-440) > 1e-9 {
		t.Errorf("A4 = %f", s[0].Frequency)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		kind, key string
		shift     int
		want      error
	}{
		{"lydian", "C", 0, ErrUnknownScale},
		{"major", "H", 0, ErrUnknownKey},
		{"major", "C", 3, ErrOctaveRange},
		{"major", "C", -3, ErrOctaveRange},
	}
	for _, tt := range tests {
		_, err := Build(tt.kind, tt.key, tt.shift)
		if !errors.Is(err, tt.want) {
			t.Errorf("Build(%s, %s, %d) err = %v, want %v", tt.kind, tt.key, tt.shift, err, tt.want)
		}
	}
}

func TestModelReplacesScale(t *testing.T) {
	m := Default()
	before := m.Scale()

	var notified Scale
	m.OnChange(func(s Scale) { notified = s })

	if err := m.SetKind("chromatic"); err != nil {
		t.Fatal(err)
	}
	after := m.Scale()
	if len(before) != 11 || len(after) != 15 {
		t.Fatalf("lengths before/after = %d/%d", len(before), len(after))
	}
	if before[1].Name != "D4" {
		t.Errorf("earlier scale mutated: %v", before.Names())
	}
	if len(notified) != len(after) {
		t.Error("OnChange not called with new scale")
	}

	if err := m.SetOctave(5); err == nil {
		t.Error("SetOctave(5) should fail")
	}
	if m.Octave() != 0 {
		t.Errorf("failed change altered octave to %d", m.Octave())
	}
}

func TestShiftOctaveClamps(t *testing.T) {
	m := Default()
	if !m.ShiftOctave(1) || !m.ShiftOctave(1) {
		t.Fatal("shift up failed")
	}
	if m.ShiftOctave(1) {
		t.Error("shift past +2 reported a change")
	}
	if m.Octave() != 2 {
		t.Errorf("octave = %d", m.Octave())
	}
	if m.Label() != "C pentatonic +2" {
		t.Errorf("Label() = %q", m.Label())
	}
}

func TestCycle(t *testing.T) {
	m := Default()
	if err := m.CycleKind(-1); err != nil {
		t.Fatal(err)
	}
	if m.Kind() != "chromatic" {
		t.Errorf("CycleKind(-1) = %s", m.Kind())
	}
	if err := m.CycleKey(1); err != nil {
		t.Fatal(err)
	}
	if m.Key() != "C#" {
		t.Errorf("CycleKey(1) = %s", m.Key())
	}
	if idx := m.Scale().Index("C#4"); idx != 0 {
		t.Errorf("Index(C#4) = %d", idx)
	}
}
