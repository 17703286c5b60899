// Package scale holds the ordered set of notes the playing surface is
// divided into. A Model selects a named interval set, a root key and an
// octave shift and produces an immutable Scale for the current selection.
package scale

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
)

// Note is a named pitch. Name is unique within a Scale and is the
// identity voices are keyed by.
type Note struct {
	Name      string
	Frequency float64
}

// Scale is an ordered list of notes, lowest first.
type Scale []Note

// Index returns the position of the note named name, or -1.
func (s Scale) Index(name string) int {
	for i, n := range s {
		if n.Name == name {
			return i
		}
	}
	return -1
}

// Names lists the note names in order.
func (s Scale) Names() []string {
	names := make([]string, len(s))
	for i, n := range s {
		names[i] = n.Name
	}
	return names
}

const (
	baseOctave = 4
	a4Index    = 57 // semitones from C0 to A4
	a4         = 440.0

	MinOctave = -2
	MaxOctave = 2
)

var (
	ErrUnknownScale = errors.New("unknown scale")
	ErrUnknownKey   = errors.New("unknown key")
	ErrOctaveRange  = errors.New("octave shift out of range")
)

// NoteNames are the twelve chromatic roots.
var NoteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Kinds lists the named scales in display order.
var Kinds = []string{"pentatonic", "pentatonicMinor", "major", "minor", "harmonicMinor", "blues", "chromatic"}

var intervals = map[string][]int{
	"pentatonic":      {0, 2, 4, 7, 9, 12, 14, 16, 19, 21, 24},
	"pentatonicMinor": {0, 3, 5, 7, 10, 12, 15, 17, 19, 22, 24},
	"major":           {0, 2, 4, 5, 7, 9, 11, 12, 14, 16, 17, 19, 21, 23, 24},
	"minor":           {0, 2, 3, 5, 7, 8, 10, 12, 14, 15, 17, 19, 20, 22, 24},
	"harmonicMinor":   {0, 2, 3, 5, 7, 8, 11, 12, 14, 15, 17, 19, 20, 23, 24},
	"blues":           {0, 3, 5, 6, 7, 10, 12, 15, 17, 18, 19, 22, 24},
	"chromatic":       {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14},
}

// Intervals returns the semitone offsets of a named scale.
func Intervals(kind string) ([]int, bool) {
	iv, ok := intervals[kind]
	return slices.Clone(iv), ok
}

// Frequency returns the equal-tempered pitch of a chromatic index
// (0 = C, 11 = B) in the given octave.
func Frequency(index, octave int) float64 {
	semis := index + octave*12
	return a4 * math.Pow(2, float64(semis-a4Index)/12)
}

// Build constructs the scale for a kind, root key and octave shift.
func Build(kind, key string, shift int) (Scale, error) {
	iv, ok := intervals[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScale, kind)
	}
	root := slices.Index(NoteNames, key)
	if root < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if shift < MinOctave || shift > MaxOctave {
		return nil, fmt.Errorf("%w: %d", ErrOctaveRange, shift)
	}

	s := make(Scale, len(iv))
	for i, step := range iv {
		abs := root + step
		idx := abs % 12
		oct := baseOctave + shift + abs/12
		s[i] = Note{
			Name:      fmt.Sprintf("%s%d", NoteNames[idx], oct),
			Frequency: Frequency(idx, oct),
		}
	}
	return s, nil
}

// Model is the current scale selection. Changes replace the whole Scale;
// a Scale handed out earlier is never modified.
type Model struct {
	mu     sync.RWMutex
	kind   string
	key    string
	octave int
	cur    Scale
	onSet  []func(Scale)
}

// NewModel returns a model for the given selection.
func NewModel(kind, key string, octave int) (*Model, error) {
	s, err := Build(kind, key, octave)
	if err != nil {
		return nil, err
	}
	return &Model{kind: kind, key: key, octave: octave, cur: s}, nil
}

// Default is C pentatonic with no octave shift.
func Default() *Model {
	m, _ := NewModel("pentatonic", "C", 0)
	return m
}

// Scale returns the current scale.
func (m *Model) Scale() Scale {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cur
}

func (m *Model) Kind() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.kind
}

func (m *Model) Key() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.key
}

func (m *Model) Octave() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.octave
}

// OnChange registers f to run after every successful change.
func (m *Model) OnChange(f func(Scale)) {
	m.mu.Lock()
	m.onSet = append(m.onSet, f)
	m.mu.Unlock()
}

// Select replaces kind, key and octave at once.
func (m *Model) Select(kind, key string, octave int) error {
	s, err := Build(kind, key, octave)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.kind, m.key, m.octave, m.cur = kind, key, octave, s
	hooks := slices.Clone(m.onSet)
	m.mu.Unlock()

	for _, f := range hooks {
		f(s)
	}
	return nil
}

func (m *Model) SetKind(kind string) error {
	return m.Select(kind, m.Key(), m.Octave())
}

func (m *Model) SetKey(key string) error {
	return m.Select(m.Kind(), key, m.Octave())
}

// SetOctave changes the octave shift. Values outside -2..2 are rejected.
func (m *Model) SetOctave(shift int) error {
	return m.Select(m.Kind(), m.Key(), shift)
}

// ShiftOctave moves the octave by delta, clamping to the allowed range.
// It reports whether the octave changed.
func (m *Model) ShiftOctave(delta int) bool {
	cur := m.Octave()
	next := max(MinOctave, min(MaxOctave, cur+delta))
	if next == cur {
		return false
	}
	return m.SetOctave(next) == nil
}

// CycleKind selects the next (or previous for negative step) named scale.
func (m *Model) CycleKind(step int) error {
	i := slices.Index(Kinds, m.Kind())
	return m.SetKind(Kinds[wrap(i+step, len(Kinds))])
}

// CycleKey selects the next (or previous) root.
func (m *Model) CycleKey(step int) error {
	i := slices.Index(NoteNames, m.Key())
	return m.SetKey(NoteNames[wrap(i+step, len(NoteNames))])
}

// Label is a short description such as "D minor +1".
func (m *Model) Label() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.octave == 0 {
		return fmt.Sprintf("%s %s", m.key, m.kind)
	}
	return fmt.Sprintf("%s %s %+d", m.key, m.kind, m.octave)
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
