// Package sequencer plays looping note patterns through the voice
// controller, one step per beat.
package sequencer

import (
	"embed"
	"errors"
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v3"
)

//go:embed patterns/library.yaml
var libraryFS embed.FS

// RandomID selects a freshly generated pattern on every Play.
const RandomID = "random"

var randomDurations = []float64{0.25, 0.5, 1}

var ErrEmptyPattern = errors.New("pattern has no steps")

// Pattern is a sequence of scale indices with per-step durations in beats.
type Pattern struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Notes     []int     `yaml:"notes"`
	Durations []float64 `yaml:"durations"`
}

func (p Pattern) Len() int { return len(p.Notes) }

// Validate checks that every note has a positive duration.
func (p Pattern) Validate() error {
	if len(p.Notes) == 0 {
		return fmt.Errorf("%s: %w", p.ID, ErrEmptyPattern)
	}
	if len(p.Durations) != len(p.Notes) {
		return fmt.Errorf("%s: %d notes but %d durations", p.ID, len(p.Notes), len(p.Durations))
	}
	for i, n := range p.Notes {
		if n < 0 {
			return fmt.Errorf("%s: step %d: negative index %d", p.ID, i, n)
		}
		if p.Durations[i] <= 0 {
			return fmt.Errorf("%s: step %d: duration %v", p.ID, i, p.Durations[i])
		}
	}
	return nil
}

// Library is the set of selectable patterns, in display order. The random
// entry is always last.
type Library struct {
	patterns []Pattern
}

// LoadLibrary parses the built-in patterns.
func LoadLibrary() (*Library, error) {
	data, err := libraryFS.ReadFile("patterns/library.yaml")
	if err != nil {
		return nil, err
	}
	return ParseLibrary(data)
}

// MustLibrary is LoadLibrary for the embedded data, which is known good.
func MustLibrary() *Library {
	lib, err := LoadLibrary()
	if err != nil {
		panic(err)
	}
	return lib
}

// ParseLibrary decodes a YAML list of patterns.
func ParseLibrary(data []byte) (*Library, error) {
	var ps []Pattern
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("parse patterns: %w", err)
	}
	seen := make(map[string]bool, len(ps))
	for _, p := range ps {
		if p.ID == RandomID || seen[p.ID] {
			return nil, fmt.Errorf("parse patterns: duplicate id %q", p.ID)
		}
		seen[p.ID] = true
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("parse patterns: %w", err)
		}
	}
	return &Library{patterns: ps}, nil
}

// IDs lists the selectable pattern ids, random included.
func (l *Library) IDs() []string {
	ids := make([]string, 0, len(l.patterns)+1)
	for _, p := range l.patterns {
		ids = append(ids, p.ID)
	}
	return append(ids, RandomID)
}

// Name is the display name for id.
func (l *Library) Name(id string) string {
	if id == RandomID {
		return "Random"
	}
	if p, ok := l.Get(id); ok {
		return p.Name
	}
	return ""
}

// Get returns a copy of the stored pattern id.
func (l *Library) Get(id string) (Pattern, bool) {
	for _, p := range l.patterns {
		if p.ID == id {
			p.Notes = append([]int(nil), p.Notes...)
			p.Durations = append([]float64(nil), p.Durations...)
			return p, true
		}
	}
	return Pattern{}, false
}

// Next returns the id after id in display order, wrapping around. An empty
// or unknown id gives the first pattern.
func (l *Library) Next(id string) string {
	ids := l.IDs()
	for i, x := range ids {
		if x == id {
			return ids[(i+1)%len(ids)]
		}
	}
	return ids[0]
}

// Random generates 4 to 11 steps using the lowest degrees of a scale with
// scaleLen notes.
func Random(rng *rand.Rand, scaleLen int) Pattern {
	n := rng.IntN(8) + 4
	span := min(7, scaleLen)
	p := Pattern{
		ID:        RandomID,
		Name:      "Random",
		Notes:     make([]int, n),
		Durations: make([]float64, n),
	}
	for i := range n {
		if span > 0 {
			p.Notes[i] = rng.IntN(span)
		}
		p.Durations[i] = randomDurations[rng.IntN(len(randomDurations))]
	}
	return p
}
