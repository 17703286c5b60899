package voice

import (
	"errors"
	"fmt"
	"slices"
)

var ErrDuplicateVoice = errors.New("voice already registered")

// Registry maps note names to their live voices. It is not safe for
// concurrent use; the Controller guards it.
type Registry struct {
	voices map[string]*Voice
}

func NewRegistry() *Registry {
	return &Registry{voices: make(map[string]*Voice)}
}

func (r *Registry) Has(name string) bool {
	_, ok := r.voices[name]
	return ok
}

func (r *Registry) Get(name string) *Voice {
	return r.voices[name]
}

// Put registers v under its note name.
func (r *Registry) Put(v *Voice) error {
	name := v.Note.Name
	if r.Has(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateVoice, name)
	}
	r.voices[name] = v
	return nil
}

func (r *Registry) Remove(name string) {
	delete(r.voices, name)
}

func (r *Registry) Len() int {
	return len(r.voices)
}

// Names returns the registered note names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.voices))
	for name := range r.voices {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
