package voice

import (
	"errors"
	"testing"

	"soundspace/scale"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := &Voice{Note: scale.Note{Name: "A4", Frequency: 440}}
	c := &Voice{Note: scale.Note{Name: "C5", Frequency: 523.25}}

	if err := r.Put(c); err != nil {
		t.Fatal(err)
	}
	if err := r.Put(a); err != nil {
		t.Fatal(err)
	}
	if err := r.Put(&Voice{Note: a.Note}); !errors.Is(err, ErrDuplicateVoice) {
		t.Errorf("duplicate Put err = %v", err)
	}
	if r.Get("A4") != a || !r.Has("C5") || r.Has("D5") {
		t.Error("lookup mismatch")
	}
	if names := r.Names(); len(names) != 2 || names[0] != "A4" || names[1] != "C5" {
		t.Errorf("Names() = %v", names)
	}
	r.Remove("A4")
	r.Remove("A4")
	if r.Len() != 1 || r.Get("A4") != nil {
		t.Errorf("after remove len=%d", r.Len())
	}
}
