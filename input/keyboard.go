package input

import (
	"fmt"
	"sync"
	"time"

	"soundspace/clock"
	"soundspace/mapping"
	"soundspace/scale"
)

// DefaultKeys is the home row, left to right, mapped to scale indices.
var DefaultKeys = []string{"a", "s", "d", "f", "g", "h", "j", "k", "l", ";", "'"}

// KeyboardOption configures a Keyboard.
type KeyboardOption func(*Keyboard)

// WithHold releases a key automatically when no press or repeat for it
// arrives within d. Terminals report presses and repeats but no releases.
func WithHold(d time.Duration, clk clock.Clock) KeyboardOption {
	return func(k *Keyboard) {
		k.hold = d
		k.clk = clk
	}
}

// WithY supplies the vertical position used for key notes, usually the
// pointer's last y. Without it notes play at the centre of the surface.
func WithY(f func() (float64, bool)) KeyboardOption {
	return func(k *Keyboard) { k.y = f }
}

// Keyboard plays scale degrees from keys. Identities are free-form
// strings so MIDI notes can share the adapter ("midi:60").
type Keyboard struct {
	mu      sync.Mutex
	player  Player
	scales  Scales
	surface Surface
	present Presenter

	keys   map[string]int
	active map[string]scale.Note
	y      func() (float64, bool)

	hold   time.Duration
	clk    clock.Clock
	timers map[string]*holdTimer
}

type holdTimer struct {
	t clock.Timer
}

func NewKeyboard(p Player, s Scales, surf Surface, pr Presenter, opts ...KeyboardOption) *Keyboard {
	if pr == nil {
		pr = NopPresenter{}
	}
	k := &Keyboard{
		player:  p,
		scales:  s,
		surface: surf,
		present: pr,
		keys:    make(map[string]int, len(DefaultKeys)),
		active:  make(map[string]scale.Note),
		timers:  make(map[string]*holdTimer),
	}
	for i, key := range DefaultKeys {
		k.keys[key] = i
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.clk == nil {
		k.clk = clock.Real{}
	}
	return k
}

// Handles reports whether key is mapped.
func (k *Keyboard) Handles(key string) bool {
	_, ok := k.keys[key]
	return ok
}

// Press plays the note mapped to key. Repeats of a held key only extend
// its hold. It reports whether the key is mapped.
func (k *Keyboard) Press(key string) (bool, error) {
	idx, ok := k.keys[key]
	if !ok {
		return false, nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, held := k.active[key]; held {
		k.armHold(key)
		return true, nil
	}
	started, err := k.pressIndex(key, idx)
	if started {
		k.armHold(key)
	}
	return true, err
}

// PressIndex plays scale degree idx under identity id. Indices beyond the
// current scale are ignored, as are ids that are already held.
func (k *Keyboard) PressIndex(id string, idx int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, err := k.pressIndex(id, idx)
	return err
}

func (k *Keyboard) pressIndex(id string, idx int) (bool, error) {
	if _, held := k.active[id]; held {
		return false, nil
	}
	s := k.scales.Scale()
	if idx < 0 || idx >= len(s) {
		return false, nil
	}

	w, h := k.surface.Size()
	y := h / 2
	if k.y != nil {
		if py, ok := k.y(); ok {
			y = py
		}
	}
	note := s[idx]
	pos := Position{
		X: mapping.XForIndex(idx, len(s), w), Y: y,
		Width: w, Height: h,
		Note: note, Index: idx, Count: len(s),
		Params: mapping.ParametersForY(y, h),
	}
	k.active[id] = note
	err := k.player.Start(note, pos.Params)
	k.present.Move(pos)
	k.present.Burst(pos)
	if err != nil {
		return true, fmt.Errorf("key %s: %w", id, err)
	}
	return true, nil
}

// Release stops the note id was pressed with, even if the scale changed
// since. It reports whether id was held.
func (k *Keyboard) Release(id string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.release(id)
}

func (k *Keyboard) release(id string) bool {
	note, ok := k.active[id]
	if !ok {
		return false
	}
	delete(k.active, id)
	if ht := k.timers[id]; ht != nil {
		ht.t.Stop()
		delete(k.timers, id)
	}
	k.player.Stop(note)
	return true
}

// ReleaseAll forgets every held key and stops its note.
func (k *Keyboard) ReleaseAll() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for id := range k.active {
		k.release(id)
	}
}

// Held returns the number of held keys.
func (k *Keyboard) Held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.active)
}

func (k *Keyboard) armHold(id string) {
	if k.hold <= 0 {
		return
	}
	if old := k.timers[id]; old != nil {
		old.t.Stop()
	}
	ht := &holdTimer{}
	k.timers[id] = ht
	ht.t = k.clk.AfterFunc(k.hold, func() { k.expire(id, ht) })
}

// expire releases id if ht is still its current hold timer.
func (k *Keyboard) expire(id string, ht *holdTimer) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.timers[id] != ht {
		return
	}
	k.release(id)
}
