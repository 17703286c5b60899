package input

import (
	"sync"

	"soundspace/scale"
)

// contact is the held state of one pressable input. While held it owns
// exactly one note; moving onto another note stops the old one before the
// new one starts.
type contact struct {
	mu      sync.Mutex
	player  Player
	scales  Scales
	surface Surface
	present Presenter

	held bool
	note scale.Note
	last Position
	seen bool
}

func newContact(p Player, s Scales, surf Surface, pr Presenter) contact {
	if pr == nil {
		pr = NopPresenter{}
	}
	return contact{player: p, scales: s, surface: surf, present: pr}
}

// press starts the note under (x, y). A press while already held, as after
// a lost release, is treated as a move so the contact keeps one note.
func (c *contact) press(x, y float64) error {
	if c.held {
		return c.move(x, y)
	}
	pos := locate(c.scales.Scale(), c.surface, x, y)
	c.held = true
	c.note = pos.Note
	c.last, c.seen = pos, true

	err := c.player.Start(pos.Note, pos.Params)
	c.present.Move(pos)
	c.present.Burst(pos)
	return err
}

func (c *contact) move(x, y float64) error {
	pos := locate(c.scales.Scale(), c.surface, x, y)
	c.last, c.seen = pos, true
	c.present.Move(pos)
	if !c.held {
		return nil
	}

	if pos.Note.Name == c.note.Name {
		c.player.Update(pos.Note, pos.Params)
		return nil
	}
	c.player.Stop(c.note)
	c.note = pos.Note
	c.present.Burst(pos)
	return c.player.Start(pos.Note, pos.Params)
}

func (c *contact) release() {
	if !c.held {
		return
	}
	c.held = false
	c.player.Stop(c.note)
}

// Held reports whether the contact is down and which note it owns.
func (c *contact) Held() (scale.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.note, c.held
}

// Last is the most recent located position.
func (c *contact) Last() (Position, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.seen
}

// Pointer is the mouse on the playing surface.
type Pointer struct {
	contact
}

func NewPointer(p Player, s Scales, surf Surface, pr Presenter) *Pointer {
	return &Pointer{contact: newContact(p, s, surf, pr)}
}

// Press starts the note under (x, y).
func (p *Pointer) Press(x, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.press(x, y)
}

// Move follows the pointer, changing notes while the button is held.
func (p *Pointer) Move(x, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.move(x, y)
}

// Release lifts the button or the pointer leaving the surface.
func (p *Pointer) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.release()
}

// Y is the last vertical position seen, if any.
func (p *Pointer) Y() (float64, bool) {
	pos, ok := p.Last()
	return pos.Y, ok
}

// Touch is a touch surface. Only one contact plays: a new contact while
// another is held takes over as a move, and releases of contacts that no
// longer own the note are ignored.
type Touch struct {
	contact
	primary int
}

func NewTouch(p Player, s Scales, surf Surface, pr Presenter) *Touch {
	return &Touch{contact: newContact(p, s, surf, pr)}
}

// Begin handles a contact touching down.
func (t *Touch) Begin(id int, x, y float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.primary = id
	return t.press(x, y)
}

// Move handles a contact moving.
func (t *Touch) Move(id int, x, y float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.held || id != t.primary {
		return nil
	}
	return t.move(x, y)
}

// End handles a contact lifting.
func (t *Touch) End(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id != t.primary {
		return
	}
	t.release()
}

// Cancel drops the held contact, as when the surface disconnects.
func (t *Touch) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.release()
}
