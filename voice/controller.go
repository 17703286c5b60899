// Package voice manages the set of sounding notes. The Controller creates a
// voice per note on start, retunes it on update and releases it with a
// short exponential fade on stop; the Registry keeps at most one voice per
// note name.
package voice

import (
	"fmt"
	"sync"
	"time"

	"soundspace/clock"
	"soundspace/debug"
	"soundspace/mapping"
	"soundspace/scale"
)

const (
	// ReleaseTime is how long a stopped voice fades before it is removed.
	ReleaseTime = 300 * time.Millisecond
	// DefaultLevel is the gain of a sounding voice.
	DefaultLevel = 0.4

	releaseFloor = 0.001
)

// EventKind identifies a lifecycle transition.
type EventKind int

const (
	Started   EventKind = iota // new voice allocated
	Restarted                  // releasing voice picked up again
	Updated                    // parameters changed
	Released                   // release fade began
	Ended                      // voice removed
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Restarted:
		return "restarted"
	case Updated:
		return "updated"
	case Released:
		return "released"
	case Ended:
		return "ended"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is delivered to observers after each transition. Active is the
// number of registered voices afterwards.
type Event struct {
	Kind   EventKind
	Note   scale.Note
	Params mapping.TimbreParameters
	Active int
}

// Option configures a Controller.
type Option func(*Controller)

func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) { ctl.clk = c }
}

func WithRelease(d time.Duration) Option {
	return func(ctl *Controller) { ctl.release = d }
}

func WithLevel(level float64) Option {
	return func(ctl *Controller) { ctl.level = level }
}

func WithLayer(l Layer) Option {
	return func(ctl *Controller) { ctl.layer = l }
}

func WithObserver(f func(Event)) Option {
	return func(ctl *Controller) { ctl.observers = append(ctl.observers, f) }
}

// Controller owns the voice registry. All operations are safe to call from
// any goroutine and are applied in the order they acquire the lock.
type Controller struct {
	mu        sync.Mutex
	dev       Device
	layer     Layer
	clk       clock.Clock
	release   time.Duration
	level     float64
	reg       *Registry
	observers []func(Event)
	releases  uint64
}

// NewController returns a controller playing on dev. The default layer is
// BaseLayer.
func NewController(dev Device, opts ...Option) *Controller {
	c := &Controller{
		dev:     dev,
		layer:   BaseLayer{},
		clk:     clock.Real{},
		release: ReleaseTime,
		level:   DefaultLevel,
		reg:     NewRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observe adds an observer. Observers run on the goroutine that caused the
// transition, after the controller lock is released.
func (c *Controller) Observe(f func(Event)) {
	c.mu.Lock()
	c.observers = append(c.observers, f)
	c.mu.Unlock()
}

// Start makes note sound with parameters p. A note that is already
// sounding is retuned; a note that is releasing has its release cancelled
// and is brought back to full level.
func (c *Controller) Start(note scale.Note, p mapping.TimbreParameters) error {
	c.mu.Lock()
	ev, err := c.start(note, p)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.emit(ev)
	return nil
}

func (c *Controller) start(note scale.Note, p mapping.TimbreParameters) (Event, error) {
	if v := c.reg.Get(note.Name); v != nil {
		kind := Updated
		if v.state == Releasing {
			c.cancelRelease(v)
			v.Amplitude.SetValueNow(c.level)
			v.state = Sounding
			kind = Restarted
		}
		c.retune(v, p)
		return Event{Kind: kind, Note: v.Note, Params: p, Active: c.reg.Len()}, nil
	}

	if c.dev.State() == Suspended {
		if err := c.dev.Resume(); err != nil {
			debug.Log("voice", "resume device: %v", err)
		}
	}

	v := &Voice{Note: note, Params: p}
	v.Generator = c.dev.NewGenerator(c.dev.Waveform(), note.Frequency, p.Detune)
	v.Amplitude = c.dev.NewAmplitude(c.level)

	if err := c.patch(v); err != nil {
		v.Generator.Stop()
		return Event{}, fmt.Errorf("start %s: %w", note.Name, err)
	}
	v.Generator.Start()
	if err := c.reg.Put(v); err != nil {
		v.Generator.Stop()
		return Event{}, err
	}

	debug.Log("voice", "start %s %.2fHz detune=%.1f active=%d", note.Name, note.Frequency, p.Detune, c.reg.Len())
	return Event{Kind: Started, Note: note, Params: p, Active: c.reg.Len()}, nil
}

func (c *Controller) patch(v *Voice) error {
	src, err := c.layer.Insert(c.dev, v, v.Generator)
	if err != nil {
		return err
	}
	if err := c.dev.Connect(src, v.Amplitude); err != nil {
		return err
	}
	return c.layer.Route(c.dev, v)
}

// Update retunes a registered voice. Unknown notes are ignored.
func (c *Controller) Update(note scale.Note, p mapping.TimbreParameters) {
	c.mu.Lock()
	v := c.reg.Get(note.Name)
	if v == nil {
		c.mu.Unlock()
		return
	}
	c.retune(v, p)
	ev := Event{Kind: Updated, Note: v.Note, Params: p, Active: c.reg.Len()}
	c.mu.Unlock()
	c.emit(ev)
}

func (c *Controller) retune(v *Voice, p mapping.TimbreParameters) {
	v.Params = p
	c.layer.Retune(v, p)
}

// Stop begins the release of note. Stopping a note that is not registered
// or already releasing does nothing.
func (c *Controller) Stop(note scale.Note) {
	c.mu.Lock()
	ev, ok := c.stop(note.Name)
	c.mu.Unlock()
	if ok {
		c.emit(ev)
	}
}

func (c *Controller) stop(name string) (Event, bool) {
	v := c.reg.Get(name)
	if v == nil || v.state == Releasing {
		return Event{}, false
	}

	v.Amplitude.SetValueNow(v.Amplitude.Value())
	v.Amplitude.RampExponential(releaseFloor, c.release)
	v.state = Releasing

	c.releases++
	gen := c.releases
	v.gen = gen
	v.release = c.clk.AfterFunc(c.release, func() { c.finish(name, gen) })

	debug.Log("voice", "release %s", name)
	return Event{Kind: Released, Note: v.Note, Params: v.Params, Active: c.reg.Len()}, true
}

// finish removes a voice whose release window has elapsed, unless the
// release was cancelled in the meantime.
func (c *Controller) finish(name string, gen uint64) {
	c.mu.Lock()
	v := c.reg.Get(name)
	if v == nil || v.state != Releasing || v.gen != gen {
		c.mu.Unlock()
		return
	}
	v.Generator.Stop()
	c.reg.Remove(name)
	ev := Event{Kind: Ended, Note: v.Note, Params: v.Params, Active: c.reg.Len()}
	c.mu.Unlock()

	debug.Log("voice", "ended %s active=%d", name, ev.Active)
	c.emit(ev)
}

func (c *Controller) cancelRelease(v *Voice) {
	if v.release != nil {
		v.release.Stop()
		v.release = nil
	}
	c.releases++
	v.gen = c.releases
}

// StopAll releases every sounding voice.
func (c *Controller) StopAll() {
	c.mu.Lock()
	var events []Event
	for _, name := range c.reg.Names() {
		if ev, ok := c.stop(name); ok {
			events = append(events, ev)
		}
	}
	c.mu.Unlock()
	c.emit(events...)
}

// Has reports whether note has a registered voice, sounding or releasing.
func (c *Controller) Has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.Has(name)
}

// Voice returns a snapshot of the voice for name.
func (c *Controller) Voice(name string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.reg.Get(name)
	if v == nil {
		return Snapshot{}, false
	}
	return v.snapshot(), true
}

// Active returns snapshots of all registered voices ordered by name.
func (c *Controller) Active() []Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := c.reg.Names()
	out := make([]Snapshot, len(names))
	for i, name := range names {
		out[i] = c.reg.Get(name).snapshot()
	}
	return out
}

// Len is the number of registered voices.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg.Len()
}

func (c *Controller) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	c.mu.Lock()
	obs := c.observers
	c.mu.Unlock()
	for _, ev := range events {
		for _, f := range obs {
			f(ev)
		}
	}
}
