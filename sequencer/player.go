package sequencer

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"soundspace/clock"
	"soundspace/debug"
	"soundspace/input"
	"soundspace/mapping"
	"soundspace/scale"
)

// Tempo limits in BPM.
const (
	MinTempo     = 40
	MaxTempo     = 200
	DefaultTempo = 120
)

// gate is the fraction of a step's length its note sounds for.
const gate = 0.8

// Voices is what the player drives. Stopping playback silences every voice,
// not only the ones the pattern started.
type Voices interface {
	input.Player
	StopAll()
}

// Step describes a step that just played.
type Step struct {
	Index int // position in the pattern
	Note  scale.Note
	Hold  time.Duration
}

type Option func(*Player)

func WithClock(c clock.Clock) Option {
	return func(p *Player) { p.clk = c }
}

func WithRand(r *rand.Rand) Option {
	return func(p *Player) { p.rng = r }
}

func WithPresenter(pr input.Presenter) Option {
	return func(p *Player) { p.present = pr }
}

func WithLibrary(l *Library) Option {
	return func(p *Player) { p.lib = l }
}

// WithStepHook calls f after every step that starts a note.
func WithStepHook(f func(Step)) Option {
	return func(p *Player) { p.onStep = f }
}

// Player loops a pattern at a tempo. The first step plays on Play and the
// rest follow one beat apart, scheduled against absolute times so timer
// latency does not accumulate.
type Player struct {
	mu      sync.Mutex
	voices  Voices
	scales  input.Scales
	surface input.Surface
	present input.Presenter
	clk     clock.Clock
	rng     *rand.Rand
	lib     *Library
	onStep  func(Step)

	selected string
	tempo    int
	playing  bool
	current  Pattern
	step     int

	next time.Time
	tick clock.Timer
	run  uint64 // bumped by Play and Stop; note releases from older runs are dropped
	seq  uint64 // identifies the live tick timer
}

func NewPlayer(v Voices, s input.Scales, surf input.Surface, opts ...Option) *Player {
	p := &Player{
		voices:  v,
		scales:  s,
		surface: surf,
		tempo:   DefaultTempo,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.clk == nil {
		p.clk = clock.Real{}
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if p.lib == nil {
		p.lib = MustLibrary()
	}
	if p.present == nil {
		p.present = input.NopPresenter{}
	}
	return p
}

func (p *Player) Library() *Library { return p.lib }

// Select chooses the pattern the next Play uses. An empty id clears the
// selection.
func (p *Player) Select(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = id
}

func (p *Player) Selected() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// CycleSelection moves to the next pattern in the library and returns it.
func (p *Player) CycleSelection() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = p.lib.Next(p.selected)
	return p.selected
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Tempo() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tempo
}

// Pattern is the pattern being played, or the last one played.
func (p *Player) Pattern() Pattern {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Beat is the step interval at bpm.
func Beat(bpm int) time.Duration {
	return time.Minute / time.Duration(bpm)
}

// Play starts the selected pattern from its first step. Random patterns
// are generated afresh against the current scale.
func (p *Player) Play() error {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return nil
	}
	pat, err := p.load()
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.current = pat
	p.step = 0
	p.playing = true
	p.run++
	p.next = p.clk.Now()
	st, ok := p.playStep()
	p.schedule()
	tempo := p.tempo
	p.mu.Unlock()

	debug.Log("seq", "play %s (%d steps) at %d bpm", pat.ID, pat.Len(), tempo)
	if ok && p.onStep != nil {
		p.onStep(st)
	}
	return nil
}

func (p *Player) load() (Pattern, error) {
	switch p.selected {
	case "":
		return Pattern{}, fault.New("no pattern selected",
			fmsg.WithDesc("no pattern selected", "Please select a pattern first"),
			ftag.With(ftag.InvalidArgument))
	case RandomID:
		return Random(p.rng, len(p.scales.Scale())), nil
	}
	pat, ok := p.lib.Get(p.selected)
	if !ok {
		return Pattern{}, fault.New("unknown pattern "+p.selected,
			fmsg.WithDesc("unknown pattern", "Pattern "+p.selected+" does not exist"),
			ftag.With(ftag.NotFound))
	}
	return pat, nil
}

// Stop ends playback and silences every voice.
func (p *Player) Stop() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	p.run++
	p.seq++
	if p.tick != nil {
		p.tick.Stop()
		p.tick = nil
	}
	p.mu.Unlock()

	debug.Log("seq", "stop")
	p.voices.StopAll()
}

// Toggle plays or stops.
func (p *Player) Toggle() error {
	if p.Playing() {
		p.Stop()
		return nil
	}
	return p.Play()
}

// SetTempo clamps bpm to the tempo range. While playing, the beat timer
// restarts so the next step comes one new beat from now.
func (p *Player) SetTempo(bpm int) int {
	bpm = max(MinTempo, min(MaxTempo, bpm))

	p.mu.Lock()
	defer p.mu.Unlock()
	if bpm == p.tempo {
		return bpm
	}
	p.tempo = bpm
	if !p.playing {
		return bpm
	}
	if p.tick != nil {
		p.tick.Stop()
	}
	p.next = p.clk.Now()
	p.schedule()
	return bpm
}

// fire plays the current step and schedules the next one. It is a no-op
// for ticks that were superseded by Stop or a tempo change.
func (p *Player) fire(run, seq uint64) {
	p.mu.Lock()
	if !p.playing || run != p.run || seq != p.seq {
		p.mu.Unlock()
		return
	}
	st, ok := p.playStep()
	p.schedule()
	p.mu.Unlock()

	if ok && p.onStep != nil {
		p.onStep(st)
	}
}

// schedule arms the tick for the beat after p.next. Must hold p.mu.
func (p *Player) schedule() {
	p.seq++
	p.next = p.next.Add(Beat(p.tempo))
	run, seq := p.run, p.seq
	p.tick = p.clk.AfterFunc(p.next.Sub(p.clk.Now()), func() { p.fire(run, seq) })
}

// playStep starts the note for the current step and advances. Indices
// beyond the scale are skipped silently. Must hold p.mu.
func (p *Player) playStep() (Step, bool) {
	i := p.step
	idx := p.current.Notes[i]
	dur := p.current.Durations[i]
	p.step = (p.step + 1) % p.current.Len()

	s := p.scales.Scale()
	if idx >= len(s) {
		return Step{}, false
	}
	note := s[idx]
	w, h := p.surface.Size()
	pos := input.Position{
		X: mapping.XForIndex(idx, len(s), w), Y: h / 2,
		Width: w, Height: h,
		Note: note, Index: idx, Count: len(s),
		Params: mapping.ParametersForY(h/2, h),
	}

	if err := p.voices.Start(note, pos.Params); err != nil {
		debug.Log("seq", "step %d: %v", i, err)
	}
	p.present.Move(pos)
	p.present.Burst(pos)

	hold := time.Duration(math.Round(gate * dur * float64(Beat(p.tempo))))
	run := p.run
	p.clk.AfterFunc(hold, func() { p.release(run, note) })
	return Step{Index: i, Note: note, Hold: hold}, true
}

func (p *Player) release(run uint64, note scale.Note) {
	p.mu.Lock()
	stale := run != p.run
	p.mu.Unlock()
	if stale {
		return
	}
	p.voices.Stop(note)
}
