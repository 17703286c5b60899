// Package instrument wires the scale, voices, inputs, audio engine and
// visuals into the one object the UI talks to.
package instrument

import (
	"math/rand/v2"
	"sync"
	"time"

	"soundspace/analysis"
	"soundspace/clock"
	"soundspace/config"
	"soundspace/debug"
	"soundspace/input"
	"soundspace/midi"
	"soundspace/recorder"
	"soundspace/render"
	"soundspace/scale"
	"soundspace/sequencer"
	"soundspace/synth"
	"soundspace/voice"
)

// KeyHold is how long a terminal key keeps sounding without a repeat.
const KeyHold = 600 * time.Millisecond

// Option configures an Instrument.
type Option func(*Instrument)

// WithClock drives every timer (releases, pattern steps, key holds) from c.
func WithClock(c clock.Clock) Option {
	return func(i *Instrument) { i.clk = c }
}

// WithRand seeds pattern generation and particles.
func WithRand(r *rand.Rand) Option {
	return func(i *Instrument) { i.rng = r }
}

// WithoutAudio keeps the engine offline: nothing is played and recording
// is unavailable.
func WithoutAudio() Option {
	return func(i *Instrument) { i.noAudio = true }
}

// Instrument is the shared context every input and view works through.
type Instrument struct {
	cfg     *config.Config
	clk     clock.Clock
	rng     *rand.Rand
	noAudio bool

	Scales    *scale.Model
	Graph     *synth.Graph
	Voices    *voice.Controller
	Pointer   *input.Pointer
	Touch     *input.Touch
	Keys      *input.Keyboard
	Patterns  *sequencer.Player
	Recorder  *recorder.Recorder
	Analyzer  *analysis.Analyzer
	Scene     *render.Scene
	Particles *render.Particles

	output   *synth.Output
	canvas   *render.Canvas
	renderer render.Renderer

	mu       sync.Mutex
	width    float64
	height   float64
	lastNote string
	clip     *synth.Clip
	welcome  bool

	// Launchpad LED mirror
	controller midi.Controller
	ledDirty   bool
	prevLEDs   map[[2]int]midi.LEDUpdate
	stopLEDs   chan struct{}

	// Notify the UI of updates
	UpdateChan chan struct{}
}

// New builds an instrument from cfg. Audio failures are logged and leave
// the instrument playable but silent.
func New(cfg *config.Config, opts ...Option) (*Instrument, error) {
	i := &Instrument{
		cfg:        cfg,
		width:      80,
		height:     24,
		welcome:    !cfg.UI.HideWelcome,
		prevLEDs:   make(map[[2]int]midi.LEDUpdate),
		UpdateChan: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.clk == nil {
		i.clk = clock.Real{}
	}
	if i.rng == nil {
		i.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 2))
	}
	i.noAudio = i.noAudio || cfg.Audio.Disabled

	sc, err := scale.NewModel(cfg.Music.Scale, cfg.Music.Key, cfg.Music.Octave)
	if err != nil {
		return nil, err
	}
	i.Scales = sc

	if err := i.setupEngine(); err != nil {
		return nil, err
	}
	i.setupInputs()
	return i, nil
}

func (i *Instrument) setupEngine() error {
	cfg := i.cfg.Audio
	wave, err := voice.ParseWaveform(cfg.Waveform)
	if err != nil {
		return err
	}

	g := synth.NewGraph(cfg.SampleRate)
	g.SetWaveform(wave)
	g.SetVolume(cfg.Volume)
	g.SetDelay(cfg.Delay)
	g.SetReverb(cfg.Reverb)
	i.Graph = g

	i.Analyzer = analysis.New()
	g.AddTap(i.Analyzer)

	if !i.noAudio {
		out, err := synth.Open(g, time.Duration(cfg.BufferMs)*time.Millisecond)
		if err != nil {
			debug.Log("audio", "output unavailable: %v", err)
		} else {
			i.output = out
			// held until the welcome screen is dismissed or a note plays
			g.Suspend()
		}
	}

	var src recorder.Source
	if i.output != nil {
		src = g
	}
	i.Recorder = recorder.New(src, i.clk)

	layer := voice.Layer(voice.BaseLayer{})
	if cfg.Enhanced {
		layer = voice.Enhanced()
	}
	i.Voices = voice.NewController(g,
		voice.WithClock(i.clk),
		voice.WithLayer(layer),
		voice.WithObserver(i.onVoice),
	)

	i.Particles = render.NewParticles(i.clk, i.rng)
	i.Scene = render.NewScene(i.Particles)
	i.canvas = render.NewCanvas()
	if cfg.Enhanced {
		i.renderer = render.Enhanced(i.canvas, i.Particles)
	} else {
		i.renderer = &render.ParticleLayer{Next: i.canvas, Particles: i.Particles}
	}
	return nil
}

func (i *Instrument) setupInputs() {
	surface := input.SurfaceFunc(i.Size)
	i.Pointer = input.NewPointer(i.Voices, i.Scales, surface, i.Scene)
	i.Touch = input.NewTouch(i.Voices, i.Scales, input.Size{W: midi.GridSize, H: midi.GridSize}, touchPresenter{i})
	i.Keys = input.NewKeyboard(i.Voices, i.Scales, surface, i.Scene,
		input.WithHold(KeyHold, i.clk),
		input.WithY(i.Pointer.Y),
	)

	lib := sequencer.MustLibrary()
	i.Patterns = sequencer.NewPlayer(i.Voices, i.Scales, surface,
		sequencer.WithClock(i.clk),
		sequencer.WithRand(i.rng),
		sequencer.WithPresenter(i.Scene),
		sequencer.WithLibrary(lib),
		sequencer.WithStepHook(func(sequencer.Step) { i.notifyUpdate() }),
	)
	i.Patterns.SetTempo(i.cfg.Music.Tempo)
	if _, ok := lib.Get(i.cfg.UI.LastPattern); ok || i.cfg.UI.LastPattern == sequencer.RandomID {
		i.Patterns.Select(i.cfg.UI.LastPattern)
	}
}

// touchPresenter rescales pad positions onto the canvas so the picture
// follows the Launchpad as it does the mouse.
type touchPresenter struct{ i *Instrument }

func (t touchPresenter) scale(pos input.Position) input.Position {
	w, h := t.i.Size()
	pos.X = pos.X / pos.Width * w
	pos.Y = pos.Y / pos.Height * h
	pos.Width, pos.Height = w, h
	return pos
}

func (t touchPresenter) Move(pos input.Position)  { t.i.Scene.Move(t.scale(pos)) }
func (t touchPresenter) Burst(pos input.Position) { t.i.Scene.Burst(t.scale(pos)) }

// Config is the live configuration, updated as settings change.
func (i *Instrument) Config() *config.Config {
	return i.cfg
}

// Size is the playing surface in cells.
func (i *Instrument) Size() (float64, float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.width, i.height
}

// Resize sets the playing surface size in cells.
func (i *Instrument) Resize(w, h int) {
	i.mu.Lock()
	i.width, i.height = float64(max(w, 1)), float64(max(h, 1))
	i.mu.Unlock()
}

// AudioAvailable reports whether output is reaching a device.
func (i *Instrument) AudioAvailable() bool {
	return i.output != nil
}

func (i *Instrument) onVoice(ev voice.Event) {
	switch ev.Kind {
	case voice.Started, voice.Restarted:
		i.mu.Lock()
		i.lastNote = ev.Note.Name
		i.mu.Unlock()
		debug.Log("voice", "%s %s (%d active)", ev.Kind, ev.Note.Name, ev.Active)
	case voice.Ended:
		debug.Log("voice", "ended %s (%d active)", ev.Note.Name, ev.Active)
	case voice.Updated:
		debug.LogEvery(50, "voice", "update %s detune=%.1f", ev.Note.Name, ev.Params.Detune)
		return
	}
	i.markLEDs()
	i.notifyUpdate()
}

// notifyUpdate signals the UI without blocking
func (i *Instrument) notifyUpdate() {
	select {
	case i.UpdateChan <- struct{}{}:
	default:
	}
}

// Welcome reports whether the welcome screen is showing.
func (i *Instrument) Welcome() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.welcome
}

// ShowWelcome brings the welcome screen back.
func (i *Instrument) ShowWelcome() {
	i.mu.Lock()
	i.welcome = true
	i.mu.Unlock()
}

// DismissWelcome hides the welcome screen and wakes the audio device.
func (i *Instrument) DismissWelcome() {
	i.mu.Lock()
	i.welcome = false
	i.mu.Unlock()
	if err := i.Graph.Resume(); err != nil {
		debug.Log("audio", "resume: %v", err)
	}
	i.notifyUpdate()
}

// Close stops playback and the audio device and saves settings.
func (i *Instrument) Close() error {
	i.Patterns.Stop()
	i.Keys.ReleaseAll()
	i.Voices.StopAll()
	i.stopLEDLoop()

	i.cfg.Music.Scale = i.Scales.Kind()
	i.cfg.Music.Key = i.Scales.Key()
	i.cfg.Music.Octave = i.Scales.Octave()
	i.cfg.Music.Tempo = i.Patterns.Tempo()
	i.cfg.UI.LastPattern = i.Patterns.Selected()
	debug.Dump("config", "saving", i.cfg)

	if i.output != nil {
		if err := i.output.Close(); err != nil {
			debug.Log("audio", "close: %v", err)
		}
	}
	return i.cfg.Save()
}
