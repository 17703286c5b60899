// Package synth is the software tone-generation device. A Graph holds
// oscillators, gain stages, filters and the shared delay and reverb buses,
// and renders them sample by sample into the buffers an audio output
// pulls. It implements voice.Device.
package synth

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"soundspace/voice"
)

const (
	// MaxDelay is the longest delay time in seconds.
	MaxDelay = 5.0
	// MaxReverb is the highest reverb send level.
	MaxReverb = 0.7

	DefaultSampleRate = 44100
)

var (
	ErrForeignNode = errors.New("node belongs to another graph")
	ErrNotSink     = errors.New("node does not accept inputs")
)

// node is the render side of every graph element. process is called with a
// strictly increasing frame number and must return the same value when
// called twice for one frame, since a node can feed several others.
type node interface {
	voice.Node
	owner() *Graph
	process(frame uint64) float64
	finished() bool
}

// sink is a node that accepts inputs.
type sink interface {
	node
	addInput(n node)
}

// inputs is the summing input list embedded by sinks.
type inputs struct {
	in []node
}

func (s *inputs) addInput(n node) {
	s.in = append(s.in, n)
}

func (s *inputs) sum(frame uint64) float64 {
	var v float64
	for _, n := range s.in {
		v += n.process(frame)
	}
	return v
}

// allFinished reports whether the node has inputs and every one is done.
func (s *inputs) allFinished() bool {
	if len(s.in) == 0 {
		return false
	}
	for _, n := range s.in {
		if !n.finished() {
			return false
		}
	}
	return true
}

func (s *inputs) prune() {
	live := s.in[:0]
	for _, n := range s.in {
		if !n.finished() {
			live = append(live, n)
		}
	}
	clear(s.in[len(live):])
	s.in = live
}

// memo caches a node's output for the current frame.
type memo struct {
	frame uint64
	value float64
	valid bool
}

func (m *memo) get(frame uint64) (float64, bool) {
	if m.valid && m.frame == frame {
		return m.value, true
	}
	return 0, false
}

func (m *memo) set(frame uint64, v float64) float64 {
	m.frame, m.value, m.valid = frame, v, true
	return v
}

// Tap receives every rendered block of mono samples. The slice is only
// valid during the call.
type Tap interface {
	Tap(block []float32)
}

// Graph is the audio graph. All exported methods are safe for concurrent
// use with rendering.
type Graph struct {
	mu    sync.Mutex
	rate  float64
	frame uint64
	ids   int
	state voice.DeviceState

	onResume  func() error
	onSuspend func() error

	wave        voice.Waveform
	delayTime   float64
	reverbLevel float64

	main   *gain
	delay  *delayBus
	reverb *reverbBus
	taps   []Tap

	mono []float32
}

// NewGraph returns a running graph with volume 0.5, no delay and the
// reverb send at 0.2.
func NewGraph(sampleRate int) *Graph {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	g := &Graph{rate: float64(sampleRate), reverbLevel: 0.2}
	g.main = g.newGain(0.5)
	g.main.bus = true
	g.delay = newDelayBus(g)
	g.reverb = newReverbBus(g)
	g.main.addInput(g.delay)
	g.main.addInput(g.reverb)
	return g
}

func (g *Graph) nextID() int {
	g.ids++
	return g.ids
}

func (g *Graph) SampleRate() int {
	return int(g.rate)
}

// Elapsed is the amount of audio rendered so far.
func (g *Graph) Elapsed() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return time.Duration(float64(g.frame) / g.rate * float64(time.Second))
}

func (g *Graph) frames(d time.Duration) uint64 {
	n := math.Round(d.Seconds() * g.rate)
	return uint64(max(1, n))
}

// setHooks installs the callbacks an output uses to follow state changes.
func (g *Graph) setHooks(resume, suspend func() error) {
	g.mu.Lock()
	g.onResume, g.onSuspend = resume, suspend
	g.mu.Unlock()
}

func (g *Graph) State() voice.DeviceState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Resume restarts rendering after Suspend.
func (g *Graph) Resume() error {
	g.mu.Lock()
	if g.state == voice.Running {
		g.mu.Unlock()
		return nil
	}
	g.state = voice.Running
	hook := g.onResume
	g.mu.Unlock()

	if hook != nil {
		return hook()
	}
	return nil
}

// Suspend stops the clock; rendering yields silence until Resume.
func (g *Graph) Suspend() error {
	g.mu.Lock()
	if g.state == voice.Suspended {
		g.mu.Unlock()
		return nil
	}
	g.state = voice.Suspended
	hook := g.onSuspend
	g.mu.Unlock()

	if hook != nil {
		return hook()
	}
	return nil
}

func (g *Graph) NewGenerator(w voice.Waveform, freq, detune float64) voice.Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	o := &oscillator{g: g, id: g.nextID(), wave: w, freq: freq, detune: detune}
	o.retune()
	return o
}

func (g *Graph) NewAmplitude(level float64) voice.Amplitude {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.newGain(level)
}

func (g *Graph) newGain(level float64) *gain {
	return &gain{g: g, id: g.nextID(), level: level}
}

func (g *Graph) NewFilter(cutoff float64) voice.Filter {
	g.mu.Lock()
	defer g.mu.Unlock()
	f := &lowpass{g: g, id: g.nextID(), cutoff: cutoff, q: math.Sqrt2 / 2}
	f.design()
	return f
}

// Connect feeds from into to.
func (g *Graph) Connect(from, to voice.Node) error {
	src, ok := from.(node)
	if !ok || src.owner() != g {
		return fmt.Errorf("connect %d: %w", from.NodeID(), ErrForeignNode)
	}
	dst, ok := to.(sink)
	if !ok {
		return fmt.Errorf("connect to %d: %w", to.NodeID(), ErrNotSink)
	}
	if dst.owner() != g {
		return fmt.Errorf("connect to %d: %w", to.NodeID(), ErrForeignNode)
	}
	if src.NodeID() == dst.NodeID() {
		return fmt.Errorf("connect %d to itself", src.NodeID())
	}

	g.mu.Lock()
	dst.addInput(src)
	g.mu.Unlock()
	return nil
}

func (g *Graph) Output() voice.Node { return g.main }
func (g *Graph) DelayInput() voice.Node { return g.delay }
func (g *Graph) ReverbInput() voice.Node { return g.reverb }

func (g *Graph) Waveform() voice.Waveform {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.wave
}

// SetWaveform sets the shape used by voices started from now on.
func (g *Graph) SetWaveform(w voice.Waveform) {
	g.mu.Lock()
	g.wave = w
	g.mu.Unlock()
}

func (g *Graph) Sends() voice.Sends {
	g.mu.Lock()
	defer g.mu.Unlock()
	return voice.Sends{Delay: g.delayTime > 0, Reverb: g.reverbLevel}
}

// Volume is the main output gain.
func (g *Graph) Volume() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.main.level
}

func (g *Graph) SetVolume(v float64) {
	g.mu.Lock()
	g.main.level = clamp(v, 0, 1)
	g.main.ramping = false
	g.mu.Unlock()
}

// Delay is the delay time in seconds.
func (g *Graph) Delay() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delayTime
}

// SetDelay sets the delay time. The feedback follows the time so longer
// delays repeat more.
func (g *Graph) SetDelay(seconds float64) {
	g.mu.Lock()
	g.delayTime = clamp(seconds, 0, MaxDelay)
	g.delay.setTime(g.delayTime)
	g.mu.Unlock()
}

func (g *Graph) Reverb() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reverbLevel
}

// SetReverb sets the wet send level for voices started from now on.
func (g *Graph) SetReverb(level float64) {
	g.mu.Lock()
	g.reverbLevel = clamp(level, 0, MaxReverb)
	g.mu.Unlock()
}

// AddTap registers t to receive rendered audio.
func (g *Graph) AddTap(t Tap) {
	g.mu.Lock()
	g.taps = append(g.taps, t)
	g.mu.Unlock()
}

func (g *Graph) RemoveTap(t Tap) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, x := range g.taps {
		if x == t {
			g.taps = append(g.taps[:i:i], g.taps[i+1:]...)
			return
		}
	}
}

// Render fills dst with mono samples. A suspended graph renders silence
// and does not advance.
func (g *Graph) Render(dst []float32) {
	g.mu.Lock()
	if g.state == voice.Suspended {
		g.mu.Unlock()
		clear(dst)
		return
	}

	g.main.prune()
	g.delay.prune()
	g.reverb.prune()

	for i := range dst {
		dst[i] = float32(math.Tanh(g.main.process(g.frame)))
		g.frame++
	}
	taps := g.taps
	g.mu.Unlock()

	for _, t := range taps {
		t.Tap(dst)
	}
}

// Read renders interleaved stereo signed 16-bit little endian PCM, the
// format Output opens the device with.
func (g *Graph) Read(p []byte) (int, error) {
	frames := len(p) / 4
	if cap(g.mono) < frames {
		g.mono = make([]float32, frames)
	}
	mono := g.mono[:frames]
	g.Render(mono)

	for i, s := range mono {
		v := int16(clamp(float64(s), -1, 1) * math.MaxInt16)
		p[4*i] = byte(v)
		p[4*i+1] = byte(v >> 8)
		p[4*i+2] = byte(v)
		p[4*i+3] = byte(v >> 8)
	}
	return frames * 4, nil
}

// Live counts the nodes still attached to the output and effect buses.
func (g *Graph) Live() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, in := range [][]node{g.main.in, g.delay.in, g.reverb.in} {
		for _, x := range in {
			if !x.finished() {
				n++
			}
		}
	}
	return n - 2 // the delay and reverb buses themselves
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
