// Package voicetest provides an in-memory voice.Device that records the
// graph it is asked to build.
package voicetest

import (
	"errors"
	"sync"
	"time"

	"soundspace/voice"
)

// Node kinds.
const (
	KindGenerator = "generator"
	KindAmplitude = "amplitude"
	KindFilter    = "filter"
	KindBus       = "bus"
)

// Node is a recorded device node.
type Node struct {
	dev  *Device
	ID   int
	Kind string

	Waveform  voice.Waveform
	Frequency float64
	Detune    float64
	Started   bool
	Stopped   bool

	Level      float64
	RampTarget float64
	RampOver   time.Duration
	Ramps      int

	Cutoff float64
}

func (n *Node) NodeID() int { return n.ID }

func (n *Node) Start() {
	n.dev.mu.Lock()
	n.Started = true
	n.dev.mu.Unlock()
}

func (n *Node) Stop() {
	n.dev.mu.Lock()
	n.Stopped = true
	n.dev.mu.Unlock()
}

func (n *Node) SetDetune(cents float64) {
	n.dev.mu.Lock()
	n.Detune = cents
	n.dev.mu.Unlock()
}

func (n *Node) SetValueNow(v float64) {
	n.dev.mu.Lock()
	n.Level = v
	n.RampOver = 0
	n.dev.mu.Unlock()
}

func (n *Node) Value() float64 {
	n.dev.mu.Lock()
	defer n.dev.mu.Unlock()
	return n.Level
}

func (n *Node) RampExponential(target float64, d time.Duration) {
	n.dev.mu.Lock()
	n.RampTarget = target
	n.RampOver = d
	n.Ramps++
	n.dev.mu.Unlock()
}

func (n *Node) SetCutoff(hz float64) {
	n.dev.mu.Lock()
	n.Cutoff = hz
	n.dev.mu.Unlock()
}

// Edge is a recorded connection.
type Edge struct{ From, To int }

// ErrConnect is returned by Connect when FailConnect is set.
var ErrConnect = errors.New("connect refused")

// Device is a fake voice.Device.
type Device struct {
	mu      sync.Mutex
	nodes   []*Node
	Edges   []Edge
	state   voice.DeviceState
	Resumes int

	Wave        voice.Waveform
	Send        voice.Sends
	FailConnect bool

	output, delay, reverb *Node
}

// New returns a running fake device with no effect sends.
func New() *Device {
	d := &Device{}
	d.output = d.add(KindBus)
	d.delay = d.add(KindBus)
	d.reverb = d.add(KindBus)
	return d
}

func (d *Device) add(kind string) *Node {
	n := &Node{dev: d, ID: len(d.nodes), Kind: kind}
	d.nodes = append(d.nodes, n)
	return n
}

// Suspend puts the device in the suspended state.
func (d *Device) Suspend() {
	d.mu.Lock()
	d.state = voice.Suspended
	d.mu.Unlock()
}

func (d *Device) State() voice.DeviceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Device) Resume() error {
	d.mu.Lock()
	d.state = voice.Running
	d.Resumes++
	d.mu.Unlock()
	return nil
}

func (d *Device) NewGenerator(w voice.Waveform, freq, detune float64) voice.Generator {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.add(KindGenerator)
	n.Waveform, n.Frequency, n.Detune = w, freq, detune
	return n
}

func (d *Device) NewAmplitude(level float64) voice.Amplitude {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.add(KindAmplitude)
	n.Level = level
	return n
}

func (d *Device) NewFilter(cutoff float64) voice.Filter {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.add(KindFilter)
	n.Cutoff = cutoff
	return n
}

func (d *Device) Connect(from, to voice.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailConnect {
		return ErrConnect
	}
	d.Edges = append(d.Edges, Edge{from.NodeID(), to.NodeID()})
	return nil
}

func (d *Device) Output() voice.Node { return d.output }
func (d *Device) DelayInput() voice.Node { return d.delay }
func (d *Device) ReverbInput() voice.Node { return d.reverb }

func (d *Device) Waveform() voice.Waveform {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Wave
}

func (d *Device) Sends() voice.Sends {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Send
}

// Nodes returns the nodes of a kind in creation order.
func (d *Device) Nodes(kind string) []*Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Node
	for _, n := range d.nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Connected reports whether an edge from -> to was recorded.
func (d *Device) Connected(from, to voice.Node) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, e := range d.Edges {
		if e.From == from.NodeID() && e.To == to.NodeID() {
			return true
		}
	}
	return false
}

// Sounding counts generators that were started and not stopped.
func (d *Device) Sounding() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, node := range d.nodes {
		if node.Kind == KindGenerator && node.Started && !node.Stopped {
			n++
		}
	}
	return n
}
