// Package recorder captures the rendered output into an in-memory take and
// saves takes as WAV files.
package recorder

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"soundspace/clock"
	"soundspace/synth"
)

var (
	// ErrUnavailable means there is no audio source to record from.
	ErrUnavailable = errors.New("recording unavailable")
	// ErrDisabled is returned after ErrUnavailable has been reported once.
	ErrDisabled = errors.New("recording disabled")
	ErrNoTake   = errors.New("no recording")
)

// Source is where audio is captured from.
type Source interface {
	AddTap(t synth.Tap)
	RemoveTap(t synth.Tap)
	SampleRate() int
}

// Recorder holds at most one take at a time.
type Recorder struct {
	mu        sync.Mutex
	src       Source
	clk       clock.Clock
	recording bool
	disabled  bool
	started   time.Time
	buf       []float32
	take      *Take
}

// New returns a recorder on src. A nil src makes every Start fail.
func New(src Source, clk clock.Clock) *Recorder {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Recorder{src: src, clk: clk}
}

// Start begins a new take. The first failure is returned with a user
// message; after that recording stays disabled and Start returns
// ErrDisabled.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disabled {
		return ErrDisabled
	}
	if r.src == nil {
		r.disabled = true
		return fault.Wrap(ErrUnavailable,
			fmsg.WithDesc("no audio source", "Recording is not available: audio output could not be opened"),
			ftag.With(ftag.PermissionDenied),
		)
	}
	if r.recording {
		return nil
	}

	r.buf = r.buf[:0]
	r.recording = true
	r.started = r.clk.Now()
	r.src.AddTap(r)
	return nil
}

// Tap appends rendered audio while recording.
func (r *Recorder) Tap(block []float32) {
	r.mu.Lock()
	if r.recording {
		r.buf = append(r.buf, block...)
	}
	r.mu.Unlock()
}

// Stop ends the current take and keeps it as the latest take.
func (r *Recorder) Stop() (*Take, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil, ErrNoTake
	}
	r.recording = false
	src := r.src
	take := &Take{
		Samples:    slices.Clone(r.buf),
		SampleRate: src.SampleRate(),
		Recorded:   r.clk.Now(),
	}
	r.take = take
	r.mu.Unlock()

	src.RemoveTap(r)
	return take, nil
}

// Toggle starts or stops recording. It returns the finished take when it
// stops one.
func (r *Recorder) Toggle() (*Take, error) {
	if r.Recording() {
		return r.Stop()
	}
	return nil, r.Start()
}

func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Available is false once a start failed.
func (r *Recorder) Available() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.disabled
}

// Elapsed is the length of the take in progress.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return 0
	}
	return r.clk.Now().Sub(r.started)
}

// Take returns the latest finished take, if any.
func (r *Recorder) Take() *Take {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.take
}

// Discard drops the latest take.
func (r *Recorder) Discard() {
	r.mu.Lock()
	r.take = nil
	r.mu.Unlock()
}

// FormatElapsed renders d as MM:SS.
func FormatElapsed(d time.Duration) string {
	s := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
