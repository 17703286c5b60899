package recorder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/go-audio/wav"

	"soundspace/clock"
	"soundspace/synth"
	"soundspace/voice"
)

func TestRecordTake(t *testing.T) {
	g := synth.NewGraph(8000)
	osc := g.NewGenerator(voice.Sine, 440, 0)
	amp := g.NewAmplitude(0.5)
	g.Connect(osc, amp)
	g.Connect(amp, g.Output())
	osc.Start()

	clk := clock.NewManual(time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC))
	r := New(g, clk)

	g.Render(make([]float32, 100)) // before recording
	if _, err := r.Toggle(); err != nil {
		t.Fatal(err)
	}
	if !r.Recording() {
		t.Fatal("not recording")
	}
	g.Render(make([]float32, 800))
	clk.Advance(65 * time.Second)
	if got := FormatElapsed(r.Elapsed()); got != "01:05" {
		t.Errorf("elapsed = %s", got)
	}

	take, err := r.Toggle()
	if err != nil {
		t.Fatal(err)
	}
	g.Render(make([]float32, 100)) // after stopping

	if len(take.Samples) != 800 || take.SampleRate != 8000 {
		t.Errorf("take = %d samples at %d", len(take.Samples), take.SampleRate)
	}
	if take.Duration() != 100*time.Millisecond {
		t.Errorf("duration = %v", take.Duration())
	}
	if r.Take() != take {
		t.Error("latest take not kept")
	}
	if _, err := r.Stop(); !errors.Is(err, ErrNoTake) {
		t.Errorf("stop while idle err = %v", err)
	}

	r.Discard()
	if r.Take() != nil {
		t.Error("discard kept take")
	}
}

func TestUnavailableReportedOnce(t *testing.T) {
	r := New(nil, nil)
	err := r.Start()
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("first start err = %v", err)
	}
	if fmsg.GetIssue(err) == "" {
		t.Error("no user message")
	}
	if ftag.Get(err) != ftag.PermissionDenied {
		t.Errorf("tag = %v", ftag.Get(err))
	}
	if r.Available() {
		t.Error("still available")
	}
	if err := r.Start(); !errors.Is(err, ErrDisabled) {
		t.Errorf("second start err = %v", err)
	}
}

func TestFileSinkWritesWAV(t *testing.T) {
	take := &Take{
		Samples:    []float32{0, 0.5, -0.5, 1, -1, 2},
		SampleRate: 22050,
		Recorded:   time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC),
	}
	dir := filepath.Join(t.TempDir(), "takes")
	path, err := FileSink{Dir: dir}.Save(take)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "soundspace-recording-2024-03-09-14-05-07.wav" {
		t.Errorf("file name = %s", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	if dec.SampleRate != 22050 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("format = %d Hz, %d ch, %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	want := []int{0, 16383, -16383, 32767, -32767, 32767}
	if len(buf.Data) != len(want) {
		t.Fatalf("decoded %d samples", len(buf.Data))
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, buf.Data[i], want[i])
		}
	}
}

func TestSaveWithoutTake(t *testing.T) {
	if _, err := (FileSink{Dir: t.TempDir()}).Save(nil); !errors.Is(err, ErrNoTake) {
		t.Errorf("err = %v", err)
	}
}
