package sequencer

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"soundspace/clock"
	"soundspace/input"
	"soundspace/mapping"
	"soundspace/scale"
	"soundspace/voice"
	"soundspace/voice/voicetest"
)

var epoch = time.Unix(0, 0)

type call struct {
	op   string
	note string
	at   time.Duration
}

type voices struct {
	clk    *clock.Manual
	calls  []call
	params []mapping.TimbreParameters
}

func (v *voices) log(op, note string) {
	v.calls = append(v.calls, call{op, note, v.clk.Now().Sub(epoch)})
}

func (v *voices) Start(n scale.Note, p mapping.TimbreParameters) error {
	v.log("start", n.Name)
	v.params = append(v.params, p)
	return nil
}
func (v *voices) Update(n scale.Note, p mapping.TimbreParameters) { v.log("update", n.Name) }
func (v *voices) Stop(n scale.Note)                               { v.log("stop", n.Name) }
func (v *voices) StopAll()                                        { v.log("stopall", "") }

func (v *voices) take() []call {
	c := v.calls
	v.calls = nil
	return c
}

const testPatterns = `
- id: triad
  name: Triad
  notes: [0, 2, 4]
  durations: [0.5, 0.5, 1]
- id: wide
  name: Wide
  notes: [0, 20, 1]
  durations: [1, 1, 1]
`

func newTestPlayer(t *testing.T, opts ...Option) (*Player, *voices, *clock.Manual) {
	t.Helper()
	lib, err := ParseLibrary([]byte(testPatterns))
	if err != nil {
		t.Fatal(err)
	}
	clk := clock.NewManual(epoch)
	v := &voices{clk: clk}
	opts = append([]Option{WithClock(clk), WithLibrary(lib), WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return NewPlayer(v, scale.Default(), input.Size{W: 1000, H: 400}, opts...), v, clk
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestPlayerTiming(t *testing.T) {
	p, v, clk := newTestPlayer(t)
	p.Select("triad")
	if err := p.Play(); err != nil {
		t.Fatal(err)
	}
	clk.Advance(ms(1450))

	want := []call{
		{"start", "C4", 0},
		{"stop", "C4", ms(200)},
		{"start", "E4", ms(500)},
		{"stop", "E4", ms(700)},
		{"start", "A4", ms(1000)},
		{"stop", "A4", ms(1400)},
	}
	if got := v.take(); !slices.Equal(got, want) {
		t.Errorf("calls =\n%v\nwant\n%v", got, want)
	}
	for _, prm := range v.params {
		if prm != mapping.ParametersForY(200, 400) {
			t.Errorf("params = %+v, want mid-surface", prm)
		}
	}
}

func TestPlayerLoops(t *testing.T) {
	p, v, clk := newTestPlayer(t)
	p.Select("triad")
	p.Play()
	clk.Advance(ms(1500))

	var starts []string
	for _, c := range v.take() {
		if c.op == "start" {
			starts = append(starts, c.note)
		}
	}
	if want := []string{"C4", "E4", "A4", "C4"}; !slices.Equal(starts, want) {
		t.Errorf("starts = %v, want %v", starts, want)
	}
}

func TestPlayerSkipsIndicesBeyondScale(t *testing.T) {
	var steps []Step
	p, v, clk := newTestPlayer(t, WithStepHook(func(s Step) { steps = append(steps, s) }))
	p.Select("wide")
	p.Play()
	clk.Advance(ms(1000))

	got := v.take()
	if len(got) != 3 || got[2] != (call{"start", "D4", ms(1000)}) {
		t.Errorf("calls = %v", got)
	}
	if len(steps) != 2 || steps[1].Index != 2 || steps[1].Hold != ms(400) {
		t.Errorf("steps = %+v", steps)
	}
}

func TestPlayerEmptySelection(t *testing.T) {
	p, v, clk := newTestPlayer(t)
	err := p.Play()
	if err == nil {
		t.Fatal("expected error")
	}
	if got := fmsg.GetIssue(err); got != "Please select a pattern first" {
		t.Errorf("issue = %q", got)
	}
	if ftag.Get(err) != ftag.InvalidArgument {
		t.Errorf("tag = %v", ftag.Get(err))
	}
	if p.Playing() || len(v.calls) != 0 || clk.Pending() != 0 {
		t.Error("empty selection had side effects")
	}
}

func TestPlayerStop(t *testing.T) {
	p, v, clk := newTestPlayer(t)
	p.Select("triad")
	p.Play()
	clk.Advance(ms(100))
	p.Stop()
	p.Stop()
	clk.Advance(ms(3000))

	want := []call{{"start", "C4", 0}, {"stopall", "", ms(100)}}
	if got := v.take(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if clk.Pending() != 0 {
		t.Errorf("pending timers = %d", clk.Pending())
	}
}

func TestPlayerTempoChangeRestartsInterval(t *testing.T) {
	p, v, clk := newTestPlayer(t)
	p.Select("triad")
	p.Play()
	clk.Advance(ms(300))
	if got := p.SetTempo(60); got != 60 {
		t.Fatalf("SetTempo = %d", got)
	}
	clk.Advance(ms(1000))

	got := v.take()
	if len(got) != 3 || got[2] != (call{"start", "E4", ms(1300)}) {
		t.Errorf("calls = %v", got)
	}
}

func TestPlayerTempoChangeRightAfterPlay(t *testing.T) {
	var steps []Step
	p, v, clk := newTestPlayer(t, WithStepHook(func(s Step) { steps = append(steps, s) }))
	p.Select("triad")
	if err := p.Play(); err != nil {
		t.Fatal(err)
	}
	// first step played and the next beat armed before Play returns
	if got := v.take(); !slices.Equal(got, []call{{"start", "C4", 0}}) {
		t.Fatalf("calls = %v", got)
	}
	if len(steps) != 1 || clk.Pending() != 2 {
		t.Fatalf("steps=%d pending=%d", len(steps), clk.Pending())
	}

	p.SetTempo(60)
	clk.Advance(ms(1000))
	want := []call{{"stop", "C4", ms(200)}, {"start", "E4", ms(1000)}}
	if got := v.take(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestTempoClamp(t *testing.T) {
	p, _, _ := newTestPlayer(t)
	for _, tc := range []struct{ in, want int }{{10, 40}, {120, 120}, {500, 200}} {
		if got := p.SetTempo(tc.in); got != tc.want {
			t.Errorf("SetTempo(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestRandomPattern(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for range 200 {
		p := Random(rng, 5)
		if p.Len() < 4 || p.Len() > 11 {
			t.Fatalf("length %d", p.Len())
		}
		if err := p.Validate(); err != nil {
			t.Fatal(err)
		}
		for i, n := range p.Notes {
			if n >= 5 {
				t.Fatalf("index %d beyond scale", n)
			}
			if d := p.Durations[i]; d != 0.25 && d != 0.5 && d != 1 {
				t.Fatalf("duration %v", d)
			}
		}
	}
}

func TestLibrary(t *testing.T) {
	lib, err := LoadLibrary()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"arpeggio-up", "arpeggio-down", "scale-run", "bounce", "melody-1", RandomID}
	if got := lib.IDs(); !slices.Equal(got, want) {
		t.Errorf("IDs = %v", got)
	}
	if lib.Name("melody-1") != "Simple Melody" {
		t.Errorf("Name = %q", lib.Name("melody-1"))
	}
	if lib.Next("") != "arpeggio-up" || lib.Next(RandomID) != "arpeggio-up" || lib.Next("bounce") != "melody-1" {
		t.Error("Next does not cycle")
	}

	p, _ := lib.Get("scale-run")
	p.Notes[0] = 99
	if q, _ := lib.Get("scale-run"); q.Notes[0] != 0 {
		t.Error("Get returned shared storage")
	}
}

func TestParseLibraryRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"mismatch":  "- {id: a, notes: [0, 1], durations: [1]}",
		"empty":     "- {id: a, notes: [], durations: []}",
		"duplicate": "- {id: a, notes: [0], durations: [1]}\n- {id: a, notes: [0], durations: [1]}",
		"reserved":  "- {id: random, notes: [0], durations: [1]}",
		"zero":      "- {id: a, notes: [0], durations: [0]}",
	} {
		if _, err := ParseLibrary([]byte(doc)); err == nil || !strings.Contains(err.Error(), "parse patterns") {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestPlayerDrivesController(t *testing.T) {
	clk := clock.NewManual(epoch)
	dev := voicetest.New()
	ctl := voice.NewController(dev, voice.WithClock(clk))
	lib, _ := ParseLibrary([]byte(testPatterns))
	p := NewPlayer(ctl, scale.Default(), input.Size{W: 100, H: 100}, WithClock(clk), WithLibrary(lib))
	p.Select("triad")
	p.Play()

	clk.Advance(ms(100))
	if !ctl.Has("C4") {
		t.Fatal("first step not sounding")
	}
	clk.Advance(ms(400)) // released at 0.2s, gone 0.3s later
	if ctl.Has("C4") {
		t.Error("first note not released")
	}
	p.Stop()
	clk.Advance(voice.ReleaseTime)
	if ctl.Len() != 0 {
		t.Errorf("voices after stop = %d", ctl.Len())
	}
}
