package input

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"soundspace/clock"
	"soundspace/mapping"
	"soundspace/scale"
	"soundspace/voice"
	"soundspace/voice/voicetest"
)

type recorder struct {
	calls  []string
	params []mapping.TimbreParameters
}

func (r *recorder) Start(n scale.Note, p mapping.TimbreParameters) error {
	r.calls = append(r.calls, "start "+n.Name)
	r.params = append(r.params, p)
	return nil
}

func (r *recorder) Update(n scale.Note, p mapping.TimbreParameters) {
	r.calls = append(r.calls, "update "+n.Name)
	r.params = append(r.params, p)
}

func (r *recorder) Stop(n scale.Note) {
	r.calls = append(r.calls, "stop "+n.Name)
}

func (r *recorder) expect(t *testing.T, want ...string) {
	t.Helper()
	if !slices.Equal(r.calls, want) {
		t.Errorf("calls = %q, want %q", r.calls, want)
	}
	r.calls = nil
	r.params = nil
}

type presenter struct {
	moves, bursts []Position
}

func (p *presenter) Move(pos Position)  { p.moves = append(p.moves, pos) }
func (p *presenter) Burst(pos Position) { p.bursts = append(p.bursts, pos) }

var surface = Size{W: 1100, H: 400}

func TestPointerLifecycle(t *testing.T) {
	rec := &recorder{}
	pr := &presenter{}
	p := NewPointer(rec, scale.Default(), surface, pr)

	p.Move(50, 200) // hover
	rec.expect(t)
	if len(pr.moves) != 1 || len(pr.bursts) != 0 {
		t.Errorf("hover: moves=%d bursts=%d", len(pr.moves), len(pr.bursts))
	}

	p.Press(50, 200)
	p.Move(60, 100) // same bucket
	p.Move(150, 100)
	p.Release()
	p.Release()
	rec.expect(t, "start C4", "update C4", "stop C4", "start D4", "stop D4")

	if len(pr.bursts) != 2 {
		t.Errorf("bursts = %d, want 2", len(pr.bursts))
	}
	if y, ok := p.Y(); !ok || y != 100 {
		t.Errorf("Y() = %v, %v", y, ok)
	}
	if _, held := p.Held(); held {
		t.Error("still held after release")
	}
}

func TestPointerPressWhileHeld(t *testing.T) {
	rec := &recorder{}
	p := NewPointer(rec, scale.Default(), surface, nil)

	p.Press(50, 200)
	p.Press(60, 100) // release was lost, same note
	p.Press(150, 200)
	p.Release()
	rec.expect(t, "start C4", "update C4", "stop C4", "start D4", "stop D4")

	dev := voicetest.New()
	clk := clock.NewManual(time.Unix(0, 0))
	ctl := voice.NewController(dev, voice.WithClock(clk))
	p = NewPointer(ctl, scale.Default(), surface, nil)

	p.Press(10, 200)
	p.Press(500, 200)
	p.Release()
	clk.Advance(time.Second)
	if active := ctl.Active(); len(active) != 0 {
		t.Errorf("voices left after release: %+v", active)
	}
}

func TestPointerAcrossScaleChange(t *testing.T) {
	dev := voicetest.New()
	clk := clock.NewManual(time.Unix(0, 0))
	ctl := voice.NewController(dev, voice.WithClock(clk))
	m := scale.Default()
	p := NewPointer(ctl, m, surface, nil)

	p.Press(150, 200)
	old, _ := p.Held()
	if old.Name != "D4" {
		t.Fatalf("pressed %s, want D4", old.Name)
	}
	if err := m.SetKind("chromatic"); err != nil {
		t.Fatal(err)
	}
	v, ok := ctl.Voice("D4")
	if !ok || v.State != voice.Sounding || v.Note != old {
		t.Fatalf("voice after scale change = %+v, %v", v, ok)
	}

	p.Move(450, 200)
	pos, _ := p.Last()
	if pos.Count != 15 || pos.Index != 6 || pos.Note.Name != "F#4" {
		t.Errorf("move mapped to %s (index %d of %d), want F#4 (6 of 15)", pos.Note.Name, pos.Index, pos.Count)
	}
	if v, ok := ctl.Voice("F#4"); !ok || v.State != voice.Sounding {
		t.Errorf("F#4 = %+v, %v", v, ok)
	}
	if v, ok := ctl.Voice("D4"); !ok || v.State != voice.Releasing {
		t.Errorf("D4 = %+v, %v", v, ok)
	}

	p.Release()
	clk.Advance(voice.ReleaseTime)
	if ctl.Len() != 0 {
		t.Errorf("voices=%d after release", ctl.Len())
	}
}

func TestPointerParamsFollowY(t *testing.T) {
	rec := &recorder{}
	p := NewPointer(rec, scale.Default(), surface, nil)
	p.Press(10, 0)
	p.Move(10, 400)
	if len(rec.params) != 2 || rec.params[0].Detune != -50 || rec.params[1].Detune != 50 {
		t.Errorf("params = %+v", rec.params)
	}
}

func TestPointerAndTouchAreIndependent(t *testing.T) {
	rec := &recorder{}
	s := scale.Default()
	p := NewPointer(rec, s, surface, nil)
	touch := NewTouch(rec, s, Size{W: 8, H: 8}, nil)

	p.Press(10, 200)
	touch.Begin(1, 0.5, 4)
	p.Release()
	touch.End(1)
	rec.expect(t, "start C4", "start C4", "stop C4", "stop C4")
}

func TestTouchTakeover(t *testing.T) {
	rec := &recorder{}
	touch := NewTouch(rec, scale.Default(), Size{W: 8, H: 8}, nil)

	touch.Begin(1, 0.5, 4) // column 0 -> C4
	touch.Move(2, 7.5, 4)  // not the primary contact
	touch.Begin(2, 7.5, 4) // column 7 -> C6, takes over
	touch.End(1)           // stale contact
	touch.End(2)
	rec.expect(t, "start C4", "stop C4", "start C6", "stop C6")

	touch.Begin(3, 3.5, 1)
	touch.Cancel()
	rec.expect(t, "start A4", "stop A4")
}

func TestKeyboardPressRelease(t *testing.T) {
	rec := &recorder{}
	pr := &presenter{}
	k := NewKeyboard(rec, scale.Default(), surface, pr)

	if ok, _ := k.Press("q"); ok {
		t.Error("unmapped key handled")
	}
	k.Press("a")
	k.Press("a") // repeat
	k.Press("'")
	k.Release("a")
	k.Release("a")
	rec.expect(t, "start C4", "start C6", "stop C4")

	if len(pr.bursts) != 2 || pr.bursts[0].X != 0 || pr.bursts[1].X != 1100 {
		t.Errorf("bursts = %+v", pr.bursts)
	}
	if pr.bursts[0].Params != mapping.ParametersForY(200, 400) {
		t.Errorf("keyboard notes not centred: %+v", pr.bursts[0].Params)
	}
	if k.Held() != 1 {
		t.Errorf("Held() = %d", k.Held())
	}
}

func TestKeyboardUsesPointerY(t *testing.T) {
	rec := &recorder{}
	s := scale.Default()
	p := NewPointer(rec, s, surface, nil)
	k := NewKeyboard(rec, s, surface, nil, WithY(p.Y))

	p.Move(500, 40)
	k.Press("s")
	if want := mapping.ParametersForY(40, 400); rec.params[0] != want {
		t.Errorf("params = %+v, want %+v", rec.params[0], want)
	}
}

func TestKeyboardReleaseAfterScaleChange(t *testing.T) {
	rec := &recorder{}
	m := scale.Default()
	k := NewKeyboard(rec, m, surface, nil)

	k.Press("d")
	if err := m.SetKey("G"); err != nil {
		t.Fatal(err)
	}
	k.Release("d")
	rec.expect(t, "start E4", "stop E4")
}

func TestKeyboardIgnoresIndexBeyondScale(t *testing.T) {
	rec := &recorder{}
	m, _ := scale.NewModel("blues", "C", 0)
	k := NewKeyboard(rec, m, surface, nil)
	if err := k.PressIndex("midi:90", 13); err != nil {
		t.Fatal(err)
	}
	k.PressIndex("midi:60", 0)
	k.PressIndex("midi:60", 0)
	k.Release("midi:60")
	rec.expect(t, "start C4", "stop C4")
}

func TestKeyboardHoldTimeout(t *testing.T) {
	rec := &recorder{}
	clk := clock.NewManual(time.Unix(0, 0))
	k := NewKeyboard(rec, scale.Default(), surface, nil, WithHold(600*time.Millisecond, clk))

	k.Press("f")
	clk.Advance(500 * time.Millisecond)
	k.Press("f") // repeat extends the hold
	clk.Advance(500 * time.Millisecond)
	rec.expect(t, "start G4")

	clk.Advance(100 * time.Millisecond)
	rec.expect(t, "stop G4")
	if k.Held() != 0 || clk.Pending() != 0 {
		t.Errorf("held=%d pending=%d", k.Held(), clk.Pending())
	}

	k.ReleaseAll()
	rec.expect(t)
}

func TestKeyboardAndPointerShareVoice(t *testing.T) {
	dev := voicetest.New()
	clk := clock.NewManual(time.Unix(0, 0))
	ctl := voice.NewController(dev, voice.WithClock(clk))
	s := scale.Default()
	p := NewPointer(ctl, s, surface, nil)
	k := NewKeyboard(ctl, s, surface, nil)

	k.Press("a")
	p.Press(10, 300)
	if ctl.Len() != 1 || len(dev.Nodes(voicetest.KindGenerator)) != 1 {
		t.Fatalf("voices=%d", ctl.Len())
	}
	p.Release()
	k.Release("a")
	clk.Advance(voice.ReleaseTime)
	if ctl.Len() != 0 {
		t.Errorf("voices=%d after releases", ctl.Len())
	}
}

func ExampleKeyboard() {
	rec := &recorder{}
	k := NewKeyboard(rec, scale.Default(), Size{W: 100, H: 100}, nil)
	for _, key := range []string{"a", "g", "l"} {
		k.Press(key)
	}
	fmt.Println(rec.calls)
	// Output: [start C4 start A4 start G5]
}
