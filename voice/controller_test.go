package voice_test

import (
	"errors"
	"testing"
	"time"

	"soundspace/clock"
	"soundspace/mapping"
	"soundspace/scale"
	"soundspace/voice"
	"soundspace/voice/voicetest"
)

var (
	c4 = scale.Note{Name: "C4", Frequency: 261.63}
	e4 = scale.Note{Name: "E4", Frequency: 329.63}
)

func newController(t *testing.T, opts ...voice.Option) (*voice.Controller, *voicetest.Device, *clock.Manual) {
	t.Helper()
	dev := voicetest.New()
	clk := clock.NewManual(time.Unix(0, 0))
	opts = append([]voice.Option{voice.WithClock(clk)}, opts...)
	return voice.NewController(dev, opts...), dev, clk
}

func TestStartTwiceKeepsOneVoice(t *testing.T) {
	ctl, dev, _ := newController(t)
	p := mapping.ParametersForY(100, 400)
	p2 := mapping.ParametersForY(350, 400)

	if err := ctl.Start(c4, p); err != nil {
		t.Fatal(err)
	}
	if err := ctl.Start(c4, p2); err != nil {
		t.Fatal(err)
	}

	if ctl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ctl.Len())
	}
	gens := dev.Nodes(voicetest.KindGenerator)
	if len(gens) != 1 {
		t.Fatalf("allocated %d generators, want 1", len(gens))
	}
	if gens[0].Detune != p2.Detune {
		t.Errorf("detune = %v, want %v", gens[0].Detune, p2.Detune)
	}
	snap, _ := ctl.Voice("C4")
	if snap.Params != p2 {
		t.Errorf("params = %+v, want %+v", snap.Params, p2)
	}
}

func TestStopMissingIsNoop(t *testing.T) {
	ctl, dev, clk := newController(t)
	ctl.Stop(e4)
	ctl.Update(e4, mapping.Center)
	if ctl.Len() != 0 || clk.Pending() != 0 || len(dev.Edges) != 0 {
		t.Errorf("stop on empty registry had effects: len=%d pending=%d edges=%d", ctl.Len(), clk.Pending(), len(dev.Edges))
	}
}

func TestReleaseRemovesVoice(t *testing.T) {
	ctl, dev, clk := newController(t)
	if err := ctl.Start(c4, mapping.Center); err != nil {
		t.Fatal(err)
	}
	ctl.Stop(c4)

	snap, ok := ctl.Voice("C4")
	if !ok || snap.State != voice.Releasing {
		t.Fatalf("after stop: %+v %v, want releasing", snap, ok)
	}
	amp := dev.Nodes(voicetest.KindAmplitude)[0]
	if amp.RampTarget != 0.001 || amp.RampOver != voice.ReleaseTime {
		t.Errorf("ramp = %v over %v", amp.RampTarget, amp.RampOver)
	}

	// Stopping again does not reschedule.
	ctl.Stop(c4)
	if amp.Ramps != 1 || clk.Pending() != 1 {
		t.Errorf("second stop: ramps=%d pending=%d", amp.Ramps, clk.Pending())
	}

	clk.Advance(voice.ReleaseTime - time.Millisecond)
	if !ctl.Has("C4") {
		t.Fatal("voice removed before release window elapsed")
	}
	clk.Advance(time.Millisecond)
	if ctl.Has("C4") {
		t.Fatal("voice still registered after release")
	}
	if dev.Sounding() != 0 {
		t.Error("generator not stopped")
	}

	if err := ctl.Start(c4, mapping.Center); err != nil {
		t.Fatal(err)
	}
	if n := len(dev.Nodes(voicetest.KindGenerator)); n != 2 {
		t.Errorf("restart allocated %d generators total, want 2", n)
	}
}

func TestStartDuringReleaseReusesVoice(t *testing.T) {
	ctl, dev, clk := newController(t)
	var kinds []voice.EventKind
	ctl.Observe(func(ev voice.Event) { kinds = append(kinds, ev.Kind) })

	ctl.Start(c4, mapping.Center)
	ctl.Stop(c4)
	clk.Advance(100 * time.Millisecond)

	p := mapping.ParametersForY(0, 1)
	if err := ctl.Start(c4, p); err != nil {
		t.Fatal(err)
	}
	clk.Advance(time.Second)

	snap, ok := ctl.Voice("C4")
	if !ok || snap.State != voice.Sounding {
		t.Fatalf("voice = %+v, %v; want sounding", snap, ok)
	}
	if n := len(dev.Nodes(voicetest.KindGenerator)); n != 1 {
		t.Errorf("allocated %d generators, want 1", n)
	}
	amp := dev.Nodes(voicetest.KindAmplitude)[0]
	if amp.Level != voice.DefaultLevel {
		t.Errorf("level = %v, want %v", amp.Level, voice.DefaultLevel)
	}
	want := []voice.EventKind{voice.Started, voice.Released, voice.Restarted}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, kinds[i], want[i])
		}
	}

	// A later stop still completes normally.
	ctl.Stop(c4)
	clk.Advance(voice.ReleaseTime)
	if ctl.Has("C4") {
		t.Error("voice not removed after second release")
	}
}

func TestDragBetweenNotes(t *testing.T) {
	ctl, _, clk := newController(t)
	var log []string
	ctl.Observe(func(ev voice.Event) {
		log = append(log, ev.Kind.String()+" "+ev.Note.Name)
	})

	ctl.Start(c4, mapping.Center)
	ctl.Stop(c4)
	ctl.Start(e4, mapping.Center)

	want := []string{"started C4", "released C4", "started E4"}
	for i := range want {
		if i >= len(log) || log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
	clk.Advance(voice.ReleaseTime)
	if ctl.Has("C4") || !ctl.Has("E4") {
		t.Errorf("after release: active=%v", ctl.Active())
	}
}

func TestStartResumesSuspendedDevice(t *testing.T) {
	ctl, dev, _ := newController(t)
	dev.Suspend()
	ctl.Start(c4, mapping.Center)
	if dev.Resumes != 1 || dev.State() != voice.Running {
		t.Errorf("resumes = %d, state = %v", dev.Resumes, dev.State())
	}
	ctl.Start(e4, mapping.Center)
	if dev.Resumes != 1 {
		t.Errorf("running device resumed again")
	}
}

func TestBaseLayerRouting(t *testing.T) {
	ctl, dev, _ := newController(t)
	dev.Send = voice.Sends{Delay: true, Reverb: 0.5}
	dev.Wave = voice.Square
	ctl.Start(c4, mapping.Center)

	gen := dev.Nodes(voicetest.KindGenerator)[0]
	amp := dev.Nodes(voicetest.KindAmplitude)[0]
	if gen.Waveform != voice.Square || !gen.Started {
		t.Errorf("generator = %+v", gen)
	}
	if !dev.Connected(gen, amp) || !dev.Connected(amp, dev.Output()) || !dev.Connected(amp, dev.DelayInput()) {
		t.Errorf("edges = %v", dev.Edges)
	}
	if len(dev.Nodes(voicetest.KindFilter)) != 0 {
		t.Error("base layer created a filter")
	}
}

func TestEnhancedLayer(t *testing.T) {
	ctl, dev, _ := newController(t, voice.WithLayer(voice.Enhanced()))
	dev.Send = voice.Sends{Reverb: 0.3}
	p := mapping.ParametersForY(0.2, 1)
	ctl.Start(c4, p)

	gen := dev.Nodes(voicetest.KindGenerator)[0]
	amps := dev.Nodes(voicetest.KindAmplitude)
	filters := dev.Nodes(voicetest.KindFilter)
	if len(filters) != 1 || len(amps) != 2 {
		t.Fatalf("filters=%d amps=%d", len(filters), len(amps))
	}
	f, amp, wet := filters[0], amps[0], amps[1]
	if !dev.Connected(gen, f) || !dev.Connected(f, amp) || dev.Connected(gen, amp) {
		t.Errorf("filter not between generator and amplitude: %v", dev.Edges)
	}
	if dev.Connected(amp, dev.DelayInput()) {
		t.Error("delay send connected with delay off")
	}
	if wet.Level != 0.3 || !dev.Connected(amp, wet) || !dev.Connected(wet, dev.ReverbInput()) {
		t.Errorf("reverb send wrong: level=%v edges=%v", wet.Level, dev.Edges)
	}
	if f.Cutoff != p.FilterCutoff() {
		t.Errorf("cutoff = %v, want %v", f.Cutoff, p.FilterCutoff())
	}

	p2 := mapping.ParametersForY(0.9, 1)
	ctl.Update(c4, p2)
	if f.Cutoff != p2.FilterCutoff() || gen.Detune != p2.Detune {
		t.Errorf("update: cutoff=%v detune=%v", f.Cutoff, gen.Detune)
	}
}

func TestStartConnectFailure(t *testing.T) {
	ctl, dev, _ := newController(t)
	dev.FailConnect = true
	err := ctl.Start(c4, mapping.Center)
	if !errors.Is(err, voicetest.ErrConnect) {
		t.Fatalf("err = %v", err)
	}
	if ctl.Has("C4") || dev.Sounding() != 0 {
		t.Error("failed start left a voice behind")
	}
}

func TestStopAll(t *testing.T) {
	ctl, _, clk := newController(t)
	ctl.Start(c4, mapping.Center)
	ctl.Start(e4, mapping.Center)
	ctl.StopAll()
	for _, s := range ctl.Active() {
		if s.State != voice.Releasing {
			t.Errorf("%s is %v", s.Note.Name, s.State)
		}
	}
	var last voice.Event
	ctl.Observe(func(ev voice.Event) { last = ev })
	clk.Advance(voice.ReleaseTime)
	if ctl.Len() != 0 || last.Kind != voice.Ended || last.Active != 0 {
		t.Errorf("len=%d last=%+v", ctl.Len(), last)
	}
}

func TestParseWaveform(t *testing.T) {
	for _, name := range []string{"sine", "square", "sawtooth", "triangle"} {
		w, err := voice.ParseWaveform(name)
		if err != nil || w.String() != name {
			t.Errorf("ParseWaveform(%q) = %v, %v", name, w, err)
		}
	}
	if _, err := voice.ParseWaveform("noise"); err == nil {
		t.Error("expected error for unknown waveform")
	}
	if voice.Triangle.Next() != voice.Sine {
		t.Error("Next does not wrap")
	}
}
