package clock

import (
	"testing"
	"time"
)

func TestManualFiresInOrder(t *testing.T) {
	c := NewManual(time.Unix(0, 0))
	var got []string
	c.AfterFunc(300*time.Millisecond, func() { got = append(got, "b") })
	c.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	c.AfterFunc(time.Second, func() { got = append(got, "late") })

	c.Advance(500 * time.Millisecond)

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("fired %v, want [a b]", got)
	}
	if c.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", c.Pending())
	}
	if want := time.Unix(0, 0).Add(500 * time.Millisecond); !c.Now().Equal(want) {
		t.Errorf("Now() = %v, want %v", c.Now(), want)
	}
}

func TestManualStop(t *testing.T) {
	c := NewManual(time.Unix(0, 0))
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })
	if !tm.Stop() {
		t.Error("Stop() on pending timer = false")
	}
	if tm.Stop() {
		t.Error("second Stop() = true")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestManualChainedTimers(t *testing.T) {
	c := NewManual(time.Unix(0, 0))
	var at []time.Duration
	start := c.Now()
	var tick func()
	tick = func() {
		at = append(at, c.Now().Sub(start))
		if len(at) < 3 {
			c.AfterFunc(500*time.Millisecond, tick)
		}
	}
	c.AfterFunc(0, tick)

	c.Advance(2 * time.Second)

	want := []time.Duration{0, 500 * time.Millisecond, time.Second}
	if len(at) != len(want) {
		t.Fatalf("ticks at %v, want %v", at, want)
	}
	for i := range want {
		if at[i] != want[i] {
			t.Errorf("tick %d at %v, want %v", i, at[i], want[i])
		}
	}
}
