package render

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"soundspace/clock"
	"soundspace/input"
	"soundspace/scale"
)

var black = colorful.Color{}

func frame(w, h int) Frame {
	return Frame{Width: w, Height: h, X: float64(w) / 2, Y: float64(h) / 2, Count: 4, Index: 1, Now: time.Unix(0, 0)}
}

func TestCanvasGridLines(t *testing.T) {
	g := NewGrid(40, 10, black)
	NewCanvas().Draw(g, frame(40, 10))

	// four notes: boundaries at columns 0, 10, 20, 30 and the right edge
	for _, x := range []int{0, 10, 20, 30, 39} {
		if ch := g.At(x, 3).Ch; ch != '│' {
			t.Errorf("column %d row 3 = %q, want vertical line", x, ch)
		}
	}
	// five bands: rows 0, 2, 4, 6, 8 and the bottom edge
	for _, y := range []int{0, 2, 4, 6, 8, 9} {
		if ch := g.At(5, y).Ch; ch != '─' {
			t.Errorf("row %d = %q, want horizontal line", y, ch)
		}
	}
	if ch := g.At(10, 4).Ch; ch != '┼' {
		t.Errorf("crossing = %q", ch)
	}
}

func TestCanvasGradientFadesFromPointer(t *testing.T) {
	g := NewGrid(40, 10, black)
	f := frame(40, 10)
	f.X, f.Y = 5, 5
	NewCanvas().Draw(g, f)

	near := g.At(5, 5).BG
	far := g.At(39, 0).BG
	if near == black {
		t.Fatal("no tint under the pointer")
	}
	if lum(near) <= lum(far) {
		t.Errorf("near %v not brighter than far %v", near.Hex(), far.Hex())
	}
}

func lum(c colorful.Color) float64 { return c.R + c.G + c.B }

func TestCanvasHeldCircleOnlyWhileActive(t *testing.T) {
	f := frame(48, 12)
	idle := NewGrid(48, 12, black)
	NewCanvas().Draw(idle, f)

	f.Active = true
	held := NewGrid(48, 12, black)
	NewCanvas().Draw(held, f)

	if lum(held.At(24, 6).BG) <= lum(idle.At(24, 6).BG) {
		t.Error("held circle not drawn")
	}
	if !strings.ContainsRune(held.Plain(), '·') {
		t.Error("no ripple drawn")
	}
	if strings.ContainsRune(idle.Plain(), '·') {
		t.Error("ripple drawn while idle")
	}
}

func TestSpectrumBars(t *testing.T) {
	f := frame(16, 12)
	f.Spectrum = make([]uint8, 128)
	for i := 0; i < 64; i++ {
		f.Spectrum[i] = 255
	}
	g := NewGrid(16, 12, black)
	(&SpectrumLayer{Next: RendererFunc(func(*Grid, Frame) {})}).Draw(g, f)

	// full bins reach a quarter of the height: 3 rows
	for y := 9; y < 12; y++ {
		if ch := g.At(0, y).Ch; ch != '█' {
			t.Errorf("row %d = %q, want full bar", y, ch)
		}
	}
	if ch := g.At(0, 8).Ch; ch != ' ' {
		t.Errorf("bar too tall: %q", ch)
	}
	if ch := g.At(15, 11).Ch; ch != ' ' {
		t.Errorf("silent bins drew %q", ch)
	}
}

func TestSpectrumLabels(t *testing.T) {
	f := frame(30, 8)
	f.Labels = []string{"C4", "E4", "G4"}
	g := NewGrid(30, 8, black)
	(&SpectrumLayer{Next: NewCanvas()}).Draw(g, f)

	line := strings.Split(g.Plain(), "\n")[6]
	if !strings.HasPrefix(line, "C4") || !strings.HasSuffix(line, "G4") || !strings.Contains(line, "E4") {
		t.Errorf("label row = %q", line)
	}
}

func TestParticlesBurstAndExpire(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	p := NewParticles(clk, rand.New(rand.NewPCG(3, 4)))

	for range 50 {
		before := p.Len()
		p.Burst(10, 5, 40)
		if n := p.Len() - before; n < 2 || n > 4 {
			t.Fatalf("burst spawned %d", n)
		}
	}
	for _, pt := range p.Live(clk.Now()) {
		if pt.Lifetime < 800*time.Millisecond || pt.Lifetime > 1600*time.Millisecond {
			t.Errorf("lifetime %v", pt.Lifetime)
		}
		if pt.Hue != 90 {
			t.Errorf("hue %v, want 90", pt.Hue)
		}
	}

	clk.Advance(1600 * time.Millisecond)
	if live := p.Live(clk.Now()); len(live) != 0 {
		t.Errorf("%d particles outlived their lifetime", len(live))
	}
}

func TestParticleLayerDraws(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	p := NewParticles(clk, rand.New(rand.NewPCG(1, 1)))
	p.Burst(20, 6, 40)

	f := frame(40, 12)
	g := NewGrid(40, 12, black)
	(&ParticleLayer{Next: RendererFunc(func(*Grid, Frame) {}), Particles: p}).Draw(g, f)
	if strings.TrimSpace(strings.ReplaceAll(g.Plain(), "\n", "")) == "" {
		t.Error("no particles drawn")
	}
}

func TestSceneFrame(t *testing.T) {
	s := NewScene(nil)
	sc := scale.Default().Scale()

	f := s.Frame(80, 20, sc, false, nil, time.Unix(0, 0))
	if f.X != 40 || f.Y != 10 || f.Count != len(sc) || len(f.Labels) != len(sc) {
		t.Errorf("idle frame = %+v", f)
	}

	s.Move(input.Position{X: 50, Y: 100, Width: 100, Height: 400, Note: sc[5], Index: 5, Count: len(sc)})
	s.Burst(input.Position{})
	f = s.Frame(80, 20, sc, true, nil, time.Unix(0, 0))
	if f.X != 40 || f.Y != 5 || f.Index != 5 || f.Note != sc[5] || !f.Active {
		t.Errorf("frame = %+v", f)
	}

	f = s.Frame(80, 20, sc[:3], true, nil, time.Unix(0, 0))
	if f.Index != 2 {
		t.Errorf("index not clamped to a shorter scale: %d", f.Index)
	}
}

func TestRenderLines(t *testing.T) {
	c := NewCanvas()
	out := Render(Enhanced(c, NewParticles(nil, nil)), black, frame(20, 6))
	if n := strings.Count(out, "\n") + 1; n != 6 {
		t.Errorf("rendered %d lines, want 6", n)
	}
}
