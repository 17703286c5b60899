package render

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"soundspace/clock"
)

// Particle is one short-lived dot thrown off when a note starts. Positions
// and drift are in cells.
type Particle struct {
	X, Y     float64
	DX, DY   float64 // drift over the whole lifetime
	Size     float64
	Hue      float64
	Light    float64
	Born     time.Time
	Lifetime time.Duration
}

// progress is how far through its life p is at now, in [0, 1].
func (p Particle) progress(now time.Time) float64 {
	if p.Lifetime <= 0 {
		return 1
	}
	return min(1, max(0, float64(now.Sub(p.Born))/float64(p.Lifetime)))
}

// Particles is the live particle set.
type Particles struct {
	mu   sync.Mutex
	clk  clock.Clock
	rng  *rand.Rand
	live []Particle
}

func NewParticles(clk clock.Clock, rng *rand.Rand) *Particles {
	if clk == nil {
		clk = clock.Real{}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1))
	}
	return &Particles{clk: clk, rng: rng}
}

// Burst spawns 2 to 4 particles around (x, y). The hue follows x across a
// surface width wide.
func (p *Particles) Burst(x, y, width float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	hue := 0.0
	if width > 0 {
		hue = min(1, max(0, x/width)) * 360
	}
	now := p.clk.Now()
	n := p.rng.IntN(3) + 2
	for range n {
		p.live = append(p.live, Particle{
			X:        x + p.rng.Float64()*6 - 3,
			Y:        y + p.rng.Float64()*3 - 1.5,
			DX:       p.rng.Float64()*5 - 2.5,
			DY:       -(p.rng.Float64()*2.5 + 0.5),
			Size:     p.rng.Float64()*4 + 2,
			Hue:      hue,
			Light:    0.7 + p.rng.Float64()*0.2,
			Born:     now,
			Lifetime: time.Duration((0.8 + p.rng.Float64()*0.8) * float64(time.Second)),
		})
	}
}

// Live drops expired particles and returns the rest.
func (p *Particles) Live(now time.Time) []Particle {
	p.mu.Lock()
	defer p.mu.Unlock()
	keep := p.live[:0]
	for _, pt := range p.live {
		if now.Sub(pt.Born) < pt.Lifetime {
			keep = append(keep, pt)
		}
	}
	clear(p.live[len(keep):])
	p.live = keep
	return append([]Particle(nil), keep...)
}

func (p *Particles) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

// ParticleLayer draws particles over Next.
type ParticleLayer struct {
	Next      Renderer
	Particles *Particles
}

var particleGlyphs = []rune{'●', '•', '∙', '·'}

func (l *ParticleLayer) Draw(g *Grid, f Frame) {
	l.Next.Draw(g, f)
	for _, pt := range l.Particles.Live(f.Now) {
		t := pt.progress(f.Now)
		x := int(pt.X + pt.DX*t)
		y := int(pt.Y + pt.DY*t)
		cell := g.At(x, y)
		if cell == nil {
			continue
		}
		// Larger particles start on a bigger glyph; all shrink as they fade.
		i := int(t*float64(len(particleGlyphs))) + int(6-pt.Size)/2
		i = min(max(i, 0), len(particleGlyphs)-1)
		col := colorful.Hsl(pt.Hue, 1, pt.Light)
		g.Put(x, y, particleGlyphs[i], cell.BG.BlendRgb(col, 0.8*(1-t)).Clamped())
	}
}
