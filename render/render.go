// Package render draws the playing surface into terminal cells. A Canvas
// draws the base picture for a Frame; layers such as SpectrumLayer and
// ParticleLayer wrap another Renderer and draw over it.
package render

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"soundspace/mapping"
	"soundspace/scale"
)

// Frame is everything needed to draw one picture. Renderers keep no state
// between frames; X and Y are in cells.
type Frame struct {
	Width, Height int
	X, Y          float64
	Note          scale.Note
	Index, Count  int
	Labels        []string
	Params        mapping.TimbreParameters
	Active        bool
	Now           time.Time
	Spectrum      []uint8
}

// Hue is the note colour, spread evenly around the wheel by scale degree.
func (f Frame) Hue() float64 {
	if f.Count <= 0 {
		return 0
	}
	return float64(f.Index) / float64(f.Count) * 360
}

// Renderer draws a frame onto a grid.
type Renderer interface {
	Draw(g *Grid, f Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(g *Grid, f Frame)

func (fn RendererFunc) Draw(g *Grid, f Frame) { fn(g, f) }

// Render draws f with r on a fresh grid and encodes it.
func Render(r Renderer, bg colorful.Color, f Frame) string {
	g := NewGrid(f.Width, f.Height, bg)
	r.Draw(g, f)
	return g.String()
}

// cellAspect is how much taller a terminal cell is than it is wide.
const cellAspect = 2.0

// dist is the distance between two cell positions in column widths.
func dist(x0, y0, x1, y1 float64) float64 {
	return math.Hypot(x1-x0, (y1-y0)*cellAspect)
}

// Enhanced is the full picture: canvas, spectrum bars and particles.
func Enhanced(c *Canvas, p *Particles) Renderer {
	return &ParticleLayer{Next: &SpectrumLayer{Next: c}, Particles: p}
}
