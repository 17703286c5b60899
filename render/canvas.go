package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// horizontalLines is the number of bands the parameter axis is split into.
const horizontalLines = 5

// Canvas draws the gradient, the grid and, while a note sounds, the held
// circle and its ripples.
type Canvas struct {
	Grid colorful.Color
	// Radius of the held circle in columns. Zero picks one from the width.
	Radius float64
}

func NewCanvas() *Canvas {
	return &Canvas{Grid: colorful.Color{R: 0.35, G: 0.35, B: 0.4}}
}

func (c *Canvas) Draw(g *Grid, f Frame) {
	hue := f.Hue()
	c.gradient(g, f, hue)
	c.lines(g, f)
	if f.Active {
		c.held(g, f, hue)
	}
}

// gradient fades the note colour out from the pointer, reaching nothing at
// one surface width away.
func (c *Canvas) gradient(g *Grid, f Frame, hue float64) {
	tint := colorful.Hsl(hue, 0.8, 0.5)
	w := float64(max(g.W, 1))
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			d := dist(f.X, f.Y, float64(x)+0.5, float64(y)+0.5) / w
			if d >= 1 {
				continue
			}
			g.Tint(x, y, tint, quantize(0.2*(1-d)))
		}
	}
}

// lines draws one vertical line per note boundary and the horizontal
// parameter bands.
func (c *Canvas) lines(g *Grid, f Frame) {
	if g.W == 0 || g.H == 0 {
		return
	}
	cols := make(map[int]bool)
	for i := 0; i <= f.Count; i++ {
		x := int(float64(i) / float64(f.Count) * float64(g.W))
		cols[min(x, g.W-1)] = true
	}
	rows := make(map[int]bool)
	for i := 0; i <= horizontalLines; i++ {
		y := int(float64(i) / horizontalLines * float64(g.H))
		rows[min(y, g.H-1)] = true
	}

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			switch {
			case cols[x] && rows[y]:
				g.Put(x, y, '┼', c.Grid)
			case cols[x]:
				g.Put(x, y, '│', c.Grid)
			case rows[y]:
				g.Put(x, y, '─', c.Grid)
			}
		}
	}
}

// held fills a circle under the pointer and draws three ripples pulsing
// around it.
func (c *Canvas) held(g *Grid, f Frame, hue float64) {
	r := c.Radius
	if r <= 0 {
		r = max(2, float64(g.W)/24)
	}
	fill := colorful.Hsl(hue, 1, 0.6)
	ring := colorful.Hsl(hue, 1, 0.7)

	t := float64(f.Now.UnixMilli()) / 200
	var ripples [3]float64
	for i := range ripples {
		phase := t + float64(i)*math.Pi/1.5
		ripples[i] = r*1.4 + math.Sin(phase)*r*0.4
	}

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			d := dist(f.X, f.Y, float64(x)+0.5, float64(y)+0.5)
			if d <= r {
				g.Tint(x, y, fill, 0.3)
				continue
			}
			for _, rr := range ripples {
				if math.Abs(d-rr) < 0.5 {
					g.Put(x, y, '·', ring)
					break
				}
			}
		}
	}
}
