package render

import (
	"github.com/lucasb-eyer/go-colorful"
)

var barGlyphs = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// SpectrumLayer draws frequency bars along the bottom quarter of the
// surface and the note names of the scale above them.
type SpectrumLayer struct {
	Next   Renderer
	Labels colorful.Color
}

func (l *SpectrumLayer) Draw(g *Grid, f Frame) {
	l.Next.Draw(g, f)
	l.bars(g, f)
	l.labels(g, f)
}

func (l *SpectrumLayer) bars(g *Grid, f Frame) {
	n := len(f.Spectrum)
	if n == 0 || g.W == 0 {
		return
	}
	bar := colorful.Hsl(f.Hue(), 0.7, 0.6)
	maxRows := float64(g.H) / 4
	for x := 0; x < g.W; x++ {
		// average the bins that fall into this column
		lo := x * n / g.W
		hi := max((x+1)*n/g.W, lo+1)
		sum := 0
		for _, v := range f.Spectrum[lo:min(hi, n)] {
			sum += int(v)
		}
		h := float64(sum) / float64(hi-lo) / 255 * maxRows
		for y := g.H - 1; h > 0 && y >= 0; y-- {
			eighths := min(8, int(h*8+0.5))
			if eighths > 0 {
				cell := g.At(x, y)
				g.Put(x, y, barGlyphs[eighths], cell.BG.BlendRgb(bar, 0.5))
			}
			h--
		}
	}
}

func (l *SpectrumLayer) labels(g *Grid, f Frame) {
	if len(f.Labels) == 0 || g.H < 3 {
		return
	}
	fg := l.Labels
	if fg == (colorful.Color{}) {
		fg = colorful.Color{R: 0.6, G: 0.6, B: 0.6}
	}
	y := g.H - 2
	n := len(f.Labels)
	for i, name := range f.Labels {
		cx := 0.0
		if n > 1 {
			cx = float64(i) / float64(n-1) * float64(g.W-1)
		}
		x := int(cx) - len(name)/2
		x = min(max(x, 0), g.W-len(name))
		g.Text(x, y, name, fg)
	}
}
