package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Cell is one terminal character with its colours.
type Cell struct {
	Ch rune
	FG colorful.Color
	BG colorful.Color
}

// Grid is a W x H block of cells, row 0 at the top.
type Grid struct {
	W, H  int
	cells []Cell
}

func NewGrid(w, h int, bg colorful.Color) *Grid {
	w, h = max(w, 0), max(h, 0)
	g := &Grid{W: w, H: h, cells: make([]Cell, w*h)}
	for i := range g.cells {
		g.cells[i] = Cell{Ch: ' ', FG: bg, BG: bg}
	}
	return g
}

// At returns the cell at (x, y), or nil outside the grid.
func (g *Grid) At(x, y int) *Cell {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return nil
	}
	return &g.cells[y*g.W+x]
}

// Put draws ch in colour fg.
func (g *Grid) Put(x, y int, ch rune, fg colorful.Color) {
	if c := g.At(x, y); c != nil {
		c.Ch = ch
		c.FG = fg
	}
}

// Text writes s starting at (x, y), clipped to the grid.
func (g *Grid) Text(x, y int, s string, fg colorful.Color) {
	for _, r := range s {
		g.Put(x, y, r, fg)
		x++
	}
}

// Tint blends c over the background of (x, y) with opacity alpha.
func (g *Grid) Tint(x, y int, c colorful.Color, alpha float64) {
	if cell := g.At(x, y); cell != nil && alpha > 0 {
		cell.BG = cell.BG.BlendRgb(c, min(alpha, 1)).Clamped()
	}
}

// String encodes the grid as styled lines. Adjacent cells with the same
// colours share one style run.
func (g *Grid) String() string {
	var out strings.Builder
	var run strings.Builder
	for y := 0; y < g.H; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		var fg, bg string
		for x := 0; x < g.W; x++ {
			c := g.At(x, y)
			cf, cb := c.FG.Hex(), c.BG.Hex()
			if run.Len() > 0 && (cf != fg || cb != bg) {
				out.WriteString(style(fg, bg).Render(run.String()))
				run.Reset()
			}
			fg, bg = cf, cb
			run.WriteRune(c.Ch)
		}
		if run.Len() > 0 {
			out.WriteString(style(fg, bg).Render(run.String()))
			run.Reset()
		}
	}
	return out.String()
}

func style(fg, bg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg))
}

// Plain returns the grid characters without colour, one line per row.
func (g *Grid) Plain() string {
	var out strings.Builder
	for y := 0; y < g.H; y++ {
		if y > 0 {
			out.WriteByte('\n')
		}
		for x := 0; x < g.W; x++ {
			out.WriteRune(g.At(x, y).Ch)
		}
	}
	return out.String()
}

// quantize snaps an opacity to a few levels so neighbouring cells of a
// gradient end up in the same style run.
func quantize(alpha float64) float64 {
	const levels = 16
	return float64(int(alpha*levels+0.5)) / levels
}
