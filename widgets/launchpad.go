package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Pad is one LED of the Launchpad mirror.
type Pad struct {
	Color [3]uint8
	Lit   bool
}

// PadGrid is the 8x8 grid plus the top row and the side column.
type PadGrid struct {
	Grid [8][8]Pad
	Top  [8]Pad
	Side [8]Pad
}

// Set places an LED by Launchpad coordinates: row 8 is the top row,
// column 8 the side column.
func (g *PadGrid) Set(row, col int, color [3]uint8) {
	p := Pad{Color: color, Lit: color != [3]uint8{}}
	switch {
	case row == 8 && col < 8:
		g.Top[col] = p
	case col == 8 && row < 8:
		g.Side[row] = p
	case row >= 0 && row < 8 && col >= 0 && col < 8:
		g.Grid[row][col] = p
	}
}

// RenderPad renders a single colored pad
func RenderPad(p Pad, solid, empty rune) string {
	glyph := empty
	if p.Lit {
		glyph = solid
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(p.Color))).Render(string(glyph))
}

// RenderPadGrid renders the grid with row 0 at the bottom, the top row
// above it and the side column on the right.
func RenderPadGrid(g *PadGrid, solid, empty rune) string {
	var lines []string

	var top strings.Builder
	for col := 0; col < 8; col++ {
		top.WriteString(RenderPad(g.Top[col], solid, empty))
		top.WriteString(" ")
	}
	lines = append(lines, top.String())

	for row := 7; row >= 0; row-- {
		var line strings.Builder
		for col := 0; col < 8; col++ {
			line.WriteString(RenderPad(g.Grid[row][col], solid, empty))
			line.WriteString(" ")
		}
		line.WriteString(RenderPad(g.Side[row], solid, empty))
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func rgbToHex(c [3]uint8) string {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}.Hex()
}
