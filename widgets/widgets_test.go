package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func TestPadGridSet(t *testing.T) {
	var g PadGrid
	g.Set(0, 0, [3]uint8{255, 0, 0})
	g.Set(8, 3, [3]uint8{0, 255, 0})
	g.Set(2, 8, [3]uint8{0, 0, 255})
	g.Set(9, 9, [3]uint8{1, 1, 1})

	if !g.Grid[0][0].Lit || !g.Top[3].Lit || !g.Side[2].Lit {
		t.Errorf("grid = %+v", g)
	}
	g.Set(0, 0, [3]uint8{})
	if g.Grid[0][0].Lit {
		t.Error("black pad still lit")
	}
}

func TestRenderPadGrid(t *testing.T) {
	var g PadGrid
	g.Set(0, 0, [3]uint8{255, 0, 0})
	out := RenderPadGrid(&g, '■', '□')
	lines := strings.Split(out, "\n")
	if len(lines) != 9 {
		t.Fatalf("lines = %d, want 9", len(lines))
	}
	// row 0 is drawn last
	if !strings.Contains(lines[8], "■") || strings.Contains(lines[1], "■") {
		t.Errorf("bottom row = %q", lines[8])
	}
	if w := lipgloss.Width(lines[1]); w != 17 {
		t.Errorf("row width = %d", w)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	hidden := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hidden"))
	hidden.SetEnabled(false)
	out := RenderKeyHelp([]KeySection{
		{Title: "Play", Keys: []key.Binding{
			key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "play pattern")),
			hidden,
		}},
		{Title: "Quit", Keys: []key.Binding{
			key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		}},
	})
	want := "Play\n  p            play pattern\n\nQuit\n  q            quit"
	if out != want {
		t.Errorf("help =\n%s", out)
	}
}
