package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Launchpad mirror
	Solid rune // ■ lit pad
	Empty rune // □ dark pad

	// Transport
	Play   rune // ▶ pattern playing
	Stop   rune // ■ pattern stopped
	Record rune // ● recording
	Take   rune // ◆ take ready

	Separator string
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid: '■',
			Empty: '□',

			Play:   '▶',
			Stop:   '■',
			Record: '●',
			Take:   '◆',

			Separator: " │ ",
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.3
	RoleFG      = 0.8
	RoleAccent  = 0.5
	RoleActive  = 0.7
	RoleWarning = 0.9
	RoleSuccess = 1.0
)

// Background is the canvas colour the visuals are blended over.
func (t *Theme) Background() colorful.Color {
	return t.Palette.Lookup(RoleBG)
}

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return t.Color(RoleBG)
}

func (t *Theme) Surface() lipgloss.Color {
	return t.Color(RoleSurface)
}

func (t *Theme) FG() lipgloss.Color {
	return t.Color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.Color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.Color(RoleMuted)
}

func (t *Theme) Active() lipgloss.Color {
	return t.Color(RoleActive)
}

func (t *Theme) Warning() lipgloss.Color {
	return t.Color(RoleWarning)
}

func (t *Theme) Success() lipgloss.Color {
	return t.Color(RoleSuccess)
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(norm).Clamped().Hex())
}
