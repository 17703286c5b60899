package theme

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultPalette is used when no palette is configured.
const DefaultPalette = "plasma"

//go:embed palettes/*.gpl
var builtin embed.FS

type Palette struct {
	Name   string
	Colors []colorful.Color
}

// Builtin lists the palettes shipped with the binary.
func Builtin() []string {
	entries, _ := builtin.ReadDir("palettes")
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".gpl"))
	}
	sort.Strings(names)
	return names
}

// Load finds a palette by builtin name, or reads it from a .gpl path.
func Load(name string) (*Palette, error) {
	if name == "" {
		name = DefaultPalette
	}
	if f, err := builtin.Open("palettes/" + name + ".gpl"); err == nil {
		defer f.Close()
		return ParseGPL(f, name)
	}
	if filepath.Ext(name) != ".gpl" {
		return nil, fault.New(fmt.Sprintf("unknown palette %q", name))
	}
	return LoadGPL(name)
}

func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("open palette"))
	}
	defer f.Close()
	return ParseGPL(f, path)
}

// ParseGPL reads a GIMP palette. source names the palette in errors.
func ParseGPL(r io.Reader, source string) (*Palette, error) {
	p := &Palette{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// first 3 fields are R G B
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			r, err1 := strconv.Atoi(fields[0])
			g, err2 := strconv.Atoi(fields[1])
			b, err3 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil && err3 == nil {
				p.Colors = append(p.Colors, colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fault.Wrap(err, fmsg.With("read palette"))
	}

	if len(p.Colors) == 0 {
		return nil, fault.New("no colors found in palette " + source)
	}
	if p.Name == "" {
		p.Name = source
	}

	return p, nil
}

// Lookup returns interpolated color for normalized value 0-1
func (p *Palette) Lookup(norm float64) colorful.Color {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	return p.Colors[i].BlendRgb(p.Colors[i+1], pos-float64(i))
}

// Index returns color at specific index (no interpolation)
func (p *Palette) Index(i int) colorful.Color {
	if i < 0 {
		return p.Colors[0]
	}
	if i >= len(p.Colors) {
		return p.Colors[len(p.Colors)-1]
	}
	return p.Colors[i]
}
