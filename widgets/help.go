package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []key.Binding
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for i, sec := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			if !k.Enabled() {
				continue
			}
			h := k.Help()
			lines = append(lines, fmt.Sprintf("  %-12s %s", h.Key, h.Desc))
		}
	}
	return strings.Join(lines, "\n")
}
