package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Renderer formats assistant replies as terminal markdown. A nil *Renderer
// returns text unchanged.
type Renderer struct {
	r *glamour.TermRenderer
}

func NewRenderer(width int) (*Renderer, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{r: r}, nil
}

func (r *Renderer) Render(md string) string {
	if r == nil || r.r == nil {
		return md
	}
	out, err := r.r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
