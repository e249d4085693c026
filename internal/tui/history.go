package tui

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const DefaultHistorySize = 1000

// History is the persisted list of lines typed at the prompt, oldest first.
type History struct {
	fs    afero.Fs
	path  string
	max   int
	lines []string
}

type HistoryEntry struct {
	Index int
	Line  string
}

// LoadHistory reads path if it exists. An empty path keeps history in memory
// only.
func LoadHistory(fs afero.Fs, path string, max int) (*History, error) {
	if max <= 0 {
		max = DefaultHistorySize
	}
	h := &History{fs: fs, path: path, max: max}
	if path == "" {
		return h, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return h, nil
		}
		return h, err
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := sc.Text(); strings.TrimSpace(line) != "" {
			h.lines = append(h.lines, line)
		}
	}
	h.trim()
	return h, sc.Err()
}

func (h *History) Add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	h.lines = append(h.lines, line)
	h.trim()
}

func (h *History) trim() {
	if over := len(h.lines) - h.max; over > 0 {
		h.lines = append([]string(nil), h.lines[over:]...)
	}
}

func (h *History) Len() int { return len(h.lines) }

func (h *History) Lines() []string {
	return append([]string(nil), h.lines...)
}

// Recent returns the last n lines numbered from 1 at the oldest entry.
func (h *History) Recent(n int) []HistoryEntry {
	if n > len(h.lines) {
		n = len(h.lines)
	}
	if n <= 0 {
		return nil
	}
	start := len(h.lines) - n
	out := make([]HistoryEntry, 0, n)
	for i := start; i < len(h.lines); i++ {
		out = append(out, HistoryEntry{Index: i + 1, Line: h.lines[i]})
	}
	return out
}

func (h *History) Save() error {
	if h.path == "" {
		return nil
	}
	if dir := filepath.Dir(h.path); dir != "." {
		if err := h.fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	for _, l := range h.lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return afero.WriteFile(h.fs, h.path, buf.Bytes(), 0600)
}
