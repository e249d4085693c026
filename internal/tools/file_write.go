package tools

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/spf13/afero"
)

// WriteFile writes content to path, creating parent directories. In append
// mode content is added to the end, otherwise the file is replaced and the
// report includes a line diff summary against the previous contents.
func (e *Executor) WriteFile(path, content string, appendMode bool, encodingName string) Result {
	e.record("write_file", map[string]any{
		"filepath":       path,
		"content_length": len([]rune(content)),
		"append":         appendMode,
	})

	p := e.resolve(path)
	data, err := encodeText(content, encodingName)
	if err != nil {
		return failure(KindEncoding, "cannot encode content for %s: %v", path, err)
	}

	if err := e.fs.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return classify(err, "create directory for", path)
	}

	var previous *string
	if !appendMode {
		if fi, err := e.fs.Stat(p); err == nil {
			if fi.IsDir() {
				return failure(KindNotAFile, "not a file: %s", path)
			}
			if old, err := afero.ReadFile(e.fs, p); err == nil {
				s := string(old)
				previous = &s
			}
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := e.fs.OpenFile(p, flags, 0644)
	if err != nil {
		return classify(err, "write", path)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return classify(err, "write", path)
	}
	if err := f.Close(); err != nil {
		return classify(err, "write", path)
	}

	fi, err := e.fs.Stat(p)
	if err != nil {
		return classify(err, "stat", path)
	}

	action := "Wrote"
	if appendMode {
		action = "Appended to"
	}
	out := fmt.Sprintf("✅ %s file: %s\n📊 Size: %d bytes", action, path, fi.Size())
	if previous != nil {
		added, removed := diffStat(p, *previous, string(data))
		out += fmt.Sprintf("\n📝 Changes: +%d -%d lines", added, removed)
	}
	return Result{Output: out}
}

// diffStat counts inserted and deleted lines between two texts.
func diffStat(path, before, after string) (added, removed int) {
	edits := myers.ComputeEdits(span.URIFromPath(path), before, after)
	unified := gotextdiff.ToUnified("before", "after", before, edits)
	for _, h := range unified.Hunks {
		for _, l := range h.Lines {
			switch l.Kind {
			case gotextdiff.Insert:
				added++
			case gotextdiff.Delete:
				removed++
			}
		}
	}
	return added, removed
}
