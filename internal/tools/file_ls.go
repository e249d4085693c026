package tools

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ListDirectory lists the entries of path sorted by name. Dot entries are
// skipped unless showHidden is set; detailed adds permission bits. An entry
// that cannot be stat'ed is marked inaccessible instead of failing the whole
// listing.
func (e *Executor) ListDirectory(path string, showHidden, detailed bool) Result {
	if path == "" {
		path = "."
	}
	e.record("list_directory", map[string]any{"path": path, "show_hidden": showHidden, "detailed": detailed})

	p := e.resolve(path)
	fi, err := e.fs.Stat(p)
	if err != nil {
		return classify(err, "list", path)
	}
	if !fi.IsDir() {
		return failure(KindNotADirectory, "not a directory: %s", path)
	}

	names, err := e.readDirNames(p)
	if err != nil {
		return classify(err, "list", path)
	}

	var (
		items       []string
		dirs, files int
		totalSize   int64
	)
	for _, name := range names {
		if !showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		info, err := e.fs.Stat(filepath.Join(p, name))
		if err != nil {
			items = append(items, fmt.Sprintf("❓ %s (inaccessible)", name))
			continue
		}

		icon, size := "📄", formatSize(info.Size())
		if info.IsDir() {
			dirs++
			icon, size = "📁", "<DIR>"
		} else {
			files++
			totalSize += info.Size()
		}
		line := fmt.Sprintf("%s %-30s %10s %s", icon, name, size, info.ModTime().Format("2006-01-02 15:04"))
		if detailed {
			line += fmt.Sprintf(" %03o", info.Mode().Perm())
		}
		items = append(items, line)
	}

	listing := "(empty directory)"
	if len(items) > 0 {
		listing = strings.Join(items, "\n")
	}
	summary := fmt.Sprintf("📊 Summary: %d directories, %d files, total size %s", dirs, files, formatSize(totalSize))
	return Result{Output: fmt.Sprintf("📁 Directory: %s\n%s\n%s\n%s", path, summary, strings.Repeat("-", 50), listing)}
}
