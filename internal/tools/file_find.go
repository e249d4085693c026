package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// DefaultMaxResults is used when FindFiles gets a non-positive cap.
const DefaultMaxResults = 50

// FindFiles searches path depth-first for entries whose name matches the
// glob pattern. Dot entries are skipped. Results are relative to path.
func (e *Executor) FindFiles(pattern, path string, maxResults int) Result {
	if path == "" {
		path = "."
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	e.record("find_files", map[string]any{"pattern": pattern, "path": path, "max_results": maxResults})

	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return failure(KindInvalidArgument, "invalid pattern: %q", pattern)
	}

	matches, truncated, err := e.findFiles(pattern, e.resolve(path), maxResults)
	if err != nil {
		if os.IsNotExist(err) {
			return failure(KindNotFound, "search path not found: %s", path)
		}
		return classify(err, "search", path)
	}
	if len(matches) == 0 {
		return failure(KindNotFound, "no files match %s", pattern)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔍 Results (pattern: %s):\n", pattern)
	for _, m := range matches {
		sb.WriteString("📄 " + m + "\n")
	}
	if truncated {
		fmt.Fprintf(&sb, "... (showing first %d results)\n", maxResults)
	}
	fmt.Fprintf(&sb, "\n📊 Found %d files", len(matches))
	return Result{Output: sb.String()}
}

// findFiles returns at most max matches and whether more were available.
// Unreadable directories are skipped.
func (e *Executor) findFiles(pattern, root string, max int) ([]string, bool, error) {
	if _, err := e.fs.Stat(root); err != nil {
		return nil, false, err
	}

	var (
		results   []string
		truncated bool
		walk      func(dir string)
	)
	walk = func(dir string) {
		names, err := e.readDirNames(dir)
		if err != nil {
			return
		}
		for _, name := range names {
			if truncated {
				return
			}
			if strings.HasPrefix(name, ".") {
				continue
			}
			full := filepath.Join(dir, name)
			if ok, _ := doublestar.Match(pattern, name); ok {
				if len(results) >= max {
					truncated = true
					return
				}
				rel, err := filepath.Rel(root, full)
				if err != nil {
					rel = full
				}
				results = append(results, rel)
			}
			if info, err := e.lstat(full); err == nil && info.IsDir() {
				walk(full)
			}
		}
	}
	walk(root)
	return results, truncated, nil
}

func (e *Executor) readDirNames(dir string) ([]string, error) {
	f, err := e.fs.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// lstat does not follow symlinks when the filesystem supports it, so a link
// cycle cannot recurse forever.
func (e *Executor) lstat(path string) (os.FileInfo, error) {
	if l, ok := e.fs.(afero.Lstater); ok {
		fi, _, err := l.LstatIfPossible(path)
		return fi, err
	}
	return e.fs.Stat(path)
}
