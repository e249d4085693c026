package tools

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// MaxReadChars caps output when no line limit is requested.
	MaxReadChars = 5000
)

// ReadFile returns the contents of path. With maxLines > 0 at most that many
// lines are shown, otherwise at most MaxReadChars characters. PDF and XLSX
// files are rendered as text first.
func (e *Executor) ReadFile(path string, maxLines int, encodingName string) Result {
	e.record("read_file", map[string]any{"filepath": path, "max_lines": maxLines, "encoding": encodingName})

	p := e.resolve(path)
	fi, err := e.fs.Stat(p)
	if err != nil {
		return classify(err, "read", path)
	}
	if fi.IsDir() {
		return failure(KindNotAFile, "not a file: %s", path)
	}

	var content string
	switch strings.ToLower(filepath.Ext(p)) {
	case ".pdf":
		content, err = e.parseDocument(p, fi.Size(), parsePDF)
	case ".xlsx":
		content, err = e.parseDocument(p, fi.Size(), parseExcel)
	default:
		var data []byte
		data, err = afero.ReadFile(e.fs, p)
		if err != nil {
			return classify(err, "read", path)
		}
		content, err = decodeText(data, encodingName)
		if err != nil {
			return failure(KindEncoding, "cannot decode %s (%v), try another encoding", path, err)
		}
	}
	if err != nil {
		return failure(KindIO, "cannot parse %s: %v", path, err)
	}

	if maxLines > 0 {
		content = firstLines(content, maxLines)
	} else {
		content = firstChars(content, MaxReadChars)
	}

	return Result{Output: fmt.Sprintf("📁 File: %s\n📊 Size: %d bytes\n📄 Content:\n%s\n%s",
		path, fi.Size(), strings.Repeat("-", 40), content)}
}

func firstLines(content string, n int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	truncated := len(lines) > n
	if truncated {
		lines = lines[:n]
	}
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	if truncated {
		lines = append(lines, "... (more content, use --lines to see more)")
	}
	return strings.Join(lines, "\n")
}

func firstChars(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + fmt.Sprintf("\n... (file too long, truncated to %d characters)", n)
}

func (e *Executor) parseDocument(path string, size int64, parse func(afero.File, int64) (string, error)) (string, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return parse(f, size)
}
