package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/jeanpaul/polo/internal/logging"
)

const (
	// MaxHistory bounds the in-memory usage log.
	MaxHistory = 100
	// DefaultShellTimeout applies when a caller passes a non-positive timeout.
	DefaultShellTimeout = 30 * time.Second
)

// Usage records one tool invocation.
type Usage struct {
	Timestamp time.Time
	Tool      string
	Params    map[string]any
}

type Options struct {
	// Fs backs every file operation. Defaults to the OS filesystem.
	Fs afero.Fs
	// WorkDir anchors relative paths and is the default shell directory.
	WorkDir string
	// User is reported by SystemInfo.
	User    string
	Metrics HostMetrics
	Logger  *zap.Logger
}

// Executor performs filesystem and process operations and keeps a bounded
// log of what it did. It is meant to be driven by a single caller.
type Executor struct {
	fs      afero.Fs
	workDir string
	user    string
	metrics HostMetrics
	logger  *zap.Logger
	now     func() time.Time
	history []Usage
}

func NewExecutor(opts Options) *Executor {
	e := &Executor{
		fs:      opts.Fs,
		workDir: opts.WorkDir,
		user:    opts.User,
		metrics: opts.Metrics,
		logger:  logging.OrNop(opts.Logger).Named("tools"),
		now:     time.Now,
	}
	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.workDir == "" {
		e.workDir, _ = os.Getwd()
	}
	if e.user == "" {
		e.user = currentUser()
	}
	if e.metrics == nil {
		e.metrics = NewHostMetrics()
	}
	return e
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u := os.Getenv("USERNAME"); u != "" {
		return u
	}
	return "unknown"
}

func (e *Executor) WorkDir() string { return e.workDir }

func (e *Executor) resolve(path string) string {
	if path == "" {
		path = "."
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(e.workDir, path)
}

func (e *Executor) record(tool string, params map[string]any) {
	e.logger.Debug("tool call", zap.String("tool", tool), zap.Any("params", params))
	e.history = append(e.history, Usage{Timestamp: e.now(), Tool: tool, Params: params})
	if len(e.history) > MaxHistory {
		e.history = append([]Usage(nil), e.history[len(e.history)-MaxHistory:]...)
	}
}

// ToolHistory returns up to n of the most recent invocations, oldest first.
func (e *Executor) ToolHistory(n int) []Usage {
	if n <= 0 || len(e.history) == 0 {
		return []Usage{}
	}
	if n > len(e.history) {
		n = len(e.history)
	}
	out := make([]Usage, n)
	copy(out, e.history[len(e.history)-n:])
	return out
}

func (e *Executor) HistoryLen() int { return len(e.history) }

func (e *Executor) ClearToolHistory() {
	e.history = nil
}

// classify maps a filesystem error to a report.
func classify(err error, action, path string) Result {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return failure(KindNotFound, "not found: %s", path)
	case errors.Is(err, fs.ErrPermission):
		return failure(KindPermissionDenied, "permission denied, cannot %s: %s", action, path)
	default:
		return failure(KindIO, "cannot %s %s: %v", action, path, err)
	}
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// formatSize renders a byte count with one decimal place.
func formatSize(n int64) string {
	if n == 0 {
		return "0 B"
	}
	size := float64(n)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.1f %s", size, sizeUnits[unit])
}
