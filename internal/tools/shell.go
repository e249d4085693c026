package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}

// ExecuteShell runs command through the platform shell in cwd (the work
// directory when empty). Stdout and stderr are captured separately. A command
// still running after timeout yields a KindTimeout report.
func (e *Executor) ExecuteShell(ctx context.Context, command string, timeout time.Duration, cwd string) Result {
	if timeout <= 0 {
		timeout = DefaultShellTimeout
	}
	dir := e.workDir
	if cwd != "" {
		dir = e.resolve(cwd)
	}
	e.record("execute_shell", map[string]any{
		"command": command,
		"timeout": timeout.Seconds(),
		"cwd":     dir,
	})

	if strings.TrimSpace(command) == "" {
		return failure(KindInvalidArgument, "no command given")
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return failure(KindNotADirectory, "working directory does not exist: %s", dir)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := shellCommand(ctx, command)
	cmd.Dir = dir
	// Background children may keep the pipes open after the shell dies.
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e.logger.Debug("shell command timed out",
			zap.String("command", command), zap.Duration("timeout", timeout))
		return failure(KindTimeout, "command timed out after %s", timeout)
	}

	var parts []string
	if stdout.Len() > 0 {
		parts = append(parts, "📤 Output:\n"+strings.TrimRight(stdout.String(), "\n"))
	}
	if stderr.Len() > 0 {
		parts = append(parts, "⚠️  Stderr:\n"+strings.TrimRight(stderr.String(), "\n"))
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		parts = append(parts, "✅ Completed successfully")
	case errors.As(err, &exitErr):
		parts = append(parts, fmt.Sprintf("❌ Exit code: %d", exitErr.ExitCode()))
	default:
		return failure(KindIO, "cannot run command: %v", err)
	}
	parts = append(parts, fmt.Sprintf("⏱️  Duration: %.2fs", elapsed.Seconds()))

	return Result{Output: strings.Join(parts, "\n\n")}
}
