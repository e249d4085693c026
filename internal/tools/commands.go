package tools

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

type ShellTool struct {
	Exec    *Executor
	Timeout time.Duration
}

func (t *ShellTool) Name() string        { return "shell" }
func (t *ShellTool) Aliases() []string   { return []string{"sh"} }
func (t *ShellTool) Usage() string       { return "!shell [-t seconds] <command>" }
func (t *ShellTool) Description() string { return "Run a command through the system shell" }

// Execute reads a leading -t/--timeout and hands the rest of the line to
// the shell unchanged.
func (t *ShellTool) Execute(ctx context.Context, args string) Result {
	var secs int
	command, err := cutFlags(t.Name(), args, func(fs *pflag.FlagSet) {
		fs.IntVarP(&secs, "timeout", "t", 0, "timeout in seconds")
	})
	if err != nil || command == "" || secs < 0 {
		return failure(KindInvalidArgument, "usage: %s", t.Usage())
	}
	timeout := t.Timeout
	if secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}
	res := t.Exec.ExecuteShell(ctx, command, timeout, "")
	res.Output = strings.TrimRight("🔧 Running: "+command+"\n"+res.Output, "\n")
	return res
}

type ReadTool struct{ Exec *Executor }

func (t *ReadTool) Name() string        { return "read" }
func (t *ReadTool) Aliases() []string   { return []string{"cat"} }
func (t *ReadTool) Usage() string       { return "!read [-n lines] [-e encoding] <path>" }
func (t *ReadTool) Description() string { return "Show the contents of a file" }

func (t *ReadTool) Execute(_ context.Context, args string) Result {
	var (
		lines int
		enc   string
	)
	rest, err := parseFlags(t.Name(), args, func(fs *pflag.FlagSet) {
		fs.IntVarP(&lines, "lines", "n", 0, "maximum lines to show")
		fs.StringVarP(&enc, "encoding", "e", "utf-8", "text encoding")
	})
	if err != nil || len(rest) == 0 {
		return failure(KindInvalidArgument, "usage: %s", t.Usage())
	}
	return t.Exec.ReadFile(strings.Join(rest, " "), lines, enc)
}

type WriteTool struct{ Exec *Executor }

func (t *WriteTool) Name() string        { return "write" }
func (t *WriteTool) Aliases() []string   { return []string{"echo"} }
func (t *WriteTool) Usage() string       { return "!write [-a] <path> <content>" }
func (t *WriteTool) Description() string { return "Write (or with -a append) text to a file" }

// Execute splits on the first space only so the content keeps its spacing.
func (t *WriteTool) Execute(_ context.Context, args string) Result {
	args = strings.TrimSpace(args)
	appendMode := false
	for _, flag := range []string{"-a ", "--append "} {
		if rest, ok := strings.CutPrefix(args, flag); ok {
			appendMode, args = true, rest
			break
		}
	}
	path, content, ok := splitPair(args)
	if !ok {
		return failure(KindInvalidArgument, "usage: %s", t.Usage())
	}
	return t.Exec.WriteFile(path, content, appendMode, "utf-8")
}

type ListTool struct{ Exec *Executor }

func (t *ListTool) Name() string        { return "list" }
func (t *ListTool) Aliases() []string   { return []string{"ls"} }
func (t *ListTool) Usage() string       { return "!list [-a] [-l] [path]" }
func (t *ListTool) Description() string { return "List a directory" }

func (t *ListTool) Execute(_ context.Context, args string) Result {
	var all, long bool
	rest, err := parseFlags(t.Name(), args, func(fs *pflag.FlagSet) {
		fs.BoolVarP(&all, "all", "a", false, "show hidden entries")
		fs.BoolVarP(&long, "long", "l", false, "show permissions")
	})
	if err != nil {
		return failure(KindInvalidArgument, "usage: %s", t.Usage())
	}
	return t.Exec.ListDirectory(strings.Join(rest, " "), all, long)
}

type FindTool struct{ Exec *Executor }

func (t *FindTool) Name() string        { return "find" }
func (t *FindTool) Aliases() []string   { return []string{"search"} }
func (t *FindTool) Usage() string       { return "!find [-m max] <pattern> [path]" }
func (t *FindTool) Description() string { return "Find files by name pattern" }

func (t *FindTool) Execute(_ context.Context, args string) Result {
	var max int
	rest, err := parseFlags(t.Name(), args, func(fs *pflag.FlagSet) {
		fs.IntVarP(&max, "max", "m", DefaultMaxResults, "maximum results")
	})
	if err != nil || len(rest) == 0 || len(rest) > 2 {
		return failure(KindInvalidArgument, "usage: %s", t.Usage())
	}
	path := "."
	if len(rest) == 2 {
		path = rest[1]
	}
	return t.Exec.FindFiles(rest[0], path, max)
}

type CopyTool struct{ Exec *Executor }

func (t *CopyTool) Name() string        { return "copy" }
func (t *CopyTool) Aliases() []string   { return []string{"cp"} }
func (t *CopyTool) Usage() string       { return "!copy <src> <dst>" }
func (t *CopyTool) Description() string { return "Copy a file or directory" }

func (t *CopyTool) Execute(_ context.Context, args string) Result {
	src, dst, ok := splitPair(args)
	if !ok {
		return failure(KindInvalidArgument, "usage: %s", t.Usage())
	}
	return t.Exec.CopyFile(src, dst)
}

type MoveTool struct{ Exec *Executor }

func (t *MoveTool) Name() string        { return "move" }
func (t *MoveTool) Aliases() []string   { return []string{"mv"} }
func (t *MoveTool) Usage() string       { return "!move <src> <dst>" }
func (t *MoveTool) Description() string { return "Move or rename a file or directory" }

func (t *MoveTool) Execute(_ context.Context, args string) Result {
	src, dst, ok := splitPair(args)
	if !ok {
		return failure(KindInvalidArgument, "usage: %s", t.Usage())
	}
	return t.Exec.MoveFile(src, dst)
}

type DeleteTool struct{ Exec *Executor }

func (t *DeleteTool) Name() string        { return "delete" }
func (t *DeleteTool) Aliases() []string   { return []string{"rm"} }
func (t *DeleteTool) Usage() string       { return "!delete [-f] <path>" }
func (t *DeleteTool) Description() string { return "Delete a file (directories need -f)" }

func (t *DeleteTool) Execute(_ context.Context, args string) Result {
	var force bool
	rest, err := parseFlags(t.Name(), args, func(fs *pflag.FlagSet) {
		fs.BoolVarP(&force, "force", "f", false, "delete directories")
	})
	if err != nil || len(rest) == 0 {
		return failure(KindInvalidArgument, "usage: %s", t.Usage())
	}
	return t.Exec.DeleteFile(strings.Join(rest, " "), force)
}

type InfoTool struct{ Exec *Executor }

func (t *InfoTool) Name() string        { return "info" }
func (t *InfoTool) Aliases() []string   { return []string{"sysinfo"} }
func (t *InfoTool) Usage() string       { return "!info" }
func (t *InfoTool) Description() string { return "Show system information" }

func (t *InfoTool) Execute(ctx context.Context, _ string) Result {
	return t.Exec.SystemInfo(ctx)
}
