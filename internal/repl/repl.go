// Package repl implements the interactive shell: it reads a line, decides
// whether it is a builtin, a tool invocation or chat, runs it and prints the
// result.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jeanpaul/polo/internal/logging"
	"github.com/jeanpaul/polo/internal/memory"
	"github.com/jeanpaul/polo/internal/tools"
	"github.com/jeanpaul/polo/internal/tui"
)

type State int

const (
	StateRunning State = iota
	StateStopped
)

// Chatter is the conversational side of the shell, satisfied by
// *agent.Agent.
type Chatter interface {
	Chat(ctx context.Context, input string) string
	Provider() string
	Model() string
	Session() string
}

type Options struct {
	Agent    Chatter
	Tools    *tools.Registry
	Executor *tools.Executor
	// Memory is nil when memory is disabled.
	Memory  *memory.Store
	History *tui.History
	Reader  tui.LineReader
	Out     io.Writer
	// Renderer formats chat replies; nil prints them as is.
	Renderer *tui.Renderer
	// Signals delivers interrupts that arrive while a command runs. They
	// are discarded before the next read.
	Signals <-chan os.Signal
	// ClearScreen defaults to writing the ANSI clear sequence to Out.
	ClearScreen func(io.Writer)
	Version     string
	Logger      *zap.Logger
}

type builtinFunc func(ctx context.Context, args string) string

type builtin struct {
	usage       string
	description string
	run         builtinFunc
}

type REPL struct {
	agent    Chatter
	tools    *tools.Registry
	exec     *tools.Executor
	memory   *memory.Store
	history  *tui.History
	reader   tui.LineReader
	out      io.Writer
	renderer *tui.Renderer
	signals  <-chan os.Signal
	clear    func(io.Writer)
	version  string
	logger   *zap.Logger

	state    State
	count    int
	builtins map[string]builtin
	names    []string
}

func New(opts Options) *REPL {
	r := &REPL{
		agent:    opts.Agent,
		tools:    opts.Tools,
		exec:     opts.Executor,
		memory:   opts.Memory,
		history:  opts.History,
		reader:   opts.Reader,
		out:      opts.Out,
		renderer: opts.Renderer,
		signals:  opts.Signals,
		clear:    opts.ClearScreen,
		version:  opts.Version,
		logger:   logging.OrNop(opts.Logger).Named("repl"),
		state:    StateRunning,
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.clear == nil {
		r.clear = func(w io.Writer) { fmt.Fprint(w, "\033[H\033[2J") }
	}
	if r.tools == nil {
		r.tools = tools.NewRegistry()
	}
	r.builtins = map[string]builtin{
		"help":    {"/help", "Show this help", r.cmdHelp},
		"exit":    {"/exit", "Leave the shell", r.cmdExit},
		"quit":    {"/quit", "Leave the shell", r.cmdExit},
		"clear":   {"/clear", "Clear the screen", r.cmdClear},
		"history": {"/history", "Show the last 10 input lines", r.cmdHistory},
		"memory":  {"/memory [action]", "Memory stats, or search|clear|export|import|set|get|unset|reload", r.cmdMemory},
		"stats":   {"/stats", "Show session statistics", r.cmdStats},
		"tools":   {"/tools", "Show recent tool usage", r.cmdTools},
		"about":   {"/about", "About polo", r.cmdAbout},
	}
	for name := range r.builtins {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r
}

func (r *REPL) State() State { return r.state }

// Count is the number of non-empty lines handled this session.
func (r *REPL) Count() int { return r.count }

// Run loops until /exit, end of input or ctx is cancelled. It always
// returns exit status 0.
func (r *REPL) Run(ctx context.Context) int {
	fmt.Fprintln(r.out, tui.Banner(r.version))
	fmt.Fprintln(r.out, r.welcome())
	fmt.Fprintln(r.out)

	for r.state == StateRunning {
		r.drainSignals()
		line, err := r.reader.ReadLine(ctx, r.prompt())
		switch {
		case errors.Is(err, tui.ErrInterrupt):
			fmt.Fprintln(r.out, "\n👋 Press Ctrl+D or type /exit to quit")
			fmt.Fprintln(r.out)
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(r.out, "\n"+r.farewell())
			r.state = StateStopped
			continue
		case err != nil:
			if ctx.Err() == nil {
				r.logger.Error("reading input failed", zap.Error(err))
				fmt.Fprintf(r.out, "❌ Input error: %v\n", err)
			}
			r.state = StateStopped
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r.history != nil {
			r.history.Add(line)
		}

		if out := r.Execute(ctx, line); out != "" {
			fmt.Fprintln(r.out, tui.Styled(out))
		}
		fmt.Fprintln(r.out)
	}

	if r.history != nil {
		if err := r.history.Save(); err != nil {
			r.logger.Warn("failed to save input history", zap.Error(err))
		}
	}
	return 0
}

// Execute handles one line and returns the text to print. A panic inside a
// command is reported as its result.
func (r *REPL) Execute(ctx context.Context, line string) (out string) {
	cmd := Classify(line, r.names, r.tools.Aliases())
	if cmd.Kind == KindEmpty {
		return ""
	}
	r.count++

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("command panicked",
				zap.String("line", cmd.Text),
				zap.Any("panic", rec),
				zap.Stack("stack"))
			out = fmt.Sprintf("❌ Unexpected error: %v", rec)
		}
	}()

	switch cmd.Kind {
	case KindBuiltin:
		return r.builtins[cmd.Name].run(ctx, cmd.Args)
	case KindTool:
		return r.runTool(ctx, cmd)
	case KindChat:
		return r.chat(ctx, cmd.Text)
	case KindUnknownBuiltin:
		return fmt.Sprintf("❌ Unknown builtin command: /%s\n💡 Type /help to see the available commands", cmd.Name)
	case KindUnknownTool:
		return fmt.Sprintf("❌ Unknown tool: !%s\n💡 Type /help to see the available tools", cmd.Name)
	}
	return ""
}

func (r *REPL) runTool(ctx context.Context, cmd Command) string {
	res := r.tools.Execute(ctx, cmd.Name, cmd.Args)
	text := res.String()
	if res.Kind == tools.KindInvalidArgument {
		return text
	}

	if r.memory != nil {
		meta := map[string]any{"type": "tool_usage", "tool": cmd.Name}
		if r.agent != nil {
			meta["session"] = r.agent.Session()
		}
		if err := r.memory.AddConversation(cmd.Text, text, meta); err != nil {
			r.logger.Warn("failed to record tool usage", zap.String("tool", cmd.Name), zap.Error(err))
		}
	}
	return text
}

func (r *REPL) chat(ctx context.Context, text string) string {
	if r.agent == nil {
		return "❌ Chat is not available"
	}
	reply := r.agent.Chat(ctx, text)
	if strings.HasPrefix(reply, "❌") {
		return reply
	}
	return "🤖 " + r.renderer.Render(reply)
}

func (r *REPL) drainSignals() {
	for {
		select {
		case <-r.signals:
		default:
			return
		}
	}
}

func (r *REPL) prompt() string {
	dir := "."
	if r.exec != nil {
		dir = filepath.Base(r.exec.WorkDir())
	}
	return fmt.Sprintf("👤 [%s](%d): ", dir, r.count)
}

func (r *REPL) welcome() string {
	if r.memory == nil {
		return "⚠️  Memory is disabled, conversations will not be saved."
	}
	if n := r.memory.Len(); n > 0 {
		return fmt.Sprintf("📝 Welcome back! I remember our %d previous conversations.", n)
	}
	return "🆕 This is our first conversation. I will remember what we talk about."
}

func (r *REPL) farewell() string {
	if r.memory != nil {
		return fmt.Sprintf("👋 Goodbye! We exchanged %d commands this session and %d conversations are stored in memory.",
			r.count, r.memory.Len())
	}
	return fmt.Sprintf("👋 Goodbye! %d commands were run this session.", r.count)
}
