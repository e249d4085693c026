package repl

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeanpaul/polo/internal/memory"
	"github.com/jeanpaul/polo/internal/tools"
	"github.com/jeanpaul/polo/internal/tui"
)

type stubMetrics struct{}

func (stubMetrics) Snapshot(context.Context, string) (tools.HostSnapshot, error) {
	return tools.HostSnapshot{CPUCount: 2}, nil
}

type stubAgent struct {
	inputs []string
	reply  string
}

func (a *stubAgent) Chat(_ context.Context, input string) string {
	a.inputs = append(a.inputs, input)
	return a.reply
}

func (a *stubAgent) Provider() string { return "gemini" }
func (a *stubAgent) Model() string    { return "gemini-2.5-flash" }
func (a *stubAgent) Session() string  { return "sess-1" }

type step struct {
	line string
	err  error
}

type scriptReader struct {
	steps   []step
	prompts []string
}

func (s *scriptReader) ReadLine(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.steps) == 0 {
		return "", io.EOF
	}
	st := s.steps[0]
	s.steps = s.steps[1:]
	return st.line, st.err
}

type fixture struct {
	repl   *REPL
	fs     afero.Fs
	mem    *memory.Store
	agent  *stubAgent
	out    *bytes.Buffer
	reader *scriptReader
}

func newFixture(t *testing.T, withMemory bool, steps ...step) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work", 0755))

	exec := tools.NewExecutor(tools.Options{
		Fs:      fs,
		WorkDir: "/work",
		User:    "tester",
		Metrics: stubMetrics{},
		Logger:  zaptest.NewLogger(t),
	})
	reg := tools.NewRegistry()
	tools.RegisterDefaults(reg, exec, 0)

	var mem *memory.Store
	if withMemory {
		mem = memory.Open(fs, "/work/mem.json", zaptest.NewLogger(t))
	}
	hist, err := tui.LoadHistory(fs, "/home/tester/.polo_history", 0)
	require.NoError(t, err)

	f := &fixture{
		fs:     fs,
		mem:    mem,
		agent:  &stubAgent{reply: "hi there"},
		out:    &bytes.Buffer{},
		reader: &scriptReader{steps: steps},
	}
	f.repl = New(Options{
		Agent:       f.agent,
		Tools:       reg,
		Executor:    exec,
		Memory:      mem,
		History:     hist,
		Reader:      f.reader,
		Out:         f.out,
		ClearScreen: func(w io.Writer) { io.WriteString(w, "<clear>") },
		Version:     "v0.0.1-test",
		Logger:      zaptest.NewLogger(t),
	})
	return f
}

func TestRunUntilEOF(t *testing.T) {
	f := newFixture(t, true, step{line: "hello"}, step{line: "   "}, step{line: "!write notes.txt hi"})

	assert.Equal(t, 0, f.repl.Run(context.Background()))
	assert.Equal(t, StateStopped, f.repl.State())
	assert.Equal(t, 2, f.repl.Count())

	out := f.out.String()
	assert.Contains(t, out, "Polo AI Assistant v0.0.1-test")
	assert.Contains(t, out, "🤖 hi there")
	assert.Contains(t, out, "👋 Goodbye! We exchanged 2 commands this session and 1 conversations are stored in memory.")

	assert.Equal(t, []string{"hello"}, f.agent.inputs)
	data, err := afero.ReadFile(f.fs, "/work/notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	assert.Equal(t, "👤 [work](0): ", f.reader.prompts[0])
	assert.Equal(t, "👤 [work](2): ", f.reader.prompts[len(f.reader.prompts)-1])

	hist, err := afero.ReadFile(f.fs, "/home/tester/.polo_history")
	require.NoError(t, err)
	assert.Equal(t, "hello\n!write notes.txt hi\n", string(hist))
}

func TestRunInterruptReturnsToPrompt(t *testing.T) {
	f := newFixture(t, false, step{err: tui.ErrInterrupt}, step{line: "/exit"}, step{line: "never read"})

	assert.Equal(t, 0, f.repl.Run(context.Background()))
	assert.Len(t, f.reader.steps, 1)
	out := f.out.String()
	assert.Contains(t, out, "Press Ctrl+D or type /exit to quit")
	assert.Contains(t, out, "⚠️  Memory is disabled")
	assert.Contains(t, out, "👋 Goodbye! 1 commands were run this session.")
}

func TestToolUsageIsRecorded(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	out := f.repl.Execute(ctx, "!echo a.txt some text")
	assert.NotContains(t, out, "❌")
	require.Equal(t, 1, f.mem.Len())

	conv := f.mem.RecentConversations(1)[0]
	assert.Equal(t, "!echo a.txt some text", conv.User)
	assert.Equal(t, out, conv.Assistant)
	assert.Equal(t, "tool_usage", conv.Metadata["type"])
	assert.Equal(t, "write", conv.Metadata["tool"])
	assert.Equal(t, "sess-1", conv.Metadata["session"])

	// A usage error is not an executed invocation.
	out = f.repl.Execute(ctx, "!cat")
	assert.Contains(t, out, "usage")
	assert.Equal(t, 1, f.mem.Len())

	// Failures from the filesystem are still recorded.
	out = f.repl.Execute(ctx, "!cat missing.txt")
	assert.Contains(t, out, "❌")
	assert.Equal(t, 2, f.mem.Len())
}

func TestUnknownCommands(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	assert.Contains(t, f.repl.Execute(ctx, "/frob"), "Unknown builtin command: /frob")
	assert.Contains(t, f.repl.Execute(ctx, "!frob x"), "Unknown tool: !frob")
	assert.Equal(t, StateRunning, f.repl.State())
	assert.Equal(t, 2, f.repl.Count())
}

func TestChatErrorIsNotRendered(t *testing.T) {
	f := newFixture(t, false)
	f.agent.reply = "❌ Gemini API Error: quota"

	assert.Equal(t, "❌ Gemini API Error: quota", f.repl.Execute(context.Background(), "hi"))
}

type panicTool struct{}

func (panicTool) Name() string        { return "boom" }
func (panicTool) Aliases() []string   { return nil }
func (panicTool) Usage() string       { return "!boom" }
func (panicTool) Description() string { return "panics" }
func (panicTool) Execute(context.Context, string) tools.Result {
	panic("kaboom")
}

func TestPanicIsContained(t *testing.T) {
	f := newFixture(t, false, step{line: "!boom"}, step{line: "/stats"})
	f.repl.tools.Register(panicTool{})

	assert.Equal(t, 0, f.repl.Run(context.Background()))
	out := f.out.String()
	assert.Contains(t, out, "❌ Unexpected error: kaboom")
	assert.Contains(t, out, "📈 Session statistics:")
}

func TestBuiltins(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	help := f.repl.Execute(ctx, "/help")
	assert.Contains(t, help, "!shell <command>")
	assert.Contains(t, help, "alias: mv")
	assert.Contains(t, help, "/memory [action]")

	assert.Contains(t, f.repl.Execute(ctx, "/about"), "v0.0.1-test")
	assert.Equal(t, "", f.repl.Execute(ctx, "/clear"))
	assert.Contains(t, f.out.String(), "<clear>")

	assert.Equal(t, "🔧 No tools used yet", f.repl.Execute(ctx, "/tools"))
	f.repl.Execute(ctx, "!ls")
	usage := f.repl.Execute(ctx, "/tools")
	assert.Contains(t, usage, "list_directory (path=)")

	stats := f.repl.Execute(ctx, "/stats")
	assert.Contains(t, stats, "🧠 Memory: disabled")
	assert.Contains(t, stats, "gemini-2.5-flash (gemini)")
	assert.Contains(t, stats, "🔧 Tool calls: 1")

	assert.Equal(t, "❌ Memory is disabled", f.repl.Execute(ctx, "/memory"))

	assert.Contains(t, f.repl.Execute(ctx, "/quit"), "Goodbye")
	assert.Equal(t, StateStopped, f.repl.State())
}

func TestHistoryBuiltin(t *testing.T) {
	f := newFixture(t, false, step{line: "/history"}, step{line: "one"})
	f.repl.Run(context.Background())

	out := f.out.String()
	assert.Contains(t, out, "📜 Recent commands:\n  1. /history")
}

func TestMemoryBuiltin(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	f.repl.Execute(ctx, "tell me about golang")
	require.NoError(t, f.mem.AddConversation("tell me about golang", "Go is a language", nil))

	stats := f.repl.Execute(ctx, "/memory")
	assert.Contains(t, stats, "📊 Conversations: 1")
	assert.Contains(t, stats, "📝 File: /work/mem.json")
	assert.Contains(t, stats, "tell me about golang")

	assert.Contains(t, f.repl.Execute(ctx, "/memory search GOLANG"), "1 conversation(s) match")
	assert.Contains(t, f.repl.Execute(ctx, "/memory search rust"), "No conversations match")

	assert.Equal(t, "✅ editor = vim", f.repl.Execute(ctx, "/memory set editor vim"))
	assert.Equal(t, "editor = vim", f.repl.Execute(ctx, "/memory get editor"))
	assert.Contains(t, f.repl.Execute(ctx, "/memory get"), "editor")
	assert.Equal(t, "✅ Removed editor", f.repl.Execute(ctx, "/memory unset editor"))
	assert.Contains(t, f.repl.Execute(ctx, "/memory unset editor"), "No context value")

	assert.Equal(t, "✅ Memory exported to: /work/backup.yaml", f.repl.Execute(ctx, "/memory export /work/backup.yaml"))
	assert.Equal(t, "✅ Memory cleared", f.repl.Execute(ctx, "/memory clear"))
	assert.Equal(t, 0, f.mem.Len())
	assert.Equal(t, "✅ Imported 1 new conversation(s) from /work/backup.yaml", f.repl.Execute(ctx, "/memory import /work/backup.yaml"))
	assert.Contains(t, f.repl.Execute(ctx, "/memory reload"), "1 conversations")

	assert.Contains(t, f.repl.Execute(ctx, "/memory frob"), "Unknown memory action: frob")
	assert.True(t, strings.HasPrefix(f.repl.Execute(ctx, "/memory import"), "❌ Usage"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "héllo...", preview("héllo world", 5))
	assert.Equal(t, "a b", preview("a\nb", 10))
	assert.Equal(t, "2024-01-02 10:30", shortTime("2024-01-02T10:30:15.123456"))
}
