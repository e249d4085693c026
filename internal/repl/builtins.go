package repl

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"unicode/utf8"

	"github.com/jeanpaul/polo/internal/tools"
)

const (
	recentHistory  = 10
	recentMemory   = 5
	searchLimit    = 10
	previewChars   = 40
	timestampShort = "2006-01-02 15:04"
)

func (r *REPL) cmdHelp(context.Context, string) string {
	var b strings.Builder
	b.WriteString("🆘 Polo AI Assistant help\n\n")
	b.WriteString("📝 Chat:\n  Type any message to talk to the assistant.\n\n")

	b.WriteString("🛠️  Tools (prefix with !):\n")
	for _, t := range r.tools.Tools() {
		line := fmt.Sprintf("  %-40s %s", t.Usage(), t.Description())
		if aliases := t.Aliases(); len(aliases) > 0 {
			line += " (alias: " + strings.Join(aliases, ", ") + ")"
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n⚙️  Builtins (prefix with /):\n")
	for _, name := range r.names {
		cmd := r.builtins[name]
		fmt.Fprintf(&b, "  %-40s %s\n", cmd.usage, cmd.description)
	}

	b.WriteString("\n💡 Tips:\n")
	b.WriteString("  Ctrl+C cancels the current input\n")
	b.WriteString("  Ctrl+D or /exit leaves the shell\n")
	b.WriteString("  Up and down arrows recall earlier input")
	return b.String()
}

func (r *REPL) cmdExit(context.Context, string) string {
	r.state = StateStopped
	return r.farewell()
}

func (r *REPL) cmdClear(context.Context, string) string {
	r.clear(r.out)
	return ""
}

func (r *REPL) cmdHistory(context.Context, string) string {
	if r.history == nil || r.history.Len() == 0 {
		return "📜 Command history is empty"
	}
	var b strings.Builder
	b.WriteString("📜 Recent commands:")
	for _, e := range r.history.Recent(recentHistory) {
		fmt.Fprintf(&b, "\n%3d. %s", e.Index, e.Line)
	}
	return b.String()
}

func (r *REPL) cmdStats(context.Context, string) string {
	var b strings.Builder
	b.WriteString("📈 Session statistics:\n")
	fmt.Fprintf(&b, "💬 Commands run: %d\n", r.count)
	if r.memory != nil {
		b.WriteString("🧠 Memory: enabled\n")
	} else {
		b.WriteString("🧠 Memory: disabled\n")
	}
	if r.agent != nil {
		fmt.Fprintf(&b, "🤖 Model: %s (%s)\n", r.agent.Model(), r.agent.Provider())
		fmt.Fprintf(&b, "🪪 Session: %s\n", r.agent.Session())
	}
	cwd, _ := os.Getwd()
	if r.exec != nil {
		cwd = r.exec.WorkDir()
	}
	fmt.Fprintf(&b, "📁 Working directory: %s\n", cwd)
	fmt.Fprintf(&b, "🐹 Go: %s", runtime.Version())
	if r.exec != nil {
		fmt.Fprintf(&b, "\n🔧 Tool calls: %d", r.exec.HistoryLen())
	}
	return b.String()
}

// Parameters worth showing in /tools, in display order.
var keyParams = []string{"command", "filepath", "path", "pattern", "src", "dst"}

func (r *REPL) cmdTools(context.Context, string) string {
	if r.exec == nil {
		return "❌ Tools are not available"
	}
	usages := r.exec.ToolHistory(recentHistory)
	if len(usages) == 0 {
		return "🔧 No tools used yet"
	}
	var b strings.Builder
	b.WriteString("🔧 Recent tool usage:")
	for i, u := range usages {
		fmt.Fprintf(&b, "\n%2d. [%s] %s%s", i+1, u.Timestamp.Format(timestampShort), u.Tool, formatParams(u))
	}
	return b.String()
}

func formatParams(u tools.Usage) string {
	var parts []string
	for _, k := range keyParams {
		if v, ok := u.Params[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func (r *REPL) cmdAbout(context.Context, string) string {
	version := r.version
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf(`🤖 Polo AI Assistant
📦 Version: %s

✨ Features:
• 🧠 Memory: conversations are kept in a JSON file and fed back as context
• 🛠️  Tools: shell commands and file operations with ! commands
• 💬 Chat: OpenAI, Anthropic and Gemini models
• 🔄 Interactive shell with input history`, version)
}

// preview shortens s to n characters, marking the cut with "...".
func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// shortTime renders a stored timestamp as "2006-01-02 15:04".
func shortTime(ts string) string {
	if len(ts) > len(timestampShort) {
		ts = ts[:len(timestampShort)]
	}
	return strings.Replace(ts, "T", " ", 1)
}
