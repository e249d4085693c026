package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeanpaul/polo/internal/memory"
)

const memoryUsage = `Usage: /memory [action]
  (no action)         show memory statistics
  search <keyword>    search stored conversations
  clear               delete every stored conversation
  export <file>       write memory to a .json or .yaml file
  import <file>       merge conversations from a .json or .yaml file
  set <key> <value>   store a context value
  get [key]           show a context value, or list the keys
  unset <key>         remove a context value
  reload              re-read the memory file`

func (r *REPL) cmdMemory(_ context.Context, args string) string {
	if r.memory == nil {
		return "❌ Memory is disabled"
	}
	action, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(action) {
	case "":
		return r.memoryStats()
	case "search":
		if rest == "" {
			return "❌ Usage: /memory search <keyword>"
		}
		return r.memorySearch(rest)
	case "clear":
		if err := r.memory.Clear(); err != nil {
			return fmt.Sprintf("❌ Failed to clear memory: %v", err)
		}
		return "✅ Memory cleared"
	case "export":
		if rest == "" {
			return "❌ Usage: /memory export <file>"
		}
		if err := r.memory.Export(rest); err != nil {
			return fmt.Sprintf("❌ Export failed: %v", err)
		}
		return "✅ Memory exported to: " + rest
	case "import":
		if rest == "" {
			return "❌ Usage: /memory import <file>"
		}
		n, err := r.memory.Import(rest)
		if err != nil {
			return fmt.Sprintf("❌ Import failed: %v", err)
		}
		return fmt.Sprintf("✅ Imported %d new conversation(s) from %s", n, rest)
	case "set":
		key, value, _ := strings.Cut(rest, " ")
		if key == "" || strings.TrimSpace(value) == "" {
			return "❌ Usage: /memory set <key> <value>"
		}
		if err := r.memory.SetContextValue(key, strings.TrimSpace(value)); err != nil {
			return fmt.Sprintf("❌ Failed to save context: %v", err)
		}
		return fmt.Sprintf("✅ %s = %s", key, strings.TrimSpace(value))
	case "get":
		if rest == "" {
			keys := r.memory.ContextKeys()
			if len(keys) == 0 {
				return "📭 No context values stored"
			}
			return "🗝️  Context keys: " + strings.Join(keys, ", ")
		}
		v, ok := r.memory.ContextValue(rest)
		if !ok {
			return "❌ No context value for " + rest
		}
		return fmt.Sprintf("%s = %v", rest, v)
	case "unset":
		if rest == "" {
			return "❌ Usage: /memory unset <key>"
		}
		removed, err := r.memory.RemoveContextValue(rest)
		if err != nil {
			return fmt.Sprintf("❌ Failed to save context: %v", err)
		}
		if !removed {
			return "❌ No context value for " + rest
		}
		return "✅ Removed " + rest
	case "reload":
		r.memory.Reload()
		return fmt.Sprintf("🔄 Memory reloaded: %d conversations", r.memory.Len())
	}
	return "❌ Unknown memory action: " + action + "\n" + memoryUsage
}

func (r *REPL) memoryStats() string {
	st := r.memory.Stats()
	first, last := "none", "none"
	if st.Total > 0 {
		first = strings.Replace(trimTo(st.FirstConversation, 19), "T", " ", 1)
		last = strings.Replace(trimTo(st.LastConversation, 19), "T", " ", 1)
	}

	var b strings.Builder
	b.WriteString("🧠 Memory statistics:\n")
	fmt.Fprintf(&b, "📊 Conversations: %d\n", st.Total)
	fmt.Fprintf(&b, "📅 First: %s\n", first)
	fmt.Fprintf(&b, "🕒 Latest: %s\n", last)
	fmt.Fprintf(&b, "📝 File: %s\n", r.memory.Path())
	fmt.Fprintf(&b, "💾 Size: %d bytes", st.FileSize)

	if recent := r.memory.RecentConversations(recentMemory); len(recent) > 0 {
		b.WriteString("\n\n📚 Recent conversations:")
		writeConversations(&b, recent)
	}
	return b.String()
}

func (r *REPL) memorySearch(keyword string) string {
	found := r.memory.Search(keyword, searchLimit)
	if len(found) == 0 {
		return fmt.Sprintf("🔍 No conversations match %q", keyword)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 %d conversation(s) match %q:", len(found), keyword)
	writeConversations(&b, found)
	return b.String()
}

func writeConversations(b *strings.Builder, convs []memory.Conversation) {
	for i, c := range convs {
		fmt.Fprintf(b, "\n%d. [%s] %s", i+1, shortTime(c.Timestamp), preview(c.User, previewChars))
	}
}

func trimTo(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
