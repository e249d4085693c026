package repl

import (
	"slices"
	"strings"
)

type Kind int

const (
	KindEmpty Kind = iota
	KindBuiltin
	KindTool
	KindChat
	KindUnknownBuiltin
	KindUnknownTool
)

var kindNames = [...]string{"empty", "builtin", "tool", "chat", "unknown_builtin", "unknown_tool"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

const (
	builtinPrefix = '/'
	toolPrefix    = '!'
)

// Command is one classified input line. Name is the lowercased builtin
// name, the canonical tool name, or for the unknown kinds the name as typed.
// Text is the whole trimmed line.
type Command struct {
	Kind Kind
	Name string
	Args string
	Text string
}

// Classify decides what a line asks for from its first character: '/' names
// a builtin, '!' a tool alias, anything else is chat.
func Classify(line string, builtins []string, aliases map[string]string) Command {
	text := strings.TrimSpace(line)
	if text == "" {
		return Command{Kind: KindEmpty}
	}

	switch text[0] {
	case builtinPrefix:
		name, args := splitHead(text[1:])
		if slices.Contains(builtins, name) {
			return Command{Kind: KindBuiltin, Name: name, Args: args, Text: text}
		}
		return Command{Kind: KindUnknownBuiltin, Name: name, Args: args, Text: text}
	case toolPrefix:
		name, args := splitHead(text[1:])
		if canonical, ok := aliases[name]; ok {
			return Command{Kind: KindTool, Name: canonical, Args: args, Text: text}
		}
		return Command{Kind: KindUnknownTool, Name: name, Args: args, Text: text}
	}
	return Command{Kind: KindChat, Text: text}
}

func splitHead(s string) (string, string) {
	head, rest, _ := strings.Cut(s, " ")
	return strings.ToLower(head), strings.TrimSpace(rest)
}
