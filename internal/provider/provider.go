// Package provider talks to the chat backends of OpenAI, Anthropic and
// Google behind one interface.
package provider

import "context"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Provider sends a conversation to a backend and returns the reply text.
type Provider interface {
	Chat(ctx context.Context, msgs []Message) (string, error)
	Name() string
	Model() string
}

// splitSystem separates system messages, joined by blank lines, from the
// rest of the conversation.
func splitSystem(msgs []Message) (string, []Message) {
	var system string
	rest := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
