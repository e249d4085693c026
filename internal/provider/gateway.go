package provider

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeanpaul/polo/internal/logging"
)

// SystemPrompt is sent ahead of every conversation.
const SystemPrompt = `You are Polo, an AI assistant integrated into a command-line interface (CLI).
- You are helpful, concise, and efficient.
- You have access to a set of tools for file system operations and shell command execution.
- When a user asks you to perform a task that requires a tool, respond by stating the tool you would use in a clear format. For example: "I will use the shell tool to list the files: ` + "`!shell ls -l`" + `"
- For general conversation, provide direct and helpful answers.`

var displayNames = map[string]string{
	ProviderOpenAI: "OpenAI",
	ProviderClaude: "Anthropic",
	ProviderGemini: "Gemini",
}

// Gateway turns a user input plus prior context into a reply. It never
// returns an error: failures come back as a printable message.
type Gateway struct {
	provider Provider
	err      error
	logger   *zap.Logger
}

func NewGateway(p Provider, logger *zap.Logger) *Gateway {
	return &Gateway{provider: p, logger: logging.OrNop(logger).Named("gateway")}
}

// Unavailable returns a gateway that answers every chat with err.
func Unavailable(err error, logger *zap.Logger) *Gateway {
	return &Gateway{err: err, logger: logging.OrNop(logger).Named("gateway")}
}

// Available reports whether a backend is configured.
func (g *Gateway) Available() bool { return g.provider != nil }

func (g *Gateway) Name() string {
	if g.provider == nil {
		return "none"
	}
	return g.provider.Name()
}

func (g *Gateway) Model() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.Model()
}

func (g *Gateway) Chat(ctx context.Context, input, history string) string {
	if g.provider == nil {
		return fmt.Sprintf("❌ No language model available: %v", g.err)
	}

	msgs := []Message{{Role: RoleSystem, Content: SystemPrompt}}
	if history != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: "Previous conversation context:\n" + history})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: input})

	reply, err := g.provider.Chat(ctx, msgs)
	if err != nil {
		g.logger.Warn("chat failed",
			zap.String("provider", g.provider.Name()),
			zap.String("model", g.provider.Model()),
			zap.Error(err))
		label, ok := displayNames[g.provider.Name()]
		if !ok {
			label = g.provider.Name()
		}
		return fmt.Sprintf("❌ %s API Error: %s", label, friendlyProviderError(err))
	}
	return strings.TrimSpace(reply)
}
