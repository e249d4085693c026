// Package agent ties the language model gateway to the memory store: it
// builds the prompt context from recent exchanges and records each reply.
package agent

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeanpaul/polo/internal/logging"
	"github.com/jeanpaul/polo/internal/memory"
	"github.com/jeanpaul/polo/internal/provider"
)

// DefaultContextTurns is the number of prior exchanges sent with each prompt.
const DefaultContextTurns = 3

// Gateway is the part of provider.Gateway the agent needs.
type Gateway interface {
	Chat(ctx context.Context, input, history string) string
	Name() string
	Model() string
}

var _ Gateway = (*provider.Gateway)(nil)

type Agent struct {
	gateway Gateway
	memory  *memory.Store
	turns   int
	session string
	count   int
	logger  *zap.Logger
}

type Options struct {
	// Memory may be nil, in which case no context is sent and nothing is
	// recorded.
	Memory       *memory.Store
	ContextTurns int
	SessionID    string
	Logger       *zap.Logger
}

func New(gw Gateway, opts Options) *Agent {
	turns := opts.ContextTurns
	if turns < 0 {
		turns = DefaultContextTurns
	}
	session := opts.SessionID
	if session == "" {
		session = uuid.NewString()
	}
	return &Agent{
		gateway: gw,
		memory:  opts.Memory,
		turns:   turns,
		session: session,
		logger:  logging.OrNop(opts.Logger).Named("agent"),
	}
}

func (a *Agent) Session() string { return a.session }

// Exchanges is the number of chats handled by this agent.
func (a *Agent) Exchanges() int { return a.count }

func (a *Agent) Provider() string { return a.gateway.Name() }

func (a *Agent) Model() string { return a.gateway.Model() }

// Chat answers input using the last few stored exchanges as context and
// appends the exchange to memory. Backend failures come back as the reply
// text and are recorded like any other answer.
func (a *Agent) Chat(ctx context.Context, input string) string {
	a.count++

	var history string
	if a.memory != nil && a.turns > 0 {
		history = a.memory.ContextString(a.turns)
	}

	reply := a.gateway.Chat(ctx, input, history)

	if a.memory != nil {
		meta := map[string]any{
			"type":     "chat",
			"provider": a.gateway.Name(),
			"model":    a.gateway.Model(),
			"session":  a.session,
		}
		if err := a.memory.AddConversation(input, reply, meta); err != nil {
			a.logger.Warn("failed to record chat", zap.Error(err))
		}
	}
	return reply
}
