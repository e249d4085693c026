package agent

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeanpaul/polo/internal/memory"
)

type echoGateway struct {
	histories []string
}

func (g *echoGateway) Chat(_ context.Context, input, history string) string {
	g.histories = append(g.histories, history)
	return "re: " + input
}

func (g *echoGateway) Name() string  { return "gemini" }
func (g *echoGateway) Model() string { return "gemini-2.5-flash" }

func TestChatRecordsExchange(t *testing.T) {
	store := memory.Open(afero.NewMemMapFs(), "mem.json", zaptest.NewLogger(t))
	gw := &echoGateway{}
	a := New(gw, Options{Memory: store, ContextTurns: 3, SessionID: "s-1", Logger: zaptest.NewLogger(t)})

	assert.Equal(t, "re: hello", a.Chat(context.Background(), "hello"))
	require.Equal(t, 1, store.Len())

	conv := store.RecentConversations(1)[0]
	assert.Equal(t, "hello", conv.User)
	assert.Equal(t, "re: hello", conv.Assistant)
	assert.Equal(t, "chat", conv.Metadata["type"])
	assert.Equal(t, "gemini", conv.Metadata["provider"])
	assert.Equal(t, "gemini-2.5-flash", conv.Metadata["model"])
	assert.Equal(t, "s-1", conv.Metadata["session"])
	assert.Equal(t, 1, a.Exchanges())
}

func TestChatSendsRecentContext(t *testing.T) {
	store := memory.Open(afero.NewMemMapFs(), "mem.json", nil)
	gw := &echoGateway{}
	a := New(gw, Options{Memory: store, ContextTurns: 1})

	a.Chat(context.Background(), "one")
	a.Chat(context.Background(), "two")
	a.Chat(context.Background(), "three")

	require.Len(t, gw.histories, 3)
	assert.Empty(t, gw.histories[0])
	assert.Equal(t, "user: one\nassistant: re: one", gw.histories[1])
	assert.Equal(t, "user: two\nassistant: re: two", gw.histories[2])
}

func TestChatWithoutMemory(t *testing.T) {
	gw := &echoGateway{}
	a := New(gw, Options{ContextTurns: 3})

	assert.Equal(t, "re: x", a.Chat(context.Background(), "x"))
	assert.Equal(t, []string{""}, gw.histories)
	assert.NotEmpty(t, a.Session())
	assert.Equal(t, "gemini", a.Provider())
}

func TestNegativeTurnsUseDefault(t *testing.T) {
	a := New(&echoGateway{}, Options{ContextTurns: -1})
	assert.Equal(t, DefaultContextTurns, a.turns)
}
