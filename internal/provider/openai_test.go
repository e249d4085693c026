package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockChatServer(t *testing.T, status int, body string, check func(*oaiRequest, *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var req oaiRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if check != nil {
			check(&req, r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIChat(t *testing.T) {
	srv := mockChatServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"Hello there"}}]}`,
		func(req *oaiRequest, r *http.Request) {
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			assert.Equal(t, "gpt-4o", req.Model)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Equal(t, "hi", req.Messages[1].Content)
		})

	p := NewOpenAI(srv.URL+"/", "sk-test", "gpt-4o")
	reply, err := p.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "gpt-4o", p.Model())
}

func TestOpenAIChatWithoutKeyOmitsAuthorization(t *testing.T) {
	srv := mockChatServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`,
		func(_ *oaiRequest, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
		})

	reply, err := NewOpenAI(srv.URL, "", "gpt-4").Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}

func TestOpenAIChatStatusError(t *testing.T) {
	srv := mockChatServer(t, http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided"}}`, nil)

	_, err := NewOpenAI(srv.URL, "bad", "gpt-4").Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "Incorrect API key provided", se.Message)
	assert.Equal(t, "Incorrect API key provided", friendlyProviderError(err))
}

func TestOpenAIChatNoChoices(t *testing.T) {
	srv := mockChatServer(t, http.StatusOK, `{"choices":[]}`, nil)

	_, err := NewOpenAI(srv.URL, "k", "gpt-4").Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	assert.ErrorContains(t, err, "no choices")
}

func TestParseProviderErrorFallbacks(t *testing.T) {
	cases := map[int]string{
		401: "authentication failed, check your API key",
		429: "rate limited, too many requests",
		503: "provider service temporarily unavailable",
		529: "provider is overloaded, please try again later",
	}
	for code, want := range cases {
		se := parseProviderError("openai", code, []byte("not json"))
		assert.Equal(t, want, se.Message, "status %d", code)
		assert.Equal(t, code, se.StatusCode)
	}

	se := parseProviderError("openai", 418, []byte("teapot"))
	assert.Equal(t, "teapot", se.Message)
}

func TestAnthropicChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ant-key", r.Header.Get("X-Api-Key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-3-5-sonnet-latest", body["model"])
		assert.NotNil(t, body["system"])
		msgs, _ := body["messages"].([]any)
		assert.Len(t, msgs, 1)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-sonnet-latest",
			"content": [{"type": "text", "text": "Bonjour"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 3, "output_tokens": 1}
		}`))
	}))
	defer srv.Close()

	p := NewAnthropic("ant-key", srv.URL, "claude-3-5-sonnet-latest")
	reply, err := p.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", reply)
	assert.Equal(t, "claude", p.Name())
}

func TestSplitSystem(t *testing.T) {
	system, rest := splitSystem([]Message{
		{Role: RoleSystem, Content: "a"},
		{Role: RoleUser, Content: "u"},
		{Role: RoleSystem, Content: "b"},
	})
	assert.Equal(t, "a\n\nb", system)
	require.Len(t, rest, 1)
	assert.Equal(t, RoleUser, rest[0].Role)
}
