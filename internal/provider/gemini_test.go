package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("X-Goog-Api-Key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		contents, _ := body["contents"].([]any)
		if assert.Len(t, contents, 2) {
			last, _ := contents[1].(map[string]any)
			assert.Equal(t, "user", last["role"])
			first, _ := contents[0].(map[string]any)
			assert.Equal(t, "model", first["role"])
		}
		assert.NotNil(t, body["systemInstruction"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Hola"}]},
				"finishReason": "STOP"
			}]
		}`))
	}))
	defer srv.Close()

	p, err := NewGemini(context.Background(), "g-key", srv.URL, "gemini-2.5-flash")
	require.NoError(t, err)
	reply, err := p.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleAssistant, Content: "earlier"},
		{Role: RoleUser, Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hola", reply)
	assert.Equal(t, "gemini", p.Name())
	assert.Equal(t, "gemini-2.5-flash", p.Model())
}

func TestGeminiChatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	p, err := NewGemini(context.Background(), "bad", srv.URL, "gemini-2.5-flash")
	require.NoError(t, err)
	_, err = p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hello"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini:")
	assert.Contains(t, err.Error(), "API key not valid")
}
