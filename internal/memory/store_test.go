package memory

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// fakeClock returns increasing timestamps one second apart.
func fakeClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T, fs afero.Fs, path string) *Store {
	t.Helper()
	s := Open(fs, path, zaptest.NewLogger(t))
	s.now = fakeClock(time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local))
	return s
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newTestStore(t, fs, "mem.json")

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, DocumentVersion, s.doc.Metadata.Version)
	exists, _ := afero.Exists(fs, "mem.json")
	assert.False(t, exists)
}

func TestOpenCorruptFileWarnsAndStartsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "mem.json", []byte("{not json"), 0644))

	core, logs := observer.New(zapcore.WarnLevel)
	s := Open(fs, "mem.json", zap.New(core))

	assert.Equal(t, 0, s.Len())
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "corrupted")
}

func TestOpenWrongShapeIsCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "mem.json", []byte(`{"conversations": "nope"}`), 0644))

	core, logs := observer.New(zapcore.WarnLevel)
	s := Open(fs, "mem.json", zap.New(core))

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, logs.Len())
}

func TestOpenFillsMissingSections(t *testing.T) {
	fs := afero.NewMemMapFs()
	body := `{"conversations":[{"id":1,"timestamp":"2024-01-01T00:00:00.000000","user":"hi","assistant":"yo"}]}`
	require.NoError(t, afero.WriteFile(fs, "mem.json", []byte(body), 0644))

	s := newTestStore(t, fs, "mem.json")
	require.Equal(t, 1, s.Len())
	assert.NotNil(t, s.doc.Context)
	assert.NotNil(t, s.doc.Conversations[0].Metadata)
	assert.Equal(t, DocumentVersion, s.doc.Metadata.Version)
}

func TestOpenRenumbersHandEditedIDs(t *testing.T) {
	fs := afero.NewMemMapFs()
	body := `{"conversations":[
	  {"id":4,"timestamp":"2024-01-01T00:00:00.000000","user":"a","assistant":"1"},
	  {"id":2,"timestamp":"2024-01-01T00:00:01.000000","user":"b","assistant":"2"}
	]}`
	require.NoError(t, afero.WriteFile(fs, "mem.json", []byte(body), 0644))

	s := newTestStore(t, fs, "mem.json")
	require.NoError(t, s.AddConversation("c", "3", nil))

	ids := make([]int, 0, s.Len())
	for _, c := range s.doc.Conversations {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestAddConversationPersists(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newTestStore(t, fs, "data/mem.json")

	require.NoError(t, s.AddConversation("héllo", "wörld <b>", map[string]any{"type": "chat"}))
	require.NoError(t, s.AddConversation("second", "reply", nil))

	raw, err := afero.ReadFile(fs, "data/mem.json")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "héllo")
	assert.Contains(t, string(raw), "<b>")
	assert.Contains(t, string(raw), "\n  \"conversations\"")

	reopened := Open(fs, "data/mem.json", nil)
	require.Equal(t, 2, reopened.Len())
	c := reopened.RecentConversations(2)
	assert.Equal(t, 1, c[0].ID)
	assert.Equal(t, 2, c[1].ID)
	assert.Equal(t, "chat", c[0].Metadata["type"])
	assert.Equal(t, "2024-01-01T10:00:01.000000", c[0].Timestamp)
}

func TestSaveWritesBackup(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newTestStore(t, fs, "mem.json")

	require.NoError(t, s.AddConversation("one", "1", nil))
	_, err := fs.Stat("mem.json.backup")
	assert.Error(t, err, "first save has nothing to back up")

	require.NoError(t, s.AddConversation("two", "2", nil))
	raw, err := afero.ReadFile(fs, "mem.json.backup")
	require.NoError(t, err)

	var prev Document
	require.NoError(t, json.Unmarshal(raw, &prev))
	assert.Len(t, prev.Conversations, 1)
}

func TestSaveFailsOnReadOnlyFs(t *testing.T) {
	s := newTestStore(t, afero.NewReadOnlyFs(afero.NewMemMapFs()), "mem.json")
	assert.Error(t, s.AddConversation("a", "b", nil))
}

func TestRetentionCapRenumbers(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newTestStore(t, fs, "mem.json")

	for i := 0; i < MaxConversations+5; i++ {
		s.doc.Conversations = append(s.doc.Conversations, Conversation{
			ID: i + 1, User: fmt.Sprintf("u%d", i), Metadata: map[string]any{},
		})
	}
	s.trim()
	require.NoError(t, s.AddConversation("last", "x", nil))

	require.Equal(t, MaxConversations, s.Len())
	for i, c := range s.doc.Conversations {
		assert.Equal(t, i+1, c.ID)
	}
	assert.Equal(t, "u6", s.doc.Conversations[0].User)
	assert.Equal(t, "last", s.doc.Conversations[MaxConversations-1].User)
}

func TestClear(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newTestStore(t, fs, "mem.json")
	require.NoError(t, s.AddConversation("a", "b", nil))
	require.NoError(t, s.SetContextValue("k", "v"))

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
	_, ok := s.ContextValue("k")
	assert.False(t, ok)

	s.Reload()
	assert.Equal(t, 0, s.Len())
}

func TestContextValues(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newTestStore(t, fs, "mem.json")

	require.NoError(t, s.SetContextValue("project", "polo"))
	require.NoError(t, s.SetContextValue("answer", 42))
	assert.Equal(t, []string{"answer", "project"}, s.ContextKeys())

	reopened := Open(fs, "mem.json", nil)
	v, ok := reopened.ContextValue("project")
	require.True(t, ok)
	assert.Equal(t, "polo", v)

	removed, err := reopened.RemoveContextValue("project")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = reopened.RemoveContextValue("project")
	require.NoError(t, err)
	assert.False(t, removed)

	again := Open(fs, "mem.json", nil)
	_, ok = again.ContextValue("project")
	assert.False(t, ok)
}
