package memory

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triples(convs []Conversation) []dedupKey {
	out := make([]dedupKey, len(convs))
	for i, c := range convs {
		out[i] = keyOf(c)
	}
	return out
}

func TestExportImportRoundTrip(t *testing.T) {
	for _, path := range []string{"out/export.json", "out/export.yaml"} {
		t.Run(path, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			src := newTestStore(t, fs, "src.json")
			require.NoError(t, src.AddConversation("one", "1", map[string]any{"type": "chat"}))
			require.NoError(t, src.AddConversation("two", "2", nil))
			require.NoError(t, src.Export(path))

			dst := Open(fs, "dst.json", nil)
			added, err := dst.Import(path)
			require.NoError(t, err)
			assert.Equal(t, 2, added)

			assert.Equal(t, triples(src.doc.Conversations), triples(dst.doc.Conversations))
			for i, c := range dst.doc.Conversations {
				assert.Equal(t, i+1, c.ID)
			}
			assert.Equal(t, "chat", dst.doc.Conversations[0].Metadata["type"])
		})
	}
}

func TestImportDedupsAndSorts(t *testing.T) {
	fs := afero.NewMemMapFs()
	body := `{"conversations": [
	  {"id": 7, "timestamp": "2024-01-01T10:00:01.000000", "user": "a", "assistant": "1", "metadata": {}},
	  {"id": 8, "timestamp": "2023-06-01T08:00:00.000000", "user": "old", "assistant": "0"}
	]}`
	require.NoError(t, afero.WriteFile(fs, "in.json", []byte(body), 0644))

	s := newTestStore(t, fs, "mem.json")
	require.NoError(t, s.AddConversation("a", "1", nil))
	require.NoError(t, s.AddConversation("b", "2", nil))

	added, err := s.Import("in.json")
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, "old", s.doc.Conversations[0].User)
	assert.Equal(t, "a", s.doc.Conversations[1].User)
	assert.Equal(t, "b", s.doc.Conversations[2].User)
	assert.Equal(t, []int{1, 2, 3}, []int{
		s.doc.Conversations[0].ID, s.doc.Conversations[1].ID, s.doc.Conversations[2].ID,
	})

	reopened := Open(fs, "mem.json", nil)
	assert.Equal(t, 3, reopened.Len())
}

func TestImportDropsDuplicatesAlreadyStored(t *testing.T) {
	fs := afero.NewMemMapFs()
	stored := `{"conversations": [
	  {"id": 1, "timestamp": "2024-01-01T10:00:01.000000", "user": "a", "assistant": "1"},
	  {"id": 2, "timestamp": "2024-01-01T10:00:01.000000", "user": "a", "assistant": "1"},
	  {"id": 3, "timestamp": "2024-01-01T10:00:02.000000", "user": "b", "assistant": "2"}
	]}`
	require.NoError(t, afero.WriteFile(fs, "mem.json", []byte(stored), 0644))
	incoming := `{"conversations": [
	  {"id": 1, "timestamp": "2024-01-01T10:00:03.000000", "user": "c", "assistant": "3"}
	]}`
	require.NoError(t, afero.WriteFile(fs, "in.json", []byte(incoming), 0644))

	s := newTestStore(t, fs, "mem.json")
	require.Equal(t, 3, s.Len())

	added, err := s.Import("in.json")
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, []dedupKey{
		{"2024-01-01T10:00:01.000000", "a", "1"},
		{"2024-01-01T10:00:02.000000", "b", "2"},
		{"2024-01-01T10:00:03.000000", "c", "3"},
	}, triples(s.doc.Conversations))
	for i, c := range s.doc.Conversations {
		assert.Equal(t, i+1, c.ID)
	}
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newTestStore(t, fs, "mem.json")
	require.NoError(t, s.AddConversation("keep", "me", nil))

	cases := map[string]string{
		"list.json":    `[1, 2, 3]`,
		"missing.json": `{"context": {}}`,
		"notjson.json": `conversations: [`,
		"badtype.json": `{"conversations": {"a": 1}}`,
		"badyaml.yaml": "conversations: not-a-list\n",
	}
	for name, body := range cases {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0644))
		_, err := s.Import(name)
		assert.True(t, errors.Is(err, ErrInvalidDocument), name)
	}
	assert.Equal(t, 1, s.Len())
}

func TestImportMissingFile(t *testing.T) {
	s := newTestStore(t, afero.NewMemMapFs(), "mem.json")
	_, err := s.Import("nope.json")
	assert.Error(t, err)
}
