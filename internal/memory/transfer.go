package memory

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Export writes the whole document to path. Paths ending in .yaml or .yml
// are written as YAML, anything else as JSON.
func (s *Store) Export(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s.doc)
	} else {
		data, err = encodeDocument(s.doc)
	}
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		s.logger.Error("export memory failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("export memory: %w", err)
	}
	return nil
}

// Import merges the conversations of the document at path into the store.
// Records already present, compared by timestamp and text, are skipped. The
// result is ordered by timestamp, renumbered and persisted. It returns the
// number of records added.
func (s *Store) Import(path string) (int, error) {
	raw, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return 0, fmt.Errorf("read import file: %w", err)
	}
	if isYAML(path) {
		raw, err = yamlToJSON(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}
	imported, err := decodeDocument(raw, true)
	if err != nil {
		return 0, err
	}

	merged, added := mergeConversations(s.doc.Conversations, imported.Conversations)
	s.doc.Conversations = merged
	s.trim()
	if err := s.Save(); err != nil {
		return 0, err
	}
	return added, nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

type dedupKey struct {
	timestamp string
	user      string
	assistant string
}

func keyOf(c Conversation) dedupKey {
	return dedupKey{c.Timestamp, c.User, c.Assistant}
}

func mergeConversations(current, incoming []Conversation) ([]Conversation, int) {
	seen := make(map[dedupKey]struct{}, len(current)+len(incoming))
	merged := make([]Conversation, 0, len(current)+len(incoming))
	for _, c := range current {
		k := keyOf(c)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, c)
	}
	added := 0
	for _, c := range incoming {
		k := keyOf(c)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if c.Metadata == nil {
			c.Metadata = map[string]any{}
		}
		merged = append(merged, c)
		added++
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	renumber(merged)
	return merged, added
}
