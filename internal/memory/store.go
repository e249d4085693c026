// Package memory persists the conversation log as a single JSON document.
//
// A Store is bound to one file. Every mutation rewrites the whole file after
// copying the previous version to a ".backup" sibling. The store is not safe
// for concurrent use; it assumes a single writer.
package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/jeanpaul/polo/internal/logging"
)

const (
	// MaxConversations is the retention cap. Older records are dropped first.
	MaxConversations = 1000
	// DocumentVersion is written into every new document.
	DocumentVersion = "1.0"
	// TimestampLayout sorts lexically in chronological order.
	TimestampLayout = "2006-01-02T15:04:05.000000"
)

// Conversation is one stored exchange. ID is positional and is reassigned
// after every truncation or merge.
type Conversation struct {
	ID        int            `json:"id" yaml:"id"`
	Timestamp string         `json:"timestamp" yaml:"timestamp"`
	User      string         `json:"user" yaml:"user"`
	Assistant string         `json:"assistant" yaml:"assistant"`
	Metadata  map[string]any `json:"metadata" yaml:"metadata"`
}

type DocumentMeta struct {
	CreatedAt string `json:"created_at" yaml:"created_at"`
	Version   string `json:"version" yaml:"version"`
}

// Document is the on-disk layout of the memory file.
type Document struct {
	Conversations []Conversation `json:"conversations" yaml:"conversations"`
	Context       map[string]any `json:"context" yaml:"context"`
	Metadata      DocumentMeta   `json:"metadata" yaml:"metadata"`
}

func newDocument(now time.Time) *Document {
	return &Document{
		Conversations: []Conversation{},
		Context:       map[string]any{},
		Metadata: DocumentMeta{
			CreatedAt: now.Format(TimestampLayout),
			Version:   DocumentVersion,
		},
	}
}

// fillDefaults repairs documents written by older versions or by hand.
func (d *Document) fillDefaults(now time.Time) {
	if d.Conversations == nil {
		d.Conversations = []Conversation{}
	}
	if d.Context == nil {
		d.Context = map[string]any{}
	}
	if d.Metadata.CreatedAt == "" {
		d.Metadata.CreatedAt = now.Format(TimestampLayout)
	}
	if d.Metadata.Version == "" {
		d.Metadata.Version = DocumentVersion
	}
	for i := range d.Conversations {
		if d.Conversations[i].Metadata == nil {
			d.Conversations[i].Metadata = map[string]any{}
		}
	}
	renumber(d.Conversations)
}

// Store owns the in-memory copy of one memory file.
type Store struct {
	fs     afero.Fs
	path   string
	doc    *Document
	logger *zap.Logger
	now    func() time.Time
}

// Open binds a store to path and loads it. Open never fails: a missing file
// yields an empty document and a corrupt one is replaced by an empty document
// after logging a warning.
func Open(fs afero.Fs, path string, logger *zap.Logger) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	s := &Store{
		fs:     fs,
		path:   path,
		logger: logging.OrNop(logger).Named("memory"),
		now:    time.Now,
	}
	s.doc = s.load()
	return s
}

func (s *Store) Path() string { return s.path }

// Len returns the number of stored conversations.
func (s *Store) Len() int { return len(s.doc.Conversations) }

// Reload discards the in-memory document and reads the file again.
func (s *Store) Reload() {
	s.doc = s.load()
}

func (s *Store) load() *Document {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("cannot read memory file, starting with empty memory",
				zap.String("path", s.path), zap.Error(err))
		}
		return newDocument(s.now())
	}

	doc, err := decodeDocument(data, false)
	if err != nil {
		s.logger.Warn("memory file is corrupted, starting with empty memory",
			zap.String("path", s.path), zap.Error(err))
		return newDocument(s.now())
	}
	doc.fillDefaults(s.now())
	return doc
}

// decodeDocument validates raw JSON against the document schema before
// decoding it. When requireConversations is set the conversations array must
// be present.
func decodeDocument(data []byte, requireConversations bool) (*Document, error) {
	if err := validateDocument(data, requireConversations); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode memory document: %w", err)
	}
	return &doc, nil
}

func encodeDocument(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the document to disk. The previous file, if any, is copied to
// path + ".backup" first; a failed backup is logged and does not stop the
// save.
func (s *Store) Save() error {
	if err := s.backup(); err != nil {
		s.logger.Warn("memory backup failed", zap.String("path", s.path), zap.Error(err))
	}

	data, err := encodeDocument(s.doc)
	if err != nil {
		s.logger.Error("encode memory failed", zap.Error(err))
		return fmt.Errorf("encode memory: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			s.logger.Error("create memory directory failed", zap.String("dir", dir), zap.Error(err))
			return fmt.Errorf("create memory directory: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0644); err != nil {
		s.logger.Error("save memory failed", zap.String("path", s.path), zap.Error(err))
		return fmt.Errorf("save memory: %w", err)
	}
	return nil
}

func (s *Store) backup() error {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return afero.WriteFile(s.fs, s.path+".backup", data, 0644)
}

// AddConversation appends an exchange, enforces the retention cap and
// persists. A nil error means the record is on disk.
func (s *Store) AddConversation(user, assistant string, metadata map[string]any) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	s.doc.Conversations = append(s.doc.Conversations, Conversation{
		ID:        len(s.doc.Conversations) + 1,
		Timestamp: s.now().Format(TimestampLayout),
		User:      user,
		Assistant: assistant,
		Metadata:  metadata,
	})
	s.trim()
	return s.Save()
}

// trim drops the oldest records beyond MaxConversations and renumbers.
func (s *Store) trim() {
	if n := len(s.doc.Conversations); n > MaxConversations {
		kept := make([]Conversation, MaxConversations)
		copy(kept, s.doc.Conversations[n-MaxConversations:])
		s.doc.Conversations = kept
		renumber(s.doc.Conversations)
	}
}

func renumber(convs []Conversation) {
	for i := range convs {
		convs[i].ID = i + 1
	}
}

// Clear replaces the document with an empty one and persists it.
func (s *Store) Clear() error {
	s.doc = newDocument(s.now())
	return s.Save()
}
