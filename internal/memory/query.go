package memory

import (
	"strings"
	"unicode/utf8"
)

// RecentConversations returns up to n of the newest records in chronological
// order.
func (s *Store) RecentConversations(n int) []Conversation {
	convs := s.doc.Conversations
	if n <= 0 || len(convs) == 0 {
		return []Conversation{}
	}
	if n > len(convs) {
		n = len(convs)
	}
	out := make([]Conversation, n)
	copy(out, convs[len(convs)-n:])
	return out
}

// ContextString renders the last n exchanges as "user:"/"assistant:" lines
// for prompt injection.
func (s *Store) ContextString(n int) string {
	recent := s.RecentConversations(n)
	if len(recent) == 0 {
		return ""
	}
	lines := make([]string, 0, len(recent)*2)
	for _, c := range recent {
		lines = append(lines, "user: "+c.User, "assistant: "+c.Assistant)
	}
	return strings.Join(lines, "\n")
}

// Search returns up to limit records whose user or assistant text contains
// keyword, ignoring case, newest first.
func (s *Store) Search(keyword string, limit int) []Conversation {
	results := []Conversation{}
	if limit <= 0 {
		return results
	}
	needle := strings.ToLower(keyword)
	convs := s.doc.Conversations
	for i := len(convs) - 1; i >= 0 && len(results) < limit; i-- {
		c := convs[i]
		if strings.Contains(strings.ToLower(c.User), needle) ||
			strings.Contains(strings.ToLower(c.Assistant), needle) {
			results = append(results, c)
		}
	}
	return results
}

type Stats struct {
	Total              int
	FirstConversation  string
	LastConversation   string
	AvgUserLength      float64
	AvgAssistantLength float64
	FileSize           int64
}

// Stats summarises the log. Lengths are counted in characters, not bytes.
func (s *Store) Stats() Stats {
	st := Stats{}
	if fi, err := s.fs.Stat(s.path); err == nil {
		st.FileSize = fi.Size()
	}
	convs := s.doc.Conversations
	if len(convs) == 0 {
		return st
	}

	st.Total = len(convs)
	st.FirstConversation = convs[0].Timestamp
	st.LastConversation = convs[len(convs)-1].Timestamp

	var userChars, assistantChars int
	for _, c := range convs {
		userChars += utf8.RuneCountInString(c.User)
		assistantChars += utf8.RuneCountInString(c.Assistant)
	}
	st.AvgUserLength = float64(userChars) / float64(st.Total)
	st.AvgAssistantLength = float64(assistantChars) / float64(st.Total)
	return st
}
