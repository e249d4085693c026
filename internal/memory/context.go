package memory

import "sort"

// SetContextValue stores value under key in the free-form context map and
// persists the document.
func (s *Store) SetContextValue(key string, value any) error {
	s.doc.Context[key] = value
	return s.Save()
}

func (s *Store) ContextValue(key string) (any, bool) {
	v, ok := s.doc.Context[key]
	return v, ok
}

// RemoveContextValue deletes key. It reports false without touching the file
// when the key is absent.
func (s *Store) RemoveContextValue(key string) (bool, error) {
	if _, ok := s.doc.Context[key]; !ok {
		return false, nil
	}
	delete(s.doc.Context, key)
	return true, s.Save()
}

// ContextKeys lists the keys of the context map in sorted order.
func (s *Store) ContextKeys() []string {
	keys := make([]string, 0, len(s.doc.Context))
	for k := range s.doc.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
