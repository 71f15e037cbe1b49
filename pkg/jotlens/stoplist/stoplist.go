package stoplist

import (
	"sort"
	"strings"
)

// english is the fixed function-word list used when no stoplist is configured.
var english = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your",
	"yours", "he", "him", "his", "she", "her", "it", "its", "they", "them",
	"their", "what", "which", "who", "whom", "this", "that", "these", "those",
	"am", "is", "are", "was", "were", "be", "been", "being", "have", "has",
	"had", "having", "do", "does", "did", "doing", "a", "an", "the", "and",
	"but", "if", "or", "because", "as", "until", "while", "of", "at", "by",
	"for", "with", "about", "to", "from", "in", "out", "on", "off", "so",
	"then", "too", "very", "can", "will", "just", "don", "should", "now", "s",
	"t",
}

// Default returns a copy of the built-in English stop words.
func Default() []string {
	out := make([]string, len(english))
	copy(out, english)
	return out
}

// Manager holds an immutable stop-word set.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a manager over the given words, lowercased.
func NewManager(words []string) *Manager {
	stops := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		stops[w] = struct{}{}
	}
	return &Manager{stops: stops}
}

// IsStop reports whether token is a stop word. Matching is exact and
// case-insensitive.
func (m *Manager) IsStop(token string) bool {
	if m == nil {
		return false
	}
	_, ok := m.stops[strings.ToLower(token)]
	return ok
}

// Len returns the number of stop words.
func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.stops)
}

// All returns every stop word in sorted order.
func (m *Manager) All() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.stops))
	for s := range m.stops {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
