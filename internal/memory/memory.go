// Package memory keeps a bounded, in-process conversation history per user.
// Nothing is persisted; history is lost on restart.
package memory

import "sync"

// Role values for history entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is one message of a conversation.
type Entry struct {
	Role    string
	Content string
}

// Store holds the rolling history of every user.
type Store struct {
	mu      sync.Mutex
	history map[int64][]Entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{history: make(map[int64][]Entry)}
}

// History returns a copy of the last maxEntries entries for userID, oldest
// first.
func (s *Store) History(userID int64, maxEntries int) []Entry {
	if maxEntries <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.history[userID]
	if len(entries) > maxEntries {
		entries = entries[len(entries)-maxEntries:]
	}

	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Append records one exchange and trims the history to the last maxEntries
// entries. The bound counts entries, not exchanges, so an odd bound can leave
// an assistant reply as the oldest kept entry.
func (s *Store) Append(userID int64, userText, assistantText string, maxEntries int) {
	if maxEntries <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.history[userID],
		Entry{Role: RoleUser, Content: userText},
		Entry{Role: RoleAssistant, Content: assistantText},
	)
	if len(entries) > maxEntries {
		trimmed := make([]Entry, maxEntries)
		copy(trimmed, entries[len(entries)-maxEntries:])
		entries = trimmed
	}
	s.history[userID] = entries
}

// Clear forgets the history of userID.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, userID)
}
