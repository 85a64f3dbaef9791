package memory

import (
	"sync"

	"github.com/guildbot-ai/guildbot/pkg/models"
)

// Store holds a bounded rolling window of recent turns per conversation.
// Windows are created lazily on first append and live for the process
// lifetime; conversation continuity is best-effort, not durable.
type Store struct {
	mu       sync.Mutex
	maxTurns int
	windows  map[string][]models.Turn
}

// New creates a Store capping each window at 2×memoryTurns entries
// (one user and one assistant turn per remembered exchange).
func New(memoryTurns int) *Store {
	return &Store{
		maxTurns: memoryTurns * 2,
		windows:  make(map[string][]models.Turn),
	}
}

// Append pushes a turn onto the conversation's window, evicting the oldest
// turn first when the cap is reached.
func (s *Store) Append(conversationID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.windows[conversationID]
	window = append(window, models.Turn{Role: role, Content: content})
	if len(window) > s.maxTurns {
		window = window[len(window)-s.maxTurns:]
	}
	s.windows[conversationID] = window
}

// Window returns a copy of the conversation's current window, oldest first.
func (s *Store) Window(conversationID string) []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	window := s.windows[conversationID]
	out := make([]models.Turn, len(window))
	copy(out, window)
	return out
}
