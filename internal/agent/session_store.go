package agent

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kestrelhq/kestrel/internal/domain"
)

// Store persists per-thread conversation history. A thread comes into
// existence on first Append; Load of an unseen identifier returns an
// empty history, not an error. Each Append is atomic and never reorders
// prior entries.
type Store interface {
	// Load returns the ordered message history of a thread.
	Load(ctx context.Context, threadID string) ([]domain.Message, error)

	// Append adds one message to a thread, creating it if needed.
	Append(ctx context.Context, threadID string, msg domain.Message) error

	// List returns metadata for all known threads, most recent first.
	// Messages are not populated.
	List(ctx context.Context) ([]domain.Thread, error)
}

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string]*domain.Thread
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: make(map[string]*domain.Thread)}
}

func (s *MemoryStore) Load(ctx context.Context, threadID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.threads[threadID]
	if !ok {
		return nil, nil
	}
	msgs := make([]domain.Message, len(t.Messages))
	copy(msgs, t.Messages)
	return msgs, nil
}

func (s *MemoryStore) Append(ctx context.Context, threadID string, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	t, ok := s.threads[threadID]
	if !ok {
		t = &domain.Thread{ID: threadID, CreatedAt: now}
		s.threads[threadID] = t
	}
	t.Messages = append(t.Messages, msg)
	t.UpdatedAt = now
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threads := make([]domain.Thread, 0, len(s.threads))
	for _, t := range s.threads {
		threads = append(threads, domain.Thread{
			ID:        t.ID,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		})
	}
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].UpdatedAt.After(threads[j].UpdatedAt)
	})
	return threads, nil
}
