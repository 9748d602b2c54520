package contact

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore is a map-backed Store for tests and dev wiring.
type InMemoryStore struct {
	mu       sync.RWMutex
	messages map[uuid.UUID]*Message
}

// NewInMemoryStore constructs an empty in-memory contact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{messages: make(map[uuid.UUID]*Message)}
}

func (s *InMemoryStore) Create(_ context.Context, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *msg
	s.messages[msg.ID] = &cp
	return nil
}

func (s *InMemoryStore) List(_ context.Context, params ListParams) ([]*Message, int, error) {
	params = params.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*Message, 0, len(s.messages))
	for _, m := range s.messages {
		cp := *m
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := params.Offset()
	if start >= total {
		return nil, total, nil
	}
	end := start + params.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}
