package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"zorvixe/internal/link/models"
	"zorvixe/pkg/platform/sentinel"
)

// InMemory stores links in memory for tests and dev mode. It favors clarity
// over performance.
type InMemory struct {
	mu    sync.RWMutex
	links map[string]*models.Link // by token
}

// NewInMemory constructs an empty in-memory link store.
func NewInMemory() *InMemory {
	return &InMemory{links: make(map[string]*models.Link)}
}

func (s *InMemory) Issue(_ context.Context, link *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[link.Token]; exists {
		return fmt.Errorf("token collision: %w", sentinel.ErrConflict)
	}
	for _, l := range s.links {
		if l.Subject == link.Subject && l.Active {
			l.Active = false
		}
	}
	cp := *link
	s.links[link.Token] = &cp
	return nil
}

func (s *InMemory) FindByToken(_ context.Context, token string) (*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.links[token]
	if !ok {
		return nil, fmt.Errorf("link not found: %w", sentinel.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (s *InMemory) FindCurrentBySubject(_ context.Context, subject models.SubjectRef, now time.Time) (*models.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := s.current(subject, now)
	if l == nil {
		return nil, fmt.Errorf("link not found: %w", sentinel.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (s *InMemory) SetActive(_ context.Context, subject models.SubjectRef, active bool, now time.Time) (*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.current(subject, now)
	if l == nil {
		return nil, fmt.Errorf("link not found: %w", sentinel.ErrNotFound)
	}
	l.Active = active
	cp := *l
	return &cp, nil
}

func (s *InMemory) Claim(_ context.Context, token string, outcomeRef uuid.UUID, now time.Time) (*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[token]
	if !ok {
		return nil, fmt.Errorf("link not found: %w", sentinel.ErrNotFound)
	}
	if l.Completed {
		return nil, fmt.Errorf("link already completed: %w", sentinel.ErrAlreadyUsed)
	}
	if !l.Usable(now) {
		return nil, fmt.Errorf("link unusable: %w", sentinel.ErrExpired)
	}

	l.Completed = true
	l.Active = false
	ref := outcomeRef
	l.OutcomeRef = &ref

	cp := *l
	return &cp, nil
}

func (s *InMemory) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, l := range s.links {
		if l.Active && l.Expired(now) {
			l.Active = false
			n++
		}
	}
	return n, nil
}

// current picks the newest non-expired, non-completed link for the subject.
// Callers must hold at least a read lock.
func (s *InMemory) current(subject models.SubjectRef, now time.Time) *models.Link {
	var best *models.Link
	for _, l := range s.links {
		if l.Subject != subject || l.Completed || l.Expired(now) {
			continue
		}
		if best == nil || l.CreatedAt.After(best.CreatedAt) {
			best = l
		}
	}
	return best
}
