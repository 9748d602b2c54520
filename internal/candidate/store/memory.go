package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"zorvixe/internal/candidate/models"
	"zorvixe/pkg/platform/sentinel"
)

// InMemoryCandidates is a map-backed Candidates implementation.
type InMemoryCandidates struct {
	mu         sync.RWMutex
	candidates map[uuid.UUID]*models.Candidate
}

// NewInMemoryCandidates constructs an empty in-memory candidate store.
func NewInMemoryCandidates() *InMemoryCandidates {
	return &InMemoryCandidates{candidates: make(map[uuid.UUID]*models.Candidate)}
}

func (s *InMemoryCandidates) Create(_ context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.candidates {
		if existing.CandidateCode == candidate.CandidateCode {
			return fmt.Errorf("candidate code collision: %w", sentinel.ErrConflict)
		}
	}
	cp := *candidate
	s.candidates[candidate.ID] = &cp
	return nil
}

func (s *InMemoryCandidates) GetByID(_ context.Context, id uuid.UUID) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidate, ok := s.candidates[id]
	if !ok {
		return nil, fmt.Errorf("candidate %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *candidate
	return &cp, nil
}

func (s *InMemoryCandidates) List(_ context.Context, params ListParams) ([]*models.Candidate, int, error) {
	params = params.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Candidate
	needle := strings.ToLower(params.Search)
	for _, c := range s.candidates {
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Email), needle) &&
			!strings.Contains(strings.ToLower(c.Position), needle) {
			continue
		}
		cp := *c
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

func (s *InMemoryCandidates) UpdateStatus(_ context.Context, id uuid.UUID, status models.CandidateStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, ok := s.candidates[id]
	if !ok {
		return fmt.Errorf("candidate %s: %w", id, sentinel.ErrNotFound)
	}
	candidate.Status = status
	candidate.UpdatedAt = now
	return nil
}

// InMemoryUploads is a map-backed Uploads implementation.
type InMemoryUploads struct {
	mu      sync.RWMutex
	uploads map[uuid.UUID]*models.UploadRecord
}

// NewInMemoryUploads constructs an empty in-memory upload store.
func NewInMemoryUploads() *InMemoryUploads {
	return &InMemoryUploads{uploads: make(map[uuid.UUID]*models.UploadRecord)}
}

func (s *InMemoryUploads) Create(_ context.Context, record *models.UploadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.uploads {
		if existing.CandidateID == record.CandidateID {
			return fmt.Errorf("candidate %s already has an upload: %w", record.CandidateID, sentinel.ErrConflict)
		}
	}
	cp := *record
	s.uploads[record.ID] = &cp
	return nil
}

func (s *InMemoryUploads) GetByCandidate(_ context.Context, candidateID uuid.UUID) (*models.UploadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.uploads {
		if record.CandidateID == candidateID {
			cp := *record
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("upload for candidate %s: %w", candidateID, sentinel.ErrNotFound)
}
