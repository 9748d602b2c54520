// Package store persists candidates and their upload records. InMemory backs
// unit tests and dev mode, Postgres backs production. Both return sentinel
// errors for resource facts.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"zorvixe/internal/candidate/models"
)

// ListParams shapes paginated listings. Page is 1-based; Search matches name,
// email, or position case-insensitively.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
}

// Normalize clamps paging values to sane bounds.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 || p.PerPage > 100 {
		p.PerPage = 20
	}
	return p
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Candidates persists the workflow subjects.
type Candidates interface {
	// Create inserts a new candidate. Returns ErrConflict on code collision.
	Create(ctx context.Context, candidate *models.Candidate) error

	// GetByID returns the candidate or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error)

	// List returns a page of candidates plus the total match count, newest
	// first.
	List(ctx context.Context, params ListParams) ([]*models.Candidate, int, error)

	// UpdateStatus sets the denormalized workflow status.
	// Returns ErrNotFound when the candidate does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CandidateStatus, now time.Time) error
}

// Uploads persists the workflow outcomes.
type Uploads interface {
	// Create inserts an upload record. Returns ErrConflict when the candidate
	// already has one; the link claim normally prevents this from being
	// reachable, the store check is the storage-level backstop.
	Create(ctx context.Context, record *models.UploadRecord) error

	// GetByCandidate returns the candidate's record or ErrNotFound.
	GetByCandidate(ctx context.Context, candidateID uuid.UUID) (*models.UploadRecord, error)
}
