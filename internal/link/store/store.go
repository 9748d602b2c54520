// Package store persists workflow links. Two implementations exist: InMemory
// for unit tests and dev wiring, Postgres for production.
//
// Error contract: methods return pkg/platform/sentinel errors for resource
// facts (ErrNotFound, ErrExpired, ErrAlreadyUsed) and wrapped infrastructure
// errors otherwise. Services translate these into domain errors.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"zorvixe/internal/link/models"
)

// Store is the token store shared by both workflows.
type Store interface {
	// Issue deactivates every currently-active link for the subject and
	// inserts the new one. Callers must run it inside a tx.Runner unit so the
	// two writes land atomically.
	Issue(ctx context.Context, link *models.Link) error

	// FindByToken looks a link up by exact token match.
	// Returns ErrNotFound when absent.
	FindByToken(ctx context.Context, token string) (*models.Link, error)

	// FindCurrentBySubject returns the newest non-expired, non-completed link
	// for the subject — the one an operator's toggle acts on.
	// Returns ErrNotFound when none exists.
	FindCurrentBySubject(ctx context.Context, subject models.SubjectRef, now time.Time) (*models.Link, error)

	// SetActive flips the active flag on the subject's current link.
	// Returns ErrNotFound when no non-expired link exists: reactivation past
	// the original deadline is not permitted.
	SetActive(ctx context.Context, subject models.SubjectRef, active bool, now time.Time) (*models.Link, error)

	// Claim performs the conditional completion transition: completed
	// false→true, active cleared, outcome reference recorded. Exactly one
	// concurrent claim per link can succeed.
	// Returns ErrNotFound (absent), ErrAlreadyUsed (already completed, even if
	// since expired) or ErrExpired (inactive or past deadline).
	Claim(ctx context.Context, token string, outcomeRef uuid.UUID, now time.Time) (*models.Link, error)

	// DeactivateExpired clears the active flag on links whose deadline passed.
	// Hygiene only: the gate never trusts Active without checking the
	// deadline. Returns the number of links touched.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}
