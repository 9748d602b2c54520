// Package store persists clients and their payment registrations. InMemory
// backs unit tests and dev mode, Postgres backs production. Both return
// sentinel errors for resource facts.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"zorvixe/internal/client/models"
)

// ListParams shapes paginated listings. Page is 1-based; Search matches
// name, email, or company case-insensitively.
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

// Clients persists the workflow subjects.
type Clients interface {
	// Create inserts a new client. Returns ErrConflict on code collision.
	Create(ctx context.Context, client *models.Client) error

	// GetByID returns the client or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error)

	// List returns a page of clients plus the total match count, newest first.
	List(ctx context.Context, params ListParams) ([]*models.Client, int, error)

	// UpdateStatus sets the denormalized workflow status.
	// Returns ErrNotFound when the client does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ClientStatus, now time.Time) error
}

// Payments persists the workflow outcomes.
type Payments interface {
	// Create inserts a registration. Returns ErrConflict when the client
	// already has one; the link claim normally prevents this from being
	// reachable, the store check is the storage-level backstop.
	Create(ctx context.Context, payment *models.PaymentRegistration) error

	// GetByID returns the registration or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentRegistration, error)

	// GetByClient returns the client's registration or ErrNotFound.
	GetByClient(ctx context.Context, clientID uuid.UUID) (*models.PaymentRegistration, error)

	// List returns a page of registrations plus the total count, newest first.
	List(ctx context.Context, params ListParams) ([]*models.PaymentRegistration, int, error)

	// UpdateStatus moves the review status. Returns ErrNotFound when absent.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, now time.Time) error
}
