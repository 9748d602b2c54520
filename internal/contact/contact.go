// Package contact accepts public contact-form submissions and lists them for
// operators. No tokens are involved; this is plain request plumbing.
package contact

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is one public contact submission.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ListParams shapes paginated listings. Page is 1-based.
type ListParams struct {
	Page    int
	PerPage int
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

// Store persists contact messages.
type Store interface {
	Create(ctx context.Context, msg *Message) error
	List(ctx context.Context, params ListParams) ([]*Message, int, error)
}
