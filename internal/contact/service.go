package contact

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"zorvixe/internal/audit"
	dErrors "zorvixe/pkg/domain-errors"
	"zorvixe/pkg/requestcontext"
)

// Service records and lists contact messages.
type Service struct {
	store  Store
	logger *slog.Logger
	audit  *audit.Publisher
}

// NewService constructs the contact service. logger and publisher may be nil.
func NewService(store Store, logger *slog.Logger, publisher *audit.Publisher) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, audit: publisher}
}

// Submit records one public submission.
func (s *Service) Submit(ctx context.Context, msg Message) (*Message, error) {
	msg.ID = uuid.New()
	msg.CreatedAt = requestcontext.Now(ctx)

	if err := s.store.Create(ctx, &msg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record message")
	}

	_ = s.audit.Emit(ctx, audit.Event{
		Action: audit.ActionContactReceived,
		Detail: msg.Email,
	})
	s.logger.InfoContext(ctx, "contact message received", "message_id", msg.ID)
	return &msg, nil
}

// List returns a page of messages for the admin surface.
func (s *Service) List(ctx context.Context, params ListParams) ([]*Message, int, error) {
	messages, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list messages")
	}
	return messages, total, nil
}
