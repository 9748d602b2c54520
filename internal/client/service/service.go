// Package service implements the payment-registration workflow around the
// Client subject: admin CRUD, link issuance, and the gated completion.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"zorvixe/internal/audit"
	"zorvixe/internal/client/metrics"
	"zorvixe/internal/client/models"
	"zorvixe/internal/client/store"
	linkmodels "zorvixe/internal/link/models"
	linkservice "zorvixe/internal/link/service"
	dErrors "zorvixe/pkg/domain-errors"
	"zorvixe/pkg/platform/sentinel"
	"zorvixe/pkg/platform/tx"
	"zorvixe/pkg/refcode"
	"zorvixe/pkg/requestcontext"
)

// Service orchestrates client and payment operations. The completion path
// (RegisterPayment) runs its claim and writes inside one Runner unit.
type Service struct {
	clients  store.Clients
	payments store.Payments
	links    *linkservice.Service
	runner   tx.Runner

	logger  *slog.Logger
	audit   *audit.Publisher
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures optional collaborators.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAudit attaches the audit publisher.
func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// WithMetrics attaches payment workflow collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the client service.
func New(clients store.Clients, payments store.Payments, links *linkservice.Service, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		clients:  clients,
		payments: payments,
		links:    links,
		runner:   runner,
		logger:   slog.Default(),
		tracer:   otel.Tracer("zorvixe/client"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateClient registers a new client with freshly generated codes.
func (s *Service) CreateClient(ctx context.Context, in models.NewClientInput) (*models.Client, error) {
	ctx, span := s.tracer.Start(ctx, "client.Create")
	defer span.End()

	clientCode, err := refcode.Client()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}
	projectCode, err := refcode.Project()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}

	client, err := models.NewClient(in, clientCode, projectCode, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.clients.Create(ctx, client); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "client code collision, retry")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}

	s.logger.InfoContext(ctx, "client created",
		"client_id", client.ID,
		"client_code", client.ClientCode,
	)
	return client, nil
}

// ListClients returns a page of clients and the total match count.
func (s *Service) ListClients(ctx context.Context, params store.ListParams) ([]*models.Client, int, error) {
	clients, total, err := s.clients.List(ctx, params)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clients")
	}
	return clients, total, nil
}

// GetClient loads one client with its payment registration, if any.
func (s *Service) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, *models.PaymentRegistration, error) {
	client, err := s.clients.GetByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "client not found")
	}
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}

	payment, err := s.payments.GetByClient(ctx, id)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}
	return client, payment, nil
}

// UpdateClientStatus applies an operator status change. payment_completed is
// reserved for the completion transaction and refused here.
func (s *Service) UpdateClientStatus(ctx context.Context, id uuid.UUID, status models.ClientStatus) (*models.Client, error) {
	if !status.AdminSettable() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "status %q cannot be set directly", status)
	}

	err := s.clients.UpdateStatus(ctx, id, status, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "client not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update client status")
	}

	_ = s.audit.Emit(ctx, audit.Event{
		Action:      audit.ActionStatusChanged,
		SubjectKind: string(linkmodels.SubjectClient),
		SubjectID:   id.String(),
		Detail:      string(status),
	})

	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
	}
	return client, nil
}

// IssuePaymentLink mints a 30-day payment link for the client, superseding
// any prior active one. Returns the link and its public URL.
func (s *Service) IssuePaymentLink(ctx context.Context, clientID uuid.UUID) (*linkmodels.Link, string, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", dErrors.New(dErrors.CodeNotFound, "client not found")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue link")
	}

	link, err := s.links.Issue(ctx, linkmodels.SubjectRef{Kind: linkmodels.SubjectClient, ID: clientID})
	if err != nil {
		return nil, "", err
	}
	return link, s.links.PublicURL(link), nil
}

// TogglePaymentLink flips the client's current link on or off.
func (s *Service) TogglePaymentLink(ctx context.Context, clientID uuid.UUID, active bool) (*linkmodels.Link, error) {
	return s.links.SetActive(ctx, linkmodels.SubjectRef{Kind: linkmodels.SubjectClient, ID: clientID}, active)
}

// Resolution is what a link holder sees behind the gate: the engagement
// summary plus, once completed, the recorded registration.
type Resolution struct {
	Link    *linkmodels.Link
	Client  *models.Client
	Payment *models.PaymentRegistration
}

// ResolveByToken answers the public GET behind the payment link. Completed
// links resolve forever; absent, inactive, and expired ones all refuse with
// the same undifferentiated answer.
func (s *Service) ResolveByToken(ctx context.Context, token string) (*Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "client.ResolveByToken")
	defer span.End()

	link, err := s.links.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.Subject.Kind != linkmodels.SubjectClient {
		return nil, dErrors.New(dErrors.CodeLinkInvalid, "invalid or expired link")
	}

	client, err := s.clients.GetByID(ctx, link.Subject.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve link")
	}

	res := &Resolution{Link: link, Client: client}
	if link.Completed {
		payment, err := s.payments.GetByClient(ctx, client.ID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve link")
		}
		res.Payment = payment
	}
	return res, nil
}

// RegisterPayment is the completion transition: it claims the link, records
// the registration, and advances the client status, all in one atomic unit.
// Exactly one concurrent submission per link can succeed.
func (s *Service) RegisterPayment(ctx context.Context, token string, in models.NewPaymentInput) (*models.PaymentRegistration, error) {
	ctx, span := s.tracer.Start(ctx, "client.RegisterPayment")
	defer span.End()

	link, err := s.links.ResolveUsable(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.Subject.Kind != linkmodels.SubjectClient {
		return nil, dErrors.New(dErrors.CodeLinkInvalid, "invalid or expired link")
	}

	now := requestcontext.Now(ctx)
	reference, err := refcode.Payment(now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register payment")
	}

	payment, err := models.NewPaymentRegistration(link.Subject.ID, in, reference, requestcontext.Device(ctx), now)
	if err != nil {
		return nil, err
	}

	// Claim first: it is the guarded conditional that decides the race, so
	// the writes after it cannot collide.
	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.links.Claim(txCtx, token, payment.ID); err != nil {
			return err
		}
		if err := s.payments.Create(txCtx, payment); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment")
		}
		if err := s.clients.UpdateStatus(txCtx, payment.ClientID, models.StatusPaymentCompleted, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveRegistered()
	_ = s.audit.Emit(ctx, audit.Event{
		Action:      audit.ActionPaymentRegistered,
		SubjectKind: string(linkmodels.SubjectClient),
		SubjectID:   payment.ClientID.String(),
		OutcomeRef:  payment.ID.String(),
		Detail:      payment.Reference,
	})
	s.logger.InfoContext(ctx, "payment registered",
		"client_id", payment.ClientID,
		"reference", payment.Reference,
	)
	return payment, nil
}

// ListPayments returns a page of registrations for the admin surface.
func (s *Service) ListPayments(ctx context.Context, params store.ListParams) ([]*models.PaymentRegistration, int, error) {
	payments, total, err := s.payments.List(ctx, params)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list payments")
	}
	return payments, total, nil
}

// UpdatePaymentStatus moves a registration through operator review.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (*models.PaymentRegistration, error) {
	if !status.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown payment status %q", status)
	}

	err := s.payments.UpdateStatus(ctx, id, status, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "payment not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update payment status")
	}

	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load payment")
	}

	s.metrics.ObserveReviewed(string(status))
	return payment, nil
}
