// Package service implements the link lifecycle: issuance, the access gate,
// operator toggling, and completion claims on behalf of the workflow modules.
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"zorvixe/internal/audit"
	"zorvixe/internal/link/metrics"
	"zorvixe/internal/link/models"
	"zorvixe/internal/link/store"
	dErrors "zorvixe/pkg/domain-errors"
	"zorvixe/pkg/platform/sentinel"
	"zorvixe/pkg/platform/tx"
	"zorvixe/pkg/requestcontext"
)

const tokenBytes = 32

// SweepInterval is how often the background sweeper deactivates expired links.
const SweepInterval = 10 * time.Minute

// Service issues and gates access links. Workflow services embed it for the
// claim step of their completion transactions.
type Service struct {
	store   store.Store
	runner  tx.Runner
	baseURL string

	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
	tracer  trace.Tracer
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches link lifecycle collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit attaches the audit publisher.
func WithAudit(p *audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// New constructs the link service. baseURL is the public origin links are
// rendered under, e.g. "https://zorvixe.com".
func New(st store.Store, runner tx.Runner, baseURL string, opts ...Option) *Service {
	s := &Service{
		store:   st,
		runner:  runner,
		baseURL: baseURL,
		logger:  slog.Default(),
		tracer:  otel.Tracer("zorvixe/link"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateToken returns an unguessable URL-safe token.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Issue mints a fresh link for the subject, superseding any prior active one.
func (s *Service) Issue(ctx context.Context, subject models.SubjectRef) (*models.Link, error) {
	ctx, span := s.tracer.Start(ctx, "link.Issue",
		trace.WithAttributes(attribute.String("subject.kind", string(subject.Kind))))
	defer span.End()

	token, err := GenerateToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue link")
	}

	link, err := models.NewLink(subject, token, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		return s.store.Issue(txCtx, link)
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue link")
	}

	s.metrics.ObserveIssued(string(subject.Kind))
	_ = s.audit.Emit(ctx, audit.Event{
		Action:      audit.ActionLinkIssued,
		SubjectKind: string(subject.Kind),
		SubjectID:   subject.ID.String(),
	})
	s.logger.InfoContext(ctx, "link issued",
		"subject_kind", subject.Kind,
		"subject_id", subject.ID,
		"expires_at", link.ExpiresAt,
	)
	return link, nil
}

// Resolve is the read side of the gate: it admits holders of usable links and,
// so a returning holder sees their submitted state instead of a dead page,
// holders of completed ones. Absent, deactivated, and expired tokens all
// resolve to the same undifferentiated refusal.
func (s *Service) Resolve(ctx context.Context, token string) (*models.Link, error) {
	ctx, span := s.tracer.Start(ctx, "link.Resolve")
	defer span.End()

	link, err := s.store.FindByToken(ctx, token)
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.ObserveResolved("unknown", "invalid")
		return nil, dErrors.New(dErrors.CodeLinkInvalid, "invalid or expired link")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve link")
	}

	kind := string(link.Subject.Kind)
	if !link.Resolvable(requestcontext.Now(ctx)) {
		s.metrics.ObserveResolved(kind, "invalid")
		return nil, dErrors.New(dErrors.CodeLinkInvalid, "invalid or expired link")
	}

	if link.Completed {
		s.metrics.ObserveResolved(kind, "completed")
	} else {
		s.metrics.ObserveResolved(kind, "ok")
	}
	return link, nil
}

// ResolveUsable is the write-side gate: unlike Resolve it refuses completed
// links, reporting the completion instead.
func (s *Service) ResolveUsable(ctx context.Context, token string) (*models.Link, error) {
	link, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.Completed {
		return nil, dErrors.New(dErrors.CodeAlreadyCompleted, "submission already recorded")
	}
	return link, nil
}

// SetActive flips the subject's current link on or off. Unlike the public
// gate, the operator surface distinguishes a missing link from a toggled one.
func (s *Service) SetActive(ctx context.Context, subject models.SubjectRef, active bool) (*models.Link, error) {
	ctx, span := s.tracer.Start(ctx, "link.SetActive",
		trace.WithAttributes(attribute.Bool("link.active", active)))
	defer span.End()

	link, err := s.store.SetActive(ctx, subject, active, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no current link for subject")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to toggle link")
	}

	_ = s.audit.Emit(ctx, audit.Event{
		Action:      audit.ActionLinkToggled,
		SubjectKind: string(subject.Kind),
		SubjectID:   subject.ID.String(),
		Detail:      fmt.Sprintf("active=%t", active),
	})
	return link, nil
}

// Current returns the subject's newest live link, if any.
func (s *Service) Current(ctx context.Context, subject models.SubjectRef) (*models.Link, error) {
	link, err := s.store.FindCurrentBySubject(ctx, subject, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no current link for subject")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load link")
	}
	return link, nil
}

// Claim consumes the link for a completed submission. Callers invoke it inside
// their completion transaction so the claim and the outcome land atomically.
func (s *Service) Claim(ctx context.Context, token string, outcomeRef uuid.UUID) (*models.Link, error) {
	link, err := s.store.Claim(ctx, token, outcomeRef, requestcontext.Now(ctx))
	switch {
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return nil, dErrors.New(dErrors.CodeAlreadyCompleted, "submission already recorded")
	case errors.Is(err, sentinel.ErrNotFound), errors.Is(err, sentinel.ErrExpired):
		return nil, dErrors.New(dErrors.CodeLinkInvalid, "invalid or expired link")
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record completion")
	}

	s.metrics.ObserveCompleted(string(link.Subject.Kind))
	return link, nil
}

// PublicURL renders the external URL a link is delivered as.
func (s *Service) PublicURL(link *models.Link) string {
	return fmt.Sprintf("%s/%s/%s", s.baseURL, link.Subject.Kind.PublicPath(), url.PathEscape(link.Token))
}

// SweepExpired deactivates links whose deadline passed. The gate re-checks the
// deadline on every request, so this is hygiene for listings and storage, not
// a correctness requirement.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.store.DeactivateExpired(ctx, requestcontext.Now(ctx))
	if err != nil {
		return 0, fmt.Errorf("sweep expired links: %w", err)
	}
	s.metrics.ObserveSwept(n)
	if n > 0 {
		s.logger.InfoContext(ctx, "deactivated expired links", "count", n)
	}
	return n, nil
}

// RunSweeper loops SweepExpired on a ticker until the context is cancelled.
// Intended to run under an errgroup alongside the HTTP server.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = SweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.SweepExpired(ctx); err != nil {
				s.logger.ErrorContext(ctx, "link sweep failed", "error", err)
			}
		}
	}
}
