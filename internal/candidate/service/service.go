// Package service implements the document-onboarding workflow around the
// Candidate subject: admin CRUD, link issuance, and the gated upload.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"zorvixe/internal/audit"
	"zorvixe/internal/candidate/metrics"
	"zorvixe/internal/candidate/models"
	"zorvixe/internal/candidate/store"
	linkmodels "zorvixe/internal/link/models"
	linkservice "zorvixe/internal/link/service"
	"zorvixe/internal/objectstore"
	dErrors "zorvixe/pkg/domain-errors"
	"zorvixe/pkg/platform/sentinel"
	"zorvixe/pkg/platform/tx"
	"zorvixe/pkg/refcode"
	"zorvixe/pkg/requestcontext"
)

// Service orchestrates candidate and upload operations. The completion path
// (UploadDocument) stages bytes first, then runs claim plus writes inside one
// Runner unit; staged bytes are discarded on every non-commit exit.
type Service struct {
	candidates store.Candidates
	uploads    store.Uploads
	objects    objectstore.Store
	links      *linkservice.Service
	runner     tx.Runner

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

// WithMetrics attaches onboarding workflow collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the candidate service.
func New(candidates store.Candidates, uploads store.Uploads, objects objectstore.Store, links *linkservice.Service, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		candidates: candidates,
		uploads:    uploads,
		objects:    objects,
		links:      links,
		runner:     runner,
		logger:     slog.Default(),
		tracer:     otel.Tracer("zorvixe/candidate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCandidate registers a new candidate with a fresh code.
func (s *Service) CreateCandidate(ctx context.Context, in models.NewCandidateInput) (*models.Candidate, error) {
	ctx, span := s.tracer.Start(ctx, "candidate.Create")
	defer span.End()

	code, err := refcode.Candidate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create candidate")
	}

	candidate, err := models.NewCandidate(in, code, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.candidates.Create(ctx, candidate); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "candidate code collision, retry")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create candidate")
	}

	s.logger.InfoContext(ctx, "candidate created",
		"candidate_id", candidate.ID,
		"candidate_code", candidate.CandidateCode,
	)
	return candidate, nil
}

// ListCandidates returns a page of candidates and the total match count.
func (s *Service) ListCandidates(ctx context.Context, params store.ListParams) ([]*models.Candidate, int, error) {
	candidates, total, err := s.candidates.List(ctx, params)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
	}
	return candidates, total, nil
}

// GetCandidate loads one candidate with its upload record, if any.
func (s *Service) GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, *models.UploadRecord, error) {
	candidate, err := s.candidates.GetByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
	}
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}

	upload, err := s.uploads.GetByCandidate(ctx, id)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	return candidate, upload, nil
}

// UpdateCandidateStatus applies an operator review decision.
// documents_uploaded is reserved for the completion transaction.
func (s *Service) UpdateCandidateStatus(ctx context.Context, id uuid.UUID, status models.CandidateStatus) (*models.Candidate, error) {
	if !status.AdminSettable() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "status %q cannot be set directly", status)
	}

	err := s.candidates.UpdateStatus(ctx, id, status, requestcontext.Now(ctx))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update candidate status")
	}

	_ = s.audit.Emit(ctx, audit.Event{
		Action:      audit.ActionStatusChanged,
		SubjectKind: string(linkmodels.SubjectCandidate),
		SubjectID:   id.String(),
		Detail:      string(status),
	})

	candidate, err := s.candidates.GetByID(ctx, id)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
	}
	return candidate, nil
}

// IssueOnboardingLink mints a 5-hour onboarding link for the candidate,
// superseding any prior active one.
func (s *Service) IssueOnboardingLink(ctx context.Context, candidateID uuid.UUID) (*linkmodels.Link, string, error) {
	if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue link")
	}

	link, err := s.links.Issue(ctx, linkmodels.SubjectRef{Kind: linkmodels.SubjectCandidate, ID: candidateID})
	if err != nil {
		return nil, "", err
	}
	return link, s.links.PublicURL(link), nil
}

// ToggleOnboardingLink flips the candidate's current link on or off.
func (s *Service) ToggleOnboardingLink(ctx context.Context, candidateID uuid.UUID, active bool) (*linkmodels.Link, error) {
	return s.links.SetActive(ctx, linkmodels.SubjectRef{Kind: linkmodels.SubjectCandidate, ID: candidateID}, active)
}

// Resolution is what a link holder sees behind the gate.
type Resolution struct {
	Link      *linkmodels.Link
	Candidate *models.Candidate
	Upload    *models.UploadRecord
}

// ResolveByToken answers the public GET behind the onboarding link.
func (s *Service) ResolveByToken(ctx context.Context, token string) (*Resolution, error) {
	ctx, span := s.tracer.Start(ctx, "candidate.ResolveByToken")
	defer span.End()

	link, err := s.links.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.Subject.Kind != linkmodels.SubjectCandidate {
		return nil, dErrors.New(dErrors.CodeLinkInvalid, "invalid or expired link")
	}

	candidate, err := s.candidates.GetByID(ctx, link.Subject.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve link")
	}

	res := &Resolution{Link: link, Candidate: candidate}
	if link.Completed {
		upload, err := s.uploads.GetByCandidate(ctx, candidate.ID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve link")
		}
		res.Upload = upload
	}
	return res, nil
}

// UploadInput carries one validated document submission.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadDocument is the completion transition: it validates the document,
// stages the bytes in the object store, then claims the link, records the
// outcome, and advances the candidate status in one atomic unit. The staged
// object is deleted on every failure path so no orphan survives a refused
// submission. Exactly one concurrent upload per link can succeed.
func (s *Service) UploadDocument(ctx context.Context, token string, in UploadInput) (*models.UploadRecord, error) {
	ctx, span := s.tracer.Start(ctx, "candidate.UploadDocument")
	defer span.End()

	if in.ContentType != models.AcceptedContentType {
		s.metrics.ObserveRejected("unsupported_type")
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "only %s documents are accepted", models.AcceptedContentType)
	}
	if in.Size <= 0 || in.Size > models.MaxUploadBytes {
		s.metrics.ObserveRejected("too_large")
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document exceeds the 50 MiB limit")
	}

	link, err := s.links.ResolveUsable(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.Subject.Kind != linkmodels.SubjectCandidate {
		return nil, dErrors.New(dErrors.CodeLinkInvalid, "invalid or expired link")
	}

	now := requestcontext.Now(ctx)
	candidateID := link.Subject.ID
	key := fmt.Sprintf("onboarding/%d/%s/%s.pdf", now.Year(), candidateID, uuid.NewString())

	if err := s.objects.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}

	record, err := models.NewUploadRecord(candidateID, key, in.FileName, in.Size, in.ContentType, requestcontext.Device(ctx), now)
	if err != nil {
		_ = s.objects.Delete(ctx, key)
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if err := s.objects.Delete(ctx, key); err != nil {
				s.logger.ErrorContext(ctx, "failed to discard staged document", "object_key", key, "error", err)
			}
		}
	}()

	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.links.Claim(txCtx, token, record.ID); err != nil {
			return err
		}
		if err := s.uploads.Create(txCtx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record upload")
		}
		if err := s.candidates.UpdateStatus(txCtx, candidateID, models.StatusDocumentsUploaded, now); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record upload")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	committed = true

	s.metrics.ObserveUpload(record.SizeBytes)
	_ = s.audit.Emit(ctx, audit.Event{
		Action:      audit.ActionDocumentUploaded,
		SubjectKind: string(linkmodels.SubjectCandidate),
		SubjectID:   candidateID.String(),
		OutcomeRef:  record.ID.String(),
		Detail:      record.FileName,
	})
	s.logger.InfoContext(ctx, "document uploaded",
		"candidate_id", candidateID,
		"size_bytes", record.SizeBytes,
	)
	return record, nil
}

// Artifact is a downloadable uploaded document.
type Artifact struct {
	Record *models.UploadRecord
	Object *objectstore.Object
}

// DownloadArtifact streams the candidate's uploaded document for the admin
// surface. The caller owns closing Object.Body.
func (s *Service) DownloadArtifact(ctx context.Context, candidateID uuid.UUID) (*Artifact, error) {
	record, err := s.uploads.GetByCandidate(ctx, candidateID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "no document uploaded")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}

	object, err := s.objects.Get(ctx, record.ObjectKey)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "document missing from storage")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	return &Artifact{Record: record, Object: object}, nil
}
