// Package handler exposes the onboarding workflow over HTTP: the admin CRUD
// surface, the public token-gated upload, and the artifact download.
package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"zorvixe/internal/candidate/models"
	"zorvixe/internal/candidate/service"
	"zorvixe/internal/candidate/store"
	dErrors "zorvixe/pkg/domain-errors"
	"zorvixe/pkg/platform/httputil"
)

// multipartMemory caps how much of the parsed form is held in memory; larger
// parts spill to disk.
const multipartMemory = 4 << 20

// Handler wires candidate endpoints to the candidate service.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

// New constructs a candidate handler.
func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// RegisterPublic mounts the token-gated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/onboarding/{token}", h.HandleResolve)
	r.Post("/onboarding/{token}/document", h.HandleUpload)
}

// RegisterAdmin mounts the operator endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/candidates", h.HandleCreateCandidate)
	r.Get("/candidates", h.HandleListCandidates)
	r.Get("/candidates/{id}", h.HandleGetCandidate)
	r.Put("/candidates/{id}/status", h.HandleUpdateStatus)
	r.Post("/candidates/{id}/onboarding-link", h.HandleIssueLink)
	r.Put("/candidates/{id}/onboarding-link/active", h.HandleToggleLink)
	r.Get("/candidates/{id}/document", h.HandleDownload)
}

func (h *Handler) HandleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateCandidateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	candidate, err := h.service.CreateCandidate(ctx, req.Input())
	if err != nil {
		h.logger.ErrorContext(ctx, "candidate creation failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, candidate)
}

func (h *Handler) HandleListCandidates(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	candidates, total, err := h.service.ListCandidates(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{
		Items:   candidates,
		Total:   total,
		Page:    params.Normalize().Page,
		PerPage: params.Normalize().PerPage,
	})
}

func (h *Handler) HandleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	candidate, upload, err := h.service.GetCandidate(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, candidateDetail{Candidate: candidate, Upload: upload})
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req UpdateStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	candidate, err := h.service.UpdateCandidateStatus(r.Context(), id, models.CandidateStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, candidate)
}

func (h *Handler) HandleIssueLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	link, url, err := h.service.IssueOnboardingLink(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "onboarding link issuance failed", "candidate_id", id, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, linkResponse{
		Token:     link.Token,
		URL:       url,
		Active:    link.Active,
		ExpiresAt: link.ExpiresAt,
	})
}

func (h *Handler) HandleToggleLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req ToggleLinkRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	link, err := h.service.ToggleOnboardingLink(r.Context(), id, req.Active)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, linkResponse{
		Token:     link.Token,
		Active:    link.Active,
		ExpiresAt: link.ExpiresAt,
	})
}

func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	res, err := h.service.ResolveByToken(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resolutionResponse{
		Candidate: candidateSummary(res.Candidate),
		Completed: res.Link.Completed,
		ExpiresAt: res.Link.ExpiresAt,
		Upload:    res.Upload,
	})
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")

	// The +1 leaves room to distinguish at-limit from over-limit.
	r.Body = http.MaxBytesReader(w, r.Body, models.MaxUploadBytes+1)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "document exceeds the 50 MiB limit"))
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart field \"document\" is required"))
		return
	}
	defer file.Close()

	record, err := h.service.UploadDocument(ctx, token, service.UploadInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "document uploaded",
		"candidate_id", record.CandidateID,
		"size_bytes", record.SizeBytes,
	)
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	artifact, err := h.service.DownloadArtifact(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer artifact.Object.Body.Close()

	w.Header().Set("Content-Type", artifact.Record.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(artifact.Object.Size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Record.FileName))
	if _, err := io.Copy(w, artifact.Object.Body); err != nil {
		h.logger.ErrorContext(ctx, "artifact stream interrupted", "candidate_id", id, "error", err)
	}
}

type listResponse struct {
	Items   any `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

type candidateDetail struct {
	*models.Candidate
	Upload *models.UploadRecord `json:"upload,omitempty"`
}

type linkResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url,omitempty"`
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"`
}

// summary is the subset of candidate fields a link holder may see.
type summary struct {
	Name          string `json:"name"`
	Position      string `json:"position"`
	CandidateCode string `json:"candidate_code"`
}

type resolutionResponse struct {
	Candidate summary              `json:"candidate"`
	Completed bool                 `json:"completed"`
	ExpiresAt time.Time            `json:"expires_at"`
	Upload    *models.UploadRecord `json:"upload,omitempty"`
}

func candidateSummary(c *models.Candidate) summary {
	return summary{
		Name:          c.Name,
		Position:      c.Position,
		CandidateCode: c.CandidateCode,
	}
}

func listParams(r *http.Request) store.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	return store.ListParams{
		Page:    page,
		PerPage: perPage,
		Search:  q.Get("search"),
	}
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid id")
	}
	return id, nil
}
