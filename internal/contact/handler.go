package contact

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	dErrors "zorvixe/pkg/domain-errors"
	"zorvixe/pkg/platform/httputil"
)

// Handler exposes contact endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a contact handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// RegisterPublic mounts the public submission endpoint.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/contact", h.HandleSubmit)
}

// RegisterAdmin mounts the operator listing.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/contacts", h.HandleList)
}

// SubmitRequest is the public contact-form payload.
type SubmitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (r SubmitRequest) Validate() error {
	if !govalidator.StringLength(r.Name, "1", "200") {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required (max 200 characters)")
	}
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	if !govalidator.StringLength(r.Message, "1", "5000") {
		return dErrors.New(dErrors.CodeInvalidInput, "message is required (max 5000 characters)")
	}
	return nil
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubmitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	msg, err := h.service.Submit(ctx, Message{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "contact submission failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	params := ListParams{Page: page, PerPage: perPage}

	messages, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"items":    messages,
		"total":    total,
		"page":     params.Normalize().Page,
		"per_page": params.Normalize().PerPage,
	})
}
