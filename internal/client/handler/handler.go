// Package handler exposes the client workflow over HTTP: the admin CRUD
// surface and the public token-gated payment endpoints.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"zorvixe/internal/client/models"
	"zorvixe/internal/client/service"
	"zorvixe/internal/client/store"
	dErrors "zorvixe/pkg/domain-errors"
	"zorvixe/pkg/platform/httputil"
)

// Handler wires client endpoints to the client service.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

// New constructs a client handler.
func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// RegisterPublic mounts the token-gated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/payment/{token}", h.HandleResolve)
	r.Post("/payment/{token}", h.HandleRegisterPayment)
}

// RegisterAdmin mounts the operator endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/clients", h.HandleCreateClient)
	r.Get("/clients", h.HandleListClients)
	r.Get("/clients/{id}", h.HandleGetClient)
	r.Put("/clients/{id}/status", h.HandleUpdateClientStatus)
	r.Post("/clients/{id}/payment-link", h.HandleIssueLink)
	r.Put("/clients/{id}/payment-link/active", h.HandleToggleLink)
	r.Get("/payments", h.HandleListPayments)
	r.Put("/payments/{id}/status", h.HandleUpdatePaymentStatus)
}

func (h *Handler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateClientRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	client, err := h.service.CreateClient(ctx, req.Input())
	if err != nil {
		h.logger.ErrorContext(ctx, "client creation failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, client)
}

func (h *Handler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	clients, total, err := h.service.ListClients(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{
		Items:   asAny(clients),
		Total:   total,
		Page:    params.Normalize().Page,
		PerPage: params.Normalize().PerPage,
	})
}

func (h *Handler) HandleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	client, payment, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, clientDetail{Client: client, Payment: payment})
}

func (h *Handler) HandleUpdateClientStatus(w http.ResponseWriter, r *http.Request) {
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

	client, err := h.service.UpdateClientStatus(r.Context(), id, models.ClientStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, client)
}

func (h *Handler) HandleIssueLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	link, url, err := h.service.IssuePaymentLink(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "payment link issuance failed", "client_id", id, "error", err)
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

	link, err := h.service.TogglePaymentLink(r.Context(), id, req.Active)
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

func (h *Handler) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	payments, total, err := h.service.ListPayments(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{
		Items:   asAny(payments),
		Total:   total,
		Page:    params.Normalize().Page,
		PerPage: params.Normalize().PerPage,
	})
}

func (h *Handler) HandleUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
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

	payment, err := h.service.UpdatePaymentStatus(r.Context(), id, models.PaymentStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, payment)
}

func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	res, err := h.service.ResolveByToken(r.Context(), token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resolutionResponse{
		Client:    clientSummary(res.Client),
		Completed: res.Link.Completed,
		ExpiresAt: res.Link.ExpiresAt,
		Payment:   res.Payment,
	})
}

func (h *Handler) HandleRegisterPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := chi.URLParam(r, "token")

	var req RegisterPaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	payment, err := h.service.RegisterPayment(ctx, token, req.Input())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "payment registered",
		"client_id", payment.ClientID,
		"reference", payment.Reference,
	)
	httputil.WriteJSON(w, http.StatusCreated, payment)
}

type listResponse struct {
	Items   []any `json:"items"`
	Total   int   `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

type clientDetail struct {
	*models.Client
	Payment *models.PaymentRegistration `json:"payment,omitempty"`
}

type linkResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url,omitempty"`
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"`
}

// summary is the subset of client fields a link holder may see.
type summary struct {
	Name        string  `json:"name"`
	Company     string  `json:"company,omitempty"`
	ProjectName string  `json:"project_name"`
	ProjectCode string  `json:"project_code"`
	AmountDue   float64 `json:"amount_due"`
}

type resolutionResponse struct {
	Client    summary                      `json:"client"`
	Completed bool                         `json:"completed"`
	ExpiresAt time.Time                    `json:"expires_at"`
	Payment   *models.PaymentRegistration `json:"payment,omitempty"`
}

func clientSummary(c *models.Client) summary {
	return summary{
		Name:        c.Name,
		Company:     c.Company,
		ProjectName: c.ProjectName,
		ProjectCode: c.ProjectCode,
		AmountDue:   c.AmountDue,
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

func asAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
