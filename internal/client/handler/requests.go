package handler

import (
	"github.com/asaskevich/govalidator"

	"zorvixe/internal/client/models"
	dErrors "zorvixe/pkg/domain-errors"
)

// CreateClientRequest is the admin payload for client creation.
type CreateClientRequest struct {
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Phone              string  `json:"phone"`
	Company            string  `json:"company"`
	ProjectName        string  `json:"project_name"`
	ProjectDescription string  `json:"project_description"`
	AmountDue          float64 `json:"amount_due"`
}

// Validate checks field shapes before any mutation happens.
func (r CreateClientRequest) Validate() error {
	if !govalidator.StringLength(r.Name, "1", "200") {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required (max 200 characters)")
	}
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	if r.Phone != "" && !govalidator.StringLength(r.Phone, "7", "20") {
		return dErrors.New(dErrors.CodeInvalidInput, "phone must be 7-20 characters")
	}
	if !govalidator.StringLength(r.ProjectName, "1", "200") {
		return dErrors.New(dErrors.CodeInvalidInput, "project_name is required (max 200 characters)")
	}
	if r.AmountDue < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount_due cannot be negative")
	}
	return nil
}

// Input converts the request into the service input.
func (r CreateClientRequest) Input() models.NewClientInput {
	return models.NewClientInput{
		Name:               r.Name,
		Email:              r.Email,
		Phone:              r.Phone,
		Company:            r.Company,
		ProjectName:        r.ProjectName,
		ProjectDescription: r.ProjectDescription,
		AmountDue:          r.AmountDue,
	}
}

// UpdateStatusRequest carries an operator status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ToggleLinkRequest flips the subject's current link.
type ToggleLinkRequest struct {
	Active bool `json:"active"`
}

// RegisterPaymentRequest is the public payload behind the payment link.
type RegisterPaymentRequest struct {
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	TransactionID string  `json:"transaction_id"`
	PayerName     string  `json:"payer_name"`
	Notes         string  `json:"notes"`
}

func (r RegisterPaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "amount must be positive")
	}
	if !govalidator.StringLength(r.PaymentMethod, "1", "50") {
		return dErrors.New(dErrors.CodeInvalidInput, "payment_method is required (max 50 characters)")
	}
	if r.TransactionID != "" && !govalidator.StringLength(r.TransactionID, "1", "100") {
		return dErrors.New(dErrors.CodeInvalidInput, "transaction_id too long (max 100 characters)")
	}
	if r.PayerName != "" && !govalidator.StringLength(r.PayerName, "1", "200") {
		return dErrors.New(dErrors.CodeInvalidInput, "payer_name too long (max 200 characters)")
	}
	if r.Notes != "" && !govalidator.StringLength(r.Notes, "1", "1000") {
		return dErrors.New(dErrors.CodeInvalidInput, "notes too long (max 1000 characters)")
	}
	return nil
}

// Input converts the request into the service input.
func (r RegisterPaymentRequest) Input() models.NewPaymentInput {
	return models.NewPaymentInput{
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		TransactionID: r.TransactionID,
		PayerName:     r.PayerName,
		Notes:         r.Notes,
	}
}
