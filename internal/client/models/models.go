// Package models defines the client workflow's domain types: the Client
// subject and the PaymentRegistration outcome its access link gates.
package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "zorvixe/pkg/domain-errors"
)

// ClientStatus is the denormalized workflow state on the subject.
type ClientStatus string

const (
	// StatusPending: created, payment not yet registered.
	StatusPending ClientStatus = "pending"
	// StatusPaymentCompleted: set by the completion transaction, never by hand.
	StatusPaymentCompleted ClientStatus = "payment_completed"
	// StatusInactive: operator shelved the engagement.
	StatusInactive ClientStatus = "inactive"
)

// AdminSettable reports whether an operator may set this status directly.
// payment_completed is reserved for the completion transaction.
func (s ClientStatus) AdminSettable() bool {
	return s == StatusPending || s == StatusInactive
}

func (s ClientStatus) IsValid() bool {
	return s == StatusPending || s == StatusPaymentCompleted || s == StatusInactive
}

// Client is the subject of the payment-registration workflow. Created by
// operators, never deleted.
type Client struct {
	ID                 uuid.UUID    `json:"id"`
	Name               string       `json:"name"`
	Email              string       `json:"email"`
	Phone              string       `json:"phone"`
	Company            string       `json:"company,omitempty"`
	ProjectName        string       `json:"project_name"`
	ProjectDescription string       `json:"project_description,omitempty"`
	AmountDue          float64      `json:"amount_due"`
	ClientCode         string       `json:"client_code"`
	ProjectCode        string       `json:"project_code"`
	Status             ClientStatus `json:"status"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// PaymentStatus tracks operator review of a registration. The registration's
// payment fields are immutable; only this status moves.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentPending || s == PaymentVerified || s == PaymentRejected
}

// PaymentRegistration is the recorded outcome of a completed payment link.
// Amounts and transaction details are recorded as submitted, never verified
// against a payment processor.
type PaymentRegistration struct {
	ID              uuid.UUID     `json:"id"`
	ClientID        uuid.UUID     `json:"client_id"`
	Reference       string        `json:"reference"`
	Amount          float64       `json:"amount"`
	PaymentMethod   string        `json:"payment_method"`
	TransactionID   string        `json:"transaction_id,omitempty"`
	PayerName       string        `json:"payer_name,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	SubmittedDevice string        `json:"submitted_device,omitempty"`
	Status          PaymentStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// NewClientInput carries the validated fields for client creation.
type NewClientInput struct {
	Name               string
	Email              string
	Phone              string
	Company            string
	ProjectName        string
	ProjectDescription string
	AmountDue          float64
}

// NewClient constructs a pending client with freshly generated codes.
func NewClient(in NewClientInput, clientCode, projectCode string, now time.Time) (*Client, error) {
	if in.Name == "" || in.Email == "" || in.ProjectName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client requires name, email and project name")
	}
	return &Client{
		ID:                 uuid.New(),
		Name:               in.Name,
		Email:              in.Email,
		Phone:              in.Phone,
		Company:            in.Company,
		ProjectName:        in.ProjectName,
		ProjectDescription: in.ProjectDescription,
		AmountDue:          in.AmountDue,
		ClientCode:         clientCode,
		ProjectCode:        projectCode,
		Status:             StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// NewPaymentInput carries the validated fields for a payment registration.
type NewPaymentInput struct {
	Amount        float64
	PaymentMethod string
	TransactionID string
	PayerName     string
	Notes         string
}

// NewPaymentRegistration constructs a pending registration for the client.
func NewPaymentRegistration(clientID uuid.UUID, in NewPaymentInput, reference, device string, now time.Time) (*PaymentRegistration, error) {
	if clientID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client id is required")
	}
	if in.Amount <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "amount must be positive")
	}
	return &PaymentRegistration{
		ID:              uuid.New(),
		ClientID:        clientID,
		Reference:       reference,
		Amount:          in.Amount,
		PaymentMethod:   in.PaymentMethod,
		TransactionID:   in.TransactionID,
		PayerName:       in.PayerName,
		Notes:           in.Notes,
		SubmittedDevice: device,
		Status:          PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
