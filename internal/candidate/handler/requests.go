package handler

import (
	"github.com/asaskevich/govalidator"

	"zorvixe/internal/candidate/models"
	dErrors "zorvixe/pkg/domain-errors"
)

// CreateCandidateRequest is the admin payload for candidate creation.
type CreateCandidateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
}

// Validate checks field shapes before any mutation happens.
func (r CreateCandidateRequest) Validate() error {
	if !govalidator.StringLength(r.Name, "1", "200") {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required (max 200 characters)")
	}
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	if r.Phone != "" && !govalidator.StringLength(r.Phone, "7", "20") {
		return dErrors.New(dErrors.CodeInvalidInput, "phone must be 7-20 characters")
	}
	if !govalidator.StringLength(r.Position, "1", "200") {
		return dErrors.New(dErrors.CodeInvalidInput, "position is required (max 200 characters)")
	}
	return nil
}

// Input converts the request into the service input.
func (r CreateCandidateRequest) Input() models.NewCandidateInput {
	return models.NewCandidateInput{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Position: r.Position,
	}
}

// UpdateStatusRequest carries an operator review decision.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ToggleLinkRequest flips the subject's current link.
type ToggleLinkRequest struct {
	Active bool `json:"active"`
}
