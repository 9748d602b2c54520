// Package models defines the onboarding workflow's domain types: the
// Candidate subject and the UploadRecord outcome its access link gates.
package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "zorvixe/pkg/domain-errors"
)

// Upload constraints, fixed by the workflow.
const (
	// MaxUploadBytes is the ceiling for a single document upload.
	MaxUploadBytes = 50 << 20
	// AcceptedContentType is the only document type the workflow accepts.
	AcceptedContentType = "application/pdf"
)

// CandidateStatus is the denormalized workflow state on the subject.
type CandidateStatus string

const (
	// StatusPending: created, no documents yet.
	StatusPending CandidateStatus = "pending"
	// StatusDocumentsUploaded: set by the completion transaction, never by hand.
	StatusDocumentsUploaded CandidateStatus = "documents_uploaded"
	// StatusApproved and StatusRejected are operator review decisions.
	StatusApproved CandidateStatus = "approved"
	StatusRejected CandidateStatus = "rejected"
)

// AdminSettable reports whether an operator may set this status directly.
func (s CandidateStatus) AdminSettable() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

func (s CandidateStatus) IsValid() bool {
	return s == StatusPending || s == StatusDocumentsUploaded || s == StatusApproved || s == StatusRejected
}

// Candidate is the subject of the document-onboarding workflow.
type Candidate struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Position      string          `json:"position"`
	CandidateCode string          `json:"candidate_code"`
	Status        CandidateStatus `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewCandidateInput carries the validated fields for candidate creation.
type NewCandidateInput struct {
	Name     string
	Email    string
	Phone    string
	Position string
}

// NewCandidate constructs a pending candidate with a fresh code.
func NewCandidate(in NewCandidateInput, code string, now time.Time) (*Candidate, error) {
	if in.Name == "" || in.Email == "" || in.Position == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "candidate requires name, email and position")
	}
	return &Candidate{
		ID:            uuid.New(),
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		Position:      in.Position,
		CandidateCode: code,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// UploadRecord is the immutable outcome of a completed onboarding link. The
// object bytes live in the object store under ObjectKey; the record outlives
// the link that produced it.
type UploadRecord struct {
	ID              uuid.UUID `json:"id"`
	CandidateID     uuid.UUID `json:"candidate_id"`
	ObjectKey       string    `json:"-"`
	FileName        string    `json:"file_name"`
	SizeBytes       int64     `json:"size_bytes"`
	ContentType     string    `json:"content_type"`
	SubmittedDevice string    `json:"submitted_device,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// NewUploadRecord constructs the outcome row for a staged object.
func NewUploadRecord(candidateID uuid.UUID, objectKey, fileName string, size int64, contentType, device string, now time.Time) (*UploadRecord, error) {
	if candidateID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "candidate id is required")
	}
	if objectKey == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "object key is required")
	}
	if size <= 0 || size > MaxUploadBytes {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "size outside accepted bounds")
	}
	return &UploadRecord{
		ID:              uuid.New(),
		CandidateID:     candidateID,
		ObjectKey:       objectKey,
		FileName:        fileName,
		SizeBytes:       size,
		ContentType:     contentType,
		SubmittedDevice: device,
		UploadedAt:      now,
	}, nil
}
