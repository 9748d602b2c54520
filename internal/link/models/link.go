package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "zorvixe/pkg/domain-errors"
)

// SubjectKind identifies which workflow a link belongs to. The kind fixes the
// link's lifetime and the public path the token is embedded in.
type SubjectKind string

const (
	// SubjectClient gates the client payment-registration workflow.
	SubjectClient SubjectKind = "client"
	// SubjectCandidate gates the candidate document-onboarding workflow.
	SubjectCandidate SubjectKind = "candidate"
)

// Workflow-fixed link lifetimes.
const (
	PaymentLinkTTL    = 30 * 24 * time.Hour
	OnboardingLinkTTL = 5 * time.Hour
)

func (k SubjectKind) IsValid() bool {
	return k == SubjectClient || k == SubjectCandidate
}

// TTL returns the workflow-specific lifetime for links of this kind.
func (k SubjectKind) TTL() time.Duration {
	if k == SubjectCandidate {
		return OnboardingLinkTTL
	}
	return PaymentLinkTTL
}

// PublicPath returns the path segment the external URL embeds the token in.
func (k SubjectKind) PublicPath() string {
	if k == SubjectCandidate {
		return "onboarding"
	}
	return "payment"
}

// SubjectRef points at the one subject a link acts on behalf of.
type SubjectRef struct {
	Kind SubjectKind
	ID   uuid.UUID
}

// Link is a time-boxed, single-completion access grant for one subject.
//
// Invariants:
//   - Token is unguessable and unique
//   - ExpiresAt is fixed at creation (Kind.TTL()); it is never extended
//   - At most one link per subject has Active=true (enforced by the store)
//   - Completed transitions false→true at most once; completion clears Active
//   - OutcomeRef is set exactly when Completed is
//
// State machine: ISSUED(active, !completed) → deactivated/expired (gate fails)
// or → COMPLETED (absorbing: reads still resolve, writes fail AlreadyUsed).
type Link struct {
	ID         uuid.UUID  `json:"id"`
	Token      string     `json:"token"`
	Subject    SubjectRef `json:"-"`
	Active     bool       `json:"active"`
	Completed  bool       `json:"completed"`
	OutcomeRef *uuid.UUID `json:"outcome_ref,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// NewLink constructs an active, uncompleted link for the subject. The expiry
// is derived from the subject kind and immutable thereafter.
func NewLink(subject SubjectRef, token string, now time.Time) (*Link, error) {
	if !subject.Kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown subject kind")
	}
	if subject.ID == uuid.Nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subject id is required")
	}
	if token == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "token cannot be empty")
	}
	return &Link{
		ID:        uuid.New(),
		Token:     token,
		Subject:   subject,
		Active:    true,
		Completed: false,
		CreatedAt: now,
		ExpiresAt: now.Add(subject.Kind.TTL()),
	}, nil
}

// Usable is the single gate predicate shared by every entry point: a link
// admits its holder iff it is active and its deadline has not passed. The
// three failure causes (absent, deactivated, expired) are deliberately not
// distinguishable through this predicate.
func (l *Link) Usable(now time.Time) bool {
	return l.Active && now.Before(l.ExpiresAt)
}

// Resolvable reports whether a read through the gate succeeds. Completed
// links stay readable forever so holders see the already-submitted state
// instead of a dead link.
func (l *Link) Resolvable(now time.Time) bool {
	return l.Completed || l.Usable(now)
}

// Expired reports whether the deadline has passed, independent of Active.
func (l *Link) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
