// Package audit records key workflow actions for operational review. Events
// are emitted from services and fanned out to a sink: in-memory for tests and
// dev, Kafka for production.
package audit

import (
	"context"
	"time"

	"zorvixe/pkg/requestcontext"
)

// Action names the thing that happened.
type Action string

const (
	ActionLinkIssued        Action = "link_issued"
	ActionLinkToggled       Action = "link_toggled"
	ActionPaymentRegistered Action = "payment_registered"
	ActionDocumentUploaded  Action = "document_uploaded"
	ActionStatusChanged     Action = "status_changed"
	ActionContactReceived   Action = "contact_received"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	Action      Action    `json:"action"`
	SubjectKind string    `json:"subject_kind,omitempty"`
	SubjectID   string    `json:"subject_id,omitempty"`
	OutcomeRef  string    `json:"outcome_ref,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	ClientIP    string    `json:"client_ip,omitempty"`
	Detail      string    `json:"detail,omitempty"`
}

// enrich fills request-scoped fields the emitter did not set.
func (e Event) enrich(ctx context.Context) Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = requestcontext.Now(ctx)
	}
	if e.RequestID == "" {
		e.RequestID = requestcontext.RequestID(ctx)
	}
	if e.ClientIP == "" {
		e.ClientIP = requestcontext.ClientIP(ctx)
	}
	return e
}

// Sink receives finalized events.
type Sink interface {
	Write(ctx context.Context, event Event) error
}
