package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"zorvixe/internal/client/models"
	"zorvixe/pkg/platform/sentinel"
)

// InMemoryClients is a map-backed Clients implementation.
type InMemoryClients struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*models.Client
}

// NewInMemoryClients constructs an empty in-memory client store.
func NewInMemoryClients() *InMemoryClients {
	return &InMemoryClients{clients: make(map[uuid.UUID]*models.Client)}
}

func (s *InMemoryClients) Create(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.clients {
		if existing.ClientCode == client.ClientCode || existing.ProjectCode == client.ProjectCode {
			return fmt.Errorf("client code collision: %w", sentinel.ErrConflict)
		}
	}
	cp := *client
	s.clients[client.ID] = &cp
	return nil
}

func (s *InMemoryClients) GetByID(_ context.Context, id uuid.UUID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *client
	return &cp, nil
}

func (s *InMemoryClients) List(_ context.Context, params ListParams) ([]*models.Client, int, error) {
	params = params.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Client
	needle := strings.ToLower(params.Search)
	for _, c := range s.clients {
		if needle != "" &&
			!strings.Contains(strings.ToLower(c.Name), needle) &&
			!strings.Contains(strings.ToLower(c.Email), needle) &&
			!strings.Contains(strings.ToLower(c.Company), needle) {
			continue
		}
		cp := *c
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := params.Offset()
	if start >= total {
		return nil, total, nil
	}
	end := start + params.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *InMemoryClients) UpdateStatus(_ context.Context, id uuid.UUID, status models.ClientStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, ok := s.clients[id]
	if !ok {
		return fmt.Errorf("client %s: %w", id, sentinel.ErrNotFound)
	}
	client.Status = status
	client.UpdatedAt = now
	return nil
}

// InMemoryPayments is a map-backed Payments implementation.
type InMemoryPayments struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*models.PaymentRegistration
}

// NewInMemoryPayments constructs an empty in-memory payment store.
func NewInMemoryPayments() *InMemoryPayments {
	return &InMemoryPayments{payments: make(map[uuid.UUID]*models.PaymentRegistration)}
}

func (s *InMemoryPayments) Create(_ context.Context, payment *models.PaymentRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.payments {
		if existing.ClientID == payment.ClientID {
			return fmt.Errorf("client %s already has a registration: %w", payment.ClientID, sentinel.ErrConflict)
		}
	}
	cp := *payment
	s.payments[payment.ID] = &cp
	return nil
}

func (s *InMemoryPayments) GetByID(_ context.Context, id uuid.UUID) (*models.PaymentRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payment, ok := s.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", id, sentinel.ErrNotFound)
	}
	cp := *payment
	return &cp, nil
}

func (s *InMemoryPayments) GetByClient(_ context.Context, clientID uuid.UUID) (*models.PaymentRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, payment := range s.payments {
		if payment.ClientID == clientID {
			cp := *payment
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("payment for client %s: %w", clientID, sentinel.ErrNotFound)
}

func (s *InMemoryPayments) List(_ context.Context, params ListParams) ([]*models.PaymentRegistration, int, error) {
	params = params.Normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*models.PaymentRegistration, 0, len(s.payments))
	for _, p := range s.payments {
		cp := *p
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := params.Offset()
	if start >= total {
		return nil, total, nil
	}
	end := start + params.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *InMemoryPayments) UpdateStatus(_ context.Context, id uuid.UUID, status models.PaymentStatus, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payment, ok := s.payments[id]
	if !ok {
		return fmt.Errorf("payment %s: %w", id, sentinel.ErrNotFound)
	}
	payment.Status = status
	payment.UpdatedAt = now
	return nil
}
