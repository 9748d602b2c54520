package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"zorvixe/internal/client/models"
	"zorvixe/pkg/platform/sentinel"
	"zorvixe/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresClients implements Clients on PostgreSQL.
type PostgresClients struct {
	db *sql.DB
}

// NewPostgresClients constructs a client store over the given handle.
func NewPostgresClients(db *sql.DB) *PostgresClients {
	return &PostgresClients{db: db}
}

const clientColumns = `id, name, email, phone, company, project_name, project_description,
	amount_due, client_code, project_code, status, created_at, updated_at`

func (s *PostgresClients) Create(ctx context.Context, client *models.Client) error {
	q := tx.Querier(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		client.ID, client.Name, client.Email, client.Phone, client.Company,
		client.ProjectName, client.ProjectDescription, client.AmountDue,
		client.ClientCode, client.ProjectCode, client.Status,
		client.CreatedAt, client.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("client code collision: %w", sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (s *PostgresClients) GetByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	q := tx.Querier(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	return scanClient(row)
}

func (s *PostgresClients) List(ctx context.Context, params ListParams) ([]*models.Client, int, error) {
	params = params.Normalize()
	q := tx.Querier(ctx, s.db)

	search := "%" + params.Search + "%"
	var total int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM clients
		WHERE $1 = '%%' OR name ILIKE $1 OR email ILIKE $1 OR company ILIKE $1`,
		search).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE $1 = '%%' OR name ILIKE $1 OR email ILIKE $1 OR company ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		search, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, client)
	}
	return clients, total, rows.Err()
}

func (s *PostgresClients) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ClientStatus, now time.Time) error {
	q := tx.Querier(ctx, s.db)
	res, err := q.ExecContext(ctx,
		`UPDATE clients SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, now)
	if err != nil {
		return fmt.Errorf("update client status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("client %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	var c models.Client
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company,
		&c.ProjectName, &c.ProjectDescription, &c.AmountDue,
		&c.ClientCode, &c.ProjectCode, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan client: %w", err)
	}
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// PostgresPayments implements Payments on PostgreSQL.
type PostgresPayments struct {
	db *sql.DB
}

// NewPostgresPayments constructs a payment store over the given handle.
func NewPostgresPayments(db *sql.DB) *PostgresPayments {
	return &PostgresPayments{db: db}
}

const paymentColumns = `id, client_id, reference, amount, payment_method, transaction_id,
	payer_name, notes, submitted_device, status, created_at, updated_at`

func (s *PostgresPayments) Create(ctx context.Context, payment *models.PaymentRegistration) error {
	q := tx.Querier(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO payment_registrations (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		payment.ID, payment.ClientID, payment.Reference, payment.Amount,
		payment.PaymentMethod, payment.TransactionID, payment.PayerName,
		payment.Notes, payment.SubmittedDevice, payment.Status,
		payment.CreatedAt, payment.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("client %s already has a registration: %w", payment.ClientID, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert payment registration: %w", err)
	}
	return nil
}

func (s *PostgresPayments) GetByID(ctx context.Context, id uuid.UUID) (*models.PaymentRegistration, error) {
	q := tx.Querier(ctx, s.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payment_registrations WHERE id = $1`, id)
	return scanPayment(row)
}

func (s *PostgresPayments) GetByClient(ctx context.Context, clientID uuid.UUID) (*models.PaymentRegistration, error) {
	q := tx.Querier(ctx, s.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payment_registrations WHERE client_id = $1`, clientID)
	return scanPayment(row)
}

func (s *PostgresPayments) List(ctx context.Context, params ListParams) ([]*models.PaymentRegistration, int, error) {
	params = params.Normalize()
	q := tx.Querier(ctx, s.db)

	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM payment_registrations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payment registrations: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+paymentColumns+` FROM payment_registrations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list payment registrations: %w", err)
	}
	defer rows.Close()

	var payments []*models.PaymentRegistration
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, payment)
	}
	return payments, total, rows.Err()
}

func (s *PostgresPayments) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, now time.Time) error {
	q := tx.Querier(ctx, s.db)
	res, err := q.ExecContext(ctx,
		`UPDATE payment_registrations SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, now)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("payment %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

func scanPayment(row rowScanner) (*models.PaymentRegistration, error) {
	var p models.PaymentRegistration
	err := row.Scan(
		&p.ID, &p.ClientID, &p.Reference, &p.Amount,
		&p.PaymentMethod, &p.TransactionID, &p.PayerName,
		&p.Notes, &p.SubmittedDevice, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return &p, nil
}
