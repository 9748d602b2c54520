package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"zorvixe/internal/candidate/models"
	"zorvixe/pkg/platform/sentinel"
	"zorvixe/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresCandidates implements Candidates on PostgreSQL.
type PostgresCandidates struct {
	db *sql.DB
}

// NewPostgresCandidates constructs a candidate store over the given handle.
func NewPostgresCandidates(db *sql.DB) *PostgresCandidates {
	return &PostgresCandidates{db: db}
}

const candidateColumns = `id, name, email, phone, position, candidate_code, status, created_at, updated_at`

func (s *PostgresCandidates) Create(ctx context.Context, candidate *models.Candidate) error {
	q := tx.Querier(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO candidates (`+candidateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		candidate.ID, candidate.Name, candidate.Email, candidate.Phone,
		candidate.Position, candidate.CandidateCode, candidate.Status,
		candidate.CreatedAt, candidate.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("candidate code collision: %w", sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

func (s *PostgresCandidates) GetByID(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	q := tx.Querier(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	return scanCandidate(row)
}

func (s *PostgresCandidates) List(ctx context.Context, params ListParams) ([]*models.Candidate, int, error) {
	params = params.Normalize()
	q := tx.Querier(ctx, s.db)

	search := "%" + params.Search + "%"
	var total int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM candidates
		WHERE $1 = '%%' OR name ILIKE $1 OR email ILIKE $1 OR position ILIKE $1`,
		search).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+candidateColumns+` FROM candidates
		WHERE $1 = '%%' OR name ILIKE $1 OR email ILIKE $1 OR position ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		search, params.PerPage, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, total, rows.Err()
}

func (s *PostgresCandidates) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CandidateStatus, now time.Time) error {
	q := tx.Querier(ctx, s.db)
	res, err := q.ExecContext(ctx,
		`UPDATE candidates SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, now)
	if err != nil {
		return fmt.Errorf("update candidate status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update candidate status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("candidate %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Position,
		&c.CandidateCode, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("candidate: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan candidate: %w", err)
	}
	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// PostgresUploads implements Uploads on PostgreSQL.
type PostgresUploads struct {
	db *sql.DB
}

// NewPostgresUploads constructs an upload store over the given handle.
func NewPostgresUploads(db *sql.DB) *PostgresUploads {
	return &PostgresUploads{db: db}
}

const uploadColumns = `id, candidate_id, object_key, file_name, size_bytes, content_type, submitted_device, uploaded_at`

func (s *PostgresUploads) Create(ctx context.Context, record *models.UploadRecord) error {
	q := tx.Querier(ctx, s.db)
	_, err := q.ExecContext(ctx, `
		INSERT INTO upload_records (`+uploadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, record.CandidateID, record.ObjectKey, record.FileName,
		record.SizeBytes, record.ContentType, record.SubmittedDevice,
		record.UploadedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("candidate %s already has an upload: %w", record.CandidateID, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert upload record: %w", err)
	}
	return nil
}

func (s *PostgresUploads) GetByCandidate(ctx context.Context, candidateID uuid.UUID) (*models.UploadRecord, error) {
	q := tx.Querier(ctx, s.db)
	row := q.QueryRowContext(ctx,
		`SELECT `+uploadColumns+` FROM upload_records WHERE candidate_id = $1`, candidateID)

	var u models.UploadRecord
	err := row.Scan(
		&u.ID, &u.CandidateID, &u.ObjectKey, &u.FileName,
		&u.SizeBytes, &u.ContentType, &u.SubmittedDevice, &u.UploadedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("upload for candidate %s: %w", candidateID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan upload record: %w", err)
	}
	return &u, nil
}
