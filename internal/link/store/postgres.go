package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"zorvixe/internal/link/models"
	"zorvixe/pkg/platform/sentinel"
	"zorvixe/pkg/platform/tx"
)

// Postgres persists links in PostgreSQL. Queries run through tx.Querier so a
// context transaction (opened by the service's Runner) is honored.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed link store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const linkColumns = `id, token, subject_kind, subject_id, active, completed, outcome_ref, created_at, expires_at`

func (s *Postgres) Issue(ctx context.Context, link *models.Link) error {
	q := tx.Querier(ctx, s.db)

	_, err := q.ExecContext(ctx, `
		UPDATE links SET active = FALSE
		WHERE subject_kind = $1 AND subject_id = $2 AND active
	`, string(link.Subject.Kind), link.Subject.ID)
	if err != nil {
		return fmt.Errorf("deactivate prior links: %w", err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO links (id, token, subject_kind, subject_id, active, completed, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, link.ID, link.Token, string(link.Subject.Kind), link.Subject.ID,
		link.Active, link.Completed, link.CreatedAt, link.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}
	return nil
}

func (s *Postgres) FindByToken(ctx context.Context, token string) (*models.Link, error) {
	q := tx.Querier(ctx, s.db)
	row := q.QueryRowContext(ctx, `SELECT `+linkColumns+` FROM links WHERE token = $1`, token)
	return scanLink(row)
}

func (s *Postgres) FindCurrentBySubject(ctx context.Context, subject models.SubjectRef, now time.Time) (*models.Link, error) {
	q := tx.Querier(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		SELECT `+linkColumns+` FROM links
		WHERE subject_kind = $1 AND subject_id = $2
		  AND NOT completed AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`, string(subject.Kind), subject.ID, now)
	return scanLink(row)
}

func (s *Postgres) SetActive(ctx context.Context, subject models.SubjectRef, active bool, now time.Time) (*models.Link, error) {
	q := tx.Querier(ctx, s.db)
	row := q.QueryRowContext(ctx, `
		UPDATE links SET active = $4
		WHERE id = (
			SELECT id FROM links
			WHERE subject_kind = $1 AND subject_id = $2
			  AND NOT completed AND expires_at > $3
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING `+linkColumns,
		string(subject.Kind), subject.ID, now, active)
	return scanLink(row)
}

func (s *Postgres) Claim(ctx context.Context, token string, outcomeRef uuid.UUID, now time.Time) (*models.Link, error) {
	q := tx.Querier(ctx, s.db)

	row := q.QueryRowContext(ctx, `
		UPDATE links
		SET completed = TRUE, active = FALSE, outcome_ref = $2
		WHERE token = $1 AND active AND NOT completed AND expires_at > $3
		RETURNING `+linkColumns,
		token, outcomeRef, now)

	link, err := scanLink(row)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	// The conditional update matched nothing; re-read to classify the refusal.
	existing, ferr := s.FindByToken(ctx, token)
	if ferr != nil {
		return nil, ferr
	}
	if existing.Completed {
		return nil, fmt.Errorf("link already completed: %w", sentinel.ErrAlreadyUsed)
	}
	return nil, fmt.Errorf("link unusable: %w", sentinel.ErrExpired)
}

func (s *Postgres) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	q := tx.Querier(ctx, s.db)
	res, err := q.ExecContext(ctx, `UPDATE links SET active = FALSE WHERE active AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired links: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func scanLink(row *sql.Row) (*models.Link, error) {
	var l models.Link
	var kind string
	var outcome uuid.NullUUID
	err := row.Scan(&l.ID, &l.Token, &kind, &l.Subject.ID,
		&l.Active, &l.Completed, &outcome, &l.CreatedAt, &l.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("link not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan link: %w", err)
	}
	l.Subject.Kind = models.SubjectKind(kind)
	if outcome.Valid {
		ref := outcome.UUID
		l.OutcomeRef = &ref
	}
	return &l, nil
}
