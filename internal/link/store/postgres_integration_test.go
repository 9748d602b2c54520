//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"zorvixe/internal/link/models"
	"zorvixe/internal/link/store"
	"zorvixe/pkg/platform/sentinel"
	"zorvixe/pkg/platform/tx"
	"zorvixe/pkg/testutil/containers"
)

type PostgresLinkStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	runner   tx.Runner
}

func TestPostgresLinkStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresLinkStoreSuite))
}

func (s *PostgresLinkStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.runner = tx.NewSQLRunner(s.postgres.DB)
}

func (s *PostgresLinkStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "links", "payment_registrations", "upload_records", "candidates", "clients"))
}

func (s *PostgresLinkStoreSuite) seedClient(ctx context.Context, id uuid.UUID) {
	_, err := s.postgres.DB.ExecContext(ctx, `
		INSERT INTO clients (id, name, email, phone, project_name, client_code, project_code, status, created_at, updated_at)
		VALUES ($1, 'Acme', 'acme@example.com', '+15550001111', 'Website', $2, $3, 'pending', NOW(), NOW())
	`, id, "ZOR-"+id.String()[:6], "PRJ-000000-"+id.String()[:4])
	s.Require().NoError(err)
}

func (s *PostgresLinkStoreSuite) issue(ctx context.Context, subject models.SubjectRef, token string, now time.Time) *models.Link {
	l, err := models.NewLink(subject, token, now)
	s.Require().NoError(err)
	s.Require().NoError(s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		return s.store.Issue(txCtx, l)
	}))
	return l
}

// TestSingleActiveIndex verifies the partial unique index keeps invariant I1
// even under repeated issuance.
func (s *PostgresLinkStoreSuite) TestSingleActiveIndex() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	clientID := uuid.New()
	s.seedClient(ctx, clientID)
	subject := models.SubjectRef{Kind: models.SubjectClient, ID: clientID}

	for i := 0; i < 5; i++ {
		s.issue(ctx, subject, uuid.NewString(), now.Add(time.Duration(i)*time.Second))
	}

	var active int
	err := s.postgres.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM links WHERE subject_id = $1 AND active`, clientID).Scan(&active)
	s.Require().NoError(err)
	s.Equal(1, active, "exactly one active link after N issues")
}

// TestConcurrentClaims verifies that the conditional UPDATE admits exactly
// one of many racing completion attempts.
func (s *PostgresLinkStoreSuite) TestConcurrentClaims() {
	ctx := context.Background()
	now := time.Now().UTC()
	clientID := uuid.New()
	s.seedClient(ctx, clientID)
	subject := models.SubjectRef{Kind: models.SubjectClient, ID: clientID}

	l := s.issue(ctx, subject, "race-"+uuid.NewString(), now)

	const goroutines = 20
	var wg sync.WaitGroup
	var wins, alreadyUsed atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Claim(ctx, l.Token, uuid.New(), time.Now().UTC())
			switch {
			case err == nil:
				wins.Add(1)
			default:
				alreadyUsed.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "exactly one claim should win")
	s.Equal(int32(goroutines-1), alreadyUsed.Load())

	got, err := s.store.FindByToken(ctx, l.Token)
	s.Require().NoError(err)
	s.True(got.Completed)
	s.False(got.Active)
}

func (s *PostgresLinkStoreSuite) TestClaimClassifiesRefusals() {
	ctx := context.Background()
	now := time.Now().UTC()
	clientID := uuid.New()
	s.seedClient(ctx, clientID)
	subject := models.SubjectRef{Kind: models.SubjectClient, ID: clientID}

	l := s.issue(ctx, subject, "cls-"+uuid.NewString(), now)

	s.Run("deactivated link claims as expired", func() {
		_, err := s.store.SetActive(ctx, subject, false, now)
		s.Require().NoError(err)

		_, err = s.store.Claim(ctx, l.Token, uuid.New(), now.Add(time.Minute))
		s.Require().ErrorIs(err, sentinel.ErrExpired)
	})

	s.Run("completed link claims as already used", func() {
		_, err := s.store.SetActive(ctx, subject, true, now)
		s.Require().NoError(err)

		_, err = s.store.Claim(ctx, l.Token, uuid.New(), now.Add(time.Minute))
		s.Require().NoError(err)

		_, err = s.store.Claim(ctx, l.Token, uuid.New(), now.Add(2*time.Minute))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("unknown token claims as not found", func() {
		_, err := s.store.Claim(ctx, "never-issued", uuid.New(), now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PostgresLinkStoreSuite) TestIssueRollsBackAtomically() {
	ctx := context.Background()
	now := time.Now().UTC()
	clientID := uuid.New()
	s.seedClient(ctx, clientID)
	subject := models.SubjectRef{Kind: models.SubjectClient, ID: clientID}

	first := s.issue(ctx, subject, "keep-"+uuid.NewString(), now)

	// Second issue fails mid-transaction (duplicate token); the deactivation
	// of the first link must roll back with it.
	dup, err := models.NewLink(subject, first.Token, now.Add(time.Second))
	s.Require().NoError(err)
	err = s.runner.RunInTx(ctx, func(txCtx context.Context) error {
		return s.store.Issue(txCtx, dup)
	})
	s.Require().Error(err)

	got, err := s.store.FindByToken(ctx, first.Token)
	s.Require().NoError(err)
	s.True(got.Active, "failed issue must not deactivate the prior link")
}
