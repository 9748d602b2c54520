package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"zorvixe/internal/link/models"
	"zorvixe/pkg/platform/sentinel"
)

type LinkStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func (s *LinkStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
}

func TestLinkStoreSuite(t *testing.T) {
	suite.Run(t, new(LinkStoreSuite))
}

func (s *LinkStoreSuite) newLink(subject models.SubjectRef, token string) *models.Link {
	l, err := models.NewLink(subject, token, s.now)
	s.Require().NoError(err)
	return l
}

func (s *LinkStoreSuite) TestIssueAndLookups() {
	subject := models.SubjectRef{Kind: models.SubjectClient, ID: uuid.New()}

	s.Run("issues and finds by token", func() {
		l := s.newLink(subject, "tok-a")
		s.Require().NoError(s.store.Issue(s.ctx, l))

		found, err := s.store.FindByToken(s.ctx, "tok-a")
		s.Require().NoError(err)
		s.Equal(l.ID, found.ID)
		s.True(found.Active)
	})

	s.Run("returns ErrNotFound for unknown token", func() {
		_, err := s.store.FindByToken(s.ctx, "missing")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate token", func() {
		dup := s.newLink(subject, "tok-a")
		s.Require().ErrorIs(s.store.Issue(s.ctx, dup), sentinel.ErrConflict)
	})
}

func (s *LinkStoreSuite) TestSingleActivePerSubject() {
	subject := models.SubjectRef{Kind: models.SubjectClient, ID: uuid.New()}

	first := s.newLink(subject, "tok-1")
	s.Require().NoError(s.store.Issue(s.ctx, first))

	second := s.newLink(subject, "tok-2")
	second.CreatedAt = s.now.Add(time.Minute)
	s.Require().NoError(s.store.Issue(s.ctx, second))

	got1, err := s.store.FindByToken(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.False(got1.Active, "issuing a new link must deactivate the prior one")

	got2, err := s.store.FindByToken(s.ctx, "tok-2")
	s.Require().NoError(err)
	s.True(got2.Active)

	current, err := s.store.FindCurrentBySubject(s.ctx, subject, s.now.Add(2*time.Minute))
	s.Require().NoError(err)
	s.Equal(second.ID, current.ID)
}

func (s *LinkStoreSuite) TestSetActive() {
	subject := models.SubjectRef{Kind: models.SubjectCandidate, ID: uuid.New()}
	l := s.newLink(subject, "tok-t")
	s.Require().NoError(s.store.Issue(s.ctx, l))

	s.Run("deactivates and reactivates before expiry", func() {
		got, err := s.store.SetActive(s.ctx, subject, false, s.now.Add(time.Hour))
		s.Require().NoError(err)
		s.False(got.Active)

		got, err = s.store.SetActive(s.ctx, subject, true, s.now.Add(2*time.Hour))
		s.Require().NoError(err)
		s.True(got.Active)
	})

	s.Run("fails NotFound after expiry", func() {
		_, err := s.store.SetActive(s.ctx, subject, true, s.now.Add(6*time.Hour))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("fails NotFound for unknown subject", func() {
		_, err := s.store.SetActive(s.ctx, models.SubjectRef{Kind: models.SubjectCandidate, ID: uuid.New()}, true, s.now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *LinkStoreSuite) TestClaim() {
	subject := models.SubjectRef{Kind: models.SubjectCandidate, ID: uuid.New()}

	s.Run("claims a usable link once", func() {
		l := s.newLink(subject, "tok-c")
		s.Require().NoError(s.store.Issue(s.ctx, l))

		outcome := uuid.New()
		claimed, err := s.store.Claim(s.ctx, "tok-c", outcome, s.now.Add(time.Hour))
		s.Require().NoError(err)
		s.True(claimed.Completed)
		s.False(claimed.Active, "completion clears the active flag")
		s.Require().NotNil(claimed.OutcomeRef)
		s.Equal(outcome, *claimed.OutcomeRef)

		_, err = s.store.Claim(s.ctx, "tok-c", uuid.New(), s.now.Add(time.Hour))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("completed wins over expired", func() {
		_, err := s.store.Claim(s.ctx, "tok-c", uuid.New(), s.now.Add(48*time.Hour))
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("rejects expired link", func() {
		l := s.newLink(models.SubjectRef{Kind: models.SubjectCandidate, ID: uuid.New()}, "tok-e")
		s.Require().NoError(s.store.Issue(s.ctx, l))

		_, err := s.store.Claim(s.ctx, "tok-e", uuid.New(), s.now.Add(6*time.Hour))
		s.Require().ErrorIs(err, sentinel.ErrExpired)
	})

	s.Run("rejects deactivated link", func() {
		sub := models.SubjectRef{Kind: models.SubjectCandidate, ID: uuid.New()}
		l := s.newLink(sub, "tok-d")
		s.Require().NoError(s.store.Issue(s.ctx, l))
		_, err := s.store.SetActive(s.ctx, sub, false, s.now)
		s.Require().NoError(err)

		_, err = s.store.Claim(s.ctx, "tok-d", uuid.New(), s.now.Add(time.Minute))
		s.Require().ErrorIs(err, sentinel.ErrExpired)
	})

	s.Run("rejects unknown token", func() {
		_, err := s.store.Claim(s.ctx, "missing", uuid.New(), s.now)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestConcurrentClaims verifies that racing claims for the same link produce
// exactly one winner.
func (s *LinkStoreSuite) TestConcurrentClaims() {
	subject := models.SubjectRef{Kind: models.SubjectClient, ID: uuid.New()}
	l := s.newLink(subject, "tok-race")
	s.Require().NoError(s.store.Issue(s.ctx, l))

	const goroutines = 50
	var wg sync.WaitGroup
	var wins, rejections atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Claim(s.ctx, "tok-race", uuid.New(), s.now.Add(time.Hour))
			if err == nil {
				wins.Add(1)
			} else {
				rejections.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "exactly one claim should succeed")
	s.Equal(int32(goroutines-1), rejections.Load())
}

func (s *LinkStoreSuite) TestDeactivateExpired() {
	live := s.newLink(models.SubjectRef{Kind: models.SubjectClient, ID: uuid.New()}, "tok-live")
	stale := s.newLink(models.SubjectRef{Kind: models.SubjectCandidate, ID: uuid.New()}, "tok-stale")
	s.Require().NoError(s.store.Issue(s.ctx, live))
	s.Require().NoError(s.store.Issue(s.ctx, stale))

	n, err := s.store.DeactivateExpired(s.ctx, s.now.Add(6*time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(1), n, "only the 5h onboarding link has expired")

	got, err := s.store.FindByToken(s.ctx, "tok-stale")
	s.Require().NoError(err)
	s.False(got.Active)
}
