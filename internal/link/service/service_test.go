package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"zorvixe/internal/audit"
	"zorvixe/internal/link/models"
	"zorvixe/internal/link/store"
	dErrors "zorvixe/pkg/domain-errors"
	"zorvixe/pkg/platform/tx"
	"zorvixe/pkg/requestcontext"
)

type LinkServiceSuite struct {
	suite.Suite
	svc  *Service
	sink *audit.InMemorySink
	now  time.Time
	ctx  context.Context
}

func (s *LinkServiceSuite) SetupTest() {
	s.sink = audit.NewInMemorySink()
	s.svc = New(
		store.NewInMemory(),
		tx.NewMemoryRunner(),
		"https://zorvixe.com",
		WithAudit(audit.NewPublisher(s.sink)),
	)
	s.now = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestLinkServiceSuite(t *testing.T) {
	suite.Run(t, new(LinkServiceSuite))
}

func (s *LinkServiceSuite) at(d time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(d))
}

func TestGenerateToken(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Za-z0-9_-]{43}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if !pattern.MatchString(token) {
			t.Fatalf("token %q is not URL-safe base64 of 32 bytes", token)
		}
		if seen[token] {
			t.Fatalf("token %q generated twice", token)
		}
		seen[token] = true
	}
}

func (s *LinkServiceSuite) TestIssueAndResolve() {
	subject := models.SubjectRef{Kind: models.SubjectClient, ID: uuid.New()}

	link, err := s.svc.Issue(s.ctx, subject)
	s.Require().NoError(err)
	s.True(link.Active)
	s.Equal(s.now.Add(models.PaymentLinkTTL), link.ExpiresAt)

	got, err := s.svc.Resolve(s.ctx, link.Token)
	s.Require().NoError(err)
	s.Equal(link.ID, got.ID)

	events := s.sink.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.ActionLinkIssued, events[0].Action)
}

func (s *LinkServiceSuite) TestIssueSupersedesPrior() {
	subject := models.SubjectRef{Kind: models.SubjectCandidate, ID: uuid.New()}

	first, err := s.svc.Issue(s.ctx, subject)
	s.Require().NoError(err)
	second, err := s.svc.Issue(s.ctx, subject)
	s.Require().NoError(err)

	_, err = s.svc.Resolve(s.ctx, first.Token)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeLinkInvalid), "superseded link must refuse like any dead link")

	_, err = s.svc.Resolve(s.ctx, second.Token)
	s.NoError(err)
}

func (s *LinkServiceSuite) TestResolveRefusalsAreUndifferentiated() {
	subject := models.SubjectRef{Kind: models.SubjectCandidate, ID: uuid.New()}
	link, err := s.svc.Issue(s.ctx, subject)
	s.Require().NoError(err)

	s.Run("unknown token", func() {
		_, err := s.svc.Resolve(s.ctx, "no-such-token")
		s.True(dErrors.Is(err, dErrors.CodeLinkInvalid))
		s.Equal("invalid or expired link", dErrors.MessageOf(err))
	})

	s.Run("expired token", func() {
		_, err := s.svc.Resolve(s.at(6*time.Hour), link.Token)
		s.True(dErrors.Is(err, dErrors.CodeLinkInvalid))
		s.Equal("invalid or expired link", dErrors.MessageOf(err))
	})

	s.Run("deactivated token", func() {
		_, err := s.svc.SetActive(s.ctx, subject, false)
		s.Require().NoError(err)

		_, err = s.svc.Resolve(s.at(time.Minute), link.Token)
		s.True(dErrors.Is(err, dErrors.CodeLinkInvalid))
		s.Equal("invalid or expired link", dErrors.MessageOf(err))
	})
}

func (s *LinkServiceSuite) TestCompletedLinkResolvesForever() {
	subject := models.SubjectRef{Kind: models.SubjectCandidate, ID: uuid.New()}
	link, err := s.svc.Issue(s.ctx, subject)
	s.Require().NoError(err)

	_, err = s.svc.Claim(s.at(time.Hour), link.Token, uuid.New())
	s.Require().NoError(err)

	// Past the 5h deadline: reads still succeed, writes refuse as completed.
	got, err := s.svc.Resolve(s.at(6*time.Hour), link.Token)
	s.Require().NoError(err)
	s.True(got.Completed)

	_, err = s.svc.ResolveUsable(s.at(6*time.Hour), link.Token)
	s.True(dErrors.Is(err, dErrors.CodeAlreadyCompleted))
}

func (s *LinkServiceSuite) TestClaim() {
	subject := models.SubjectRef{Kind: models.SubjectClient, ID: uuid.New()}
	link, err := s.svc.Issue(s.ctx, subject)
	s.Require().NoError(err)

	s.Run("claims once", func() {
		outcome := uuid.New()
		claimed, err := s.svc.Claim(s.ctx, link.Token, outcome)
		s.Require().NoError(err)
		s.True(claimed.Completed)
		s.Equal(outcome, *claimed.OutcomeRef)
	})

	s.Run("second claim reports completion", func() {
		_, err := s.svc.Claim(s.ctx, link.Token, uuid.New())
		s.True(dErrors.Is(err, dErrors.CodeAlreadyCompleted))
	})

	s.Run("unknown token refuses as invalid", func() {
		_, err := s.svc.Claim(s.ctx, "no-such-token", uuid.New())
		s.True(dErrors.Is(err, dErrors.CodeLinkInvalid))
	})
}

func (s *LinkServiceSuite) TestSetActive() {
	subject := models.SubjectRef{Kind: models.SubjectClient, ID: uuid.New()}
	_, err := s.svc.Issue(s.ctx, subject)
	s.Require().NoError(err)

	link, err := s.svc.SetActive(s.ctx, subject, false)
	s.Require().NoError(err)
	s.False(link.Active)

	link, err = s.svc.SetActive(s.ctx, subject, true)
	s.Require().NoError(err)
	s.True(link.Active)

	s.Run("missing subject reports not found", func() {
		_, err := s.svc.SetActive(s.ctx, models.SubjectRef{Kind: models.SubjectClient, ID: uuid.New()}, true)
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

func (s *LinkServiceSuite) TestPublicURL() {
	client := models.SubjectRef{Kind: models.SubjectClient, ID: uuid.New()}
	candidate := models.SubjectRef{Kind: models.SubjectCandidate, ID: uuid.New()}

	paymentLink, err := s.svc.Issue(s.ctx, client)
	s.Require().NoError(err)
	onboardingLink, err := s.svc.Issue(s.ctx, candidate)
	s.Require().NoError(err)

	s.Equal("https://zorvixe.com/payment/"+paymentLink.Token, s.svc.PublicURL(paymentLink))
	s.Equal("https://zorvixe.com/onboarding/"+onboardingLink.Token, s.svc.PublicURL(onboardingLink))
}

func (s *LinkServiceSuite) TestSweepExpired() {
	_, err := s.svc.Issue(s.ctx, models.SubjectRef{Kind: models.SubjectCandidate, ID: uuid.New()})
	s.Require().NoError(err)
	_, err = s.svc.Issue(s.ctx, models.SubjectRef{Kind: models.SubjectClient, ID: uuid.New()})
	s.Require().NoError(err)

	n, err := s.svc.SweepExpired(s.at(6 * time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(1), n, "only the onboarding link has expired")
}
