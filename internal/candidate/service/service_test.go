package service

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"zorvixe/internal/audit"
	"zorvixe/internal/candidate/models"
	"zorvixe/internal/candidate/store"
	linkmodels "zorvixe/internal/link/models"
	linkservice "zorvixe/internal/link/service"
	linkstore "zorvixe/internal/link/store"
	"zorvixe/internal/objectstore"
	dErrors "zorvixe/pkg/domain-errors"
	"zorvixe/pkg/platform/tx"
	"zorvixe/pkg/requestcontext"
)

type CandidateServiceSuite struct {
	suite.Suite
	svc     *Service
	objects *objectstore.InMemory
	sink    *audit.InMemorySink
	now     time.Time
	ctx     context.Context
}

func (s *CandidateServiceSuite) SetupTest() {
	runner := tx.NewMemoryRunner()
	s.objects = objectstore.NewInMemory()
	s.sink = audit.NewInMemorySink()
	links := linkservice.New(linkstore.NewInMemory(), runner, "https://zorvixe.com")
	s.svc = New(
		store.NewInMemoryCandidates(),
		store.NewInMemoryUploads(),
		s.objects,
		links,
		runner,
		WithAudit(audit.NewPublisher(s.sink)),
	)
	s.now = time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestCandidateServiceSuite(t *testing.T) {
	suite.Run(t, new(CandidateServiceSuite))
}

func (s *CandidateServiceSuite) at(d time.Duration) context.Context {
	return requestcontext.WithTime(context.Background(), s.now.Add(d))
}

func (s *CandidateServiceSuite) createCandidate() *models.Candidate {
	candidate, err := s.svc.CreateCandidate(s.ctx, models.NewCandidateInput{
		Name:     "Jordan Rivera",
		Email:    "jordan@example.com",
		Phone:    "+15550002222",
		Position: "Backend Engineer",
	})
	s.Require().NoError(err)
	return candidate
}

func (s *CandidateServiceSuite) pdfUpload(content string) UploadInput {
	return UploadInput{
		FileName:    "documents.pdf",
		ContentType: models.AcceptedContentType,
		Size:        int64(len(content)),
		Body:        strings.NewReader(content),
	}
}

func (s *CandidateServiceSuite) TestCreateCandidate() {
	candidate := s.createCandidate()
	s.Equal(models.StatusPending, candidate.Status)
	s.Regexp(regexp.MustCompile(`^CAN-\d{6}-[A-Z0-9]{4}$`), candidate.CandidateCode)
}

func (s *CandidateServiceSuite) TestIssueOnboardingLink() {
	candidate := s.createCandidate()

	link, url, err := s.svc.IssueOnboardingLink(s.ctx, candidate.ID)
	s.Require().NoError(err)
	s.Equal(s.now.Add(linkmodels.OnboardingLinkTTL), link.ExpiresAt, "onboarding links live 5 hours")
	s.Equal("https://zorvixe.com/onboarding/"+link.Token, url)

	s.Run("unknown candidate reports not found", func() {
		_, _, err := s.svc.IssueOnboardingLink(s.ctx, uuid.New())
		s.True(dErrors.Is(err, dErrors.CodeNotFound))
	})
}

// TestOnboardingTimeline walks the canonical lifecycle: resolve and upload
// within the window, then observe the completed state after expiry.
func (s *CandidateServiceSuite) TestOnboardingTimeline() {
	candidate := s.createCandidate()
	link, _, err := s.svc.IssueOnboardingLink(s.ctx, candidate.ID)
	s.Require().NoError(err)

	s.Run("resolves one hour in", func() {
		res, err := s.svc.ResolveByToken(s.at(time.Hour), link.Token)
		s.Require().NoError(err)
		s.Equal(candidate.ID, res.Candidate.ID)
		s.False(res.Link.Completed)
	})

	var record *models.UploadRecord
	s.Run("accepts the upload", func() {
		var err error
		record, err = s.svc.UploadDocument(s.at(time.Hour), link.Token, s.pdfUpload("%PDF-1.7 body"))
		s.Require().NoError(err)
		s.Equal(candidate.ID, record.CandidateID)
		s.Regexp(regexp.MustCompile(`^onboarding/2025/`+candidate.ID.String()+`/.+\.pdf$`), record.ObjectKey)
		s.Equal(1, s.objects.Len())
	})

	s.Run("advances the candidate status", func() {
		got, _, err := s.svc.GetCandidate(s.ctx, candidate.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusDocumentsUploaded, got.Status)
	})

	s.Run("resolves after expiry showing completion", func() {
		res, err := s.svc.ResolveByToken(s.at(6*time.Hour), link.Token)
		s.Require().NoError(err)
		s.True(res.Link.Completed)
		s.Require().NotNil(res.Upload)
		s.Equal(record.ID, res.Upload.ID)
	})

	s.Run("second upload after expiry reports completion, not expiry", func() {
		_, err := s.svc.UploadDocument(s.at(6*time.Hour), link.Token, s.pdfUpload("%PDF-1.7 other"))
		s.True(dErrors.Is(err, dErrors.CodeAlreadyCompleted))
		s.Equal(1, s.objects.Len(), "refused upload must not leave an orphan object")
	})

	s.Run("artifact survives link expiry", func() {
		artifact, err := s.svc.DownloadArtifact(s.at(10*24*time.Hour), candidate.ID)
		s.Require().NoError(err)
		defer artifact.Object.Body.Close()
		s.Equal(record.ID, artifact.Record.ID)
	})
}

func (s *CandidateServiceSuite) TestUploadValidation() {
	candidate := s.createCandidate()
	link, _, err := s.svc.IssueOnboardingLink(s.ctx, candidate.ID)
	s.Require().NoError(err)

	s.Run("rejects non-pdf before staging", func() {
		in := s.pdfUpload("not a pdf")
		in.ContentType = "image/png"
		_, err := s.svc.UploadDocument(s.ctx, link.Token, in)
		s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
		s.Equal(0, s.objects.Len())
	})

	s.Run("rejects oversize before staging", func() {
		in := s.pdfUpload("tiny")
		in.Size = models.MaxUploadBytes + 1
		_, err := s.svc.UploadDocument(s.ctx, link.Token, in)
		s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
		s.Equal(0, s.objects.Len())
	})

	s.Run("rejects expired link", func() {
		_, err := s.svc.UploadDocument(s.at(6*time.Hour), link.Token, s.pdfUpload("%PDF-1.7"))
		s.True(dErrors.Is(err, dErrors.CodeLinkInvalid))
		s.Equal(0, s.objects.Len(), "staged bytes must be discarded when the claim fails")
	})
}

// TestConcurrentUploads races many submissions through one link and expects
// exactly one stored object and record.
func (s *CandidateServiceSuite) TestConcurrentUploads() {
	candidate := s.createCandidate()
	link, _, err := s.svc.IssueOnboardingLink(s.ctx, candidate.ID)
	s.Require().NoError(err)

	const goroutines = 50
	var wg sync.WaitGroup
	var wins, refusals atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.UploadDocument(s.ctx, link.Token, s.pdfUpload("%PDF-1.7 race"))
			if err == nil {
				wins.Add(1)
			} else {
				refusals.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "exactly one upload should win")
	s.Equal(int32(goroutines-1), refusals.Load())
	s.Equal(1, s.objects.Len(), "losing uploads must discard their staged objects")
}

func (s *CandidateServiceSuite) TestUpdateCandidateStatus() {
	candidate := s.createCandidate()

	got, err := s.svc.UpdateCandidateStatus(s.ctx, candidate.ID, models.StatusApproved)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, got.Status)

	s.Run("refuses documents_uploaded", func() {
		_, err := s.svc.UpdateCandidateStatus(s.ctx, candidate.ID, models.StatusDocumentsUploaded)
		s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
	})
}

func (s *CandidateServiceSuite) TestDownloadArtifactWithoutUpload() {
	candidate := s.createCandidate()
	_, err := s.svc.DownloadArtifact(s.ctx, candidate.ID)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *CandidateServiceSuite) TestPaymentTokenDoesNotOpenOnboarding() {
	// A client-kind link must not pass the candidate gate even when usable.
	runner := tx.NewMemoryRunner()
	links := linkservice.New(linkstore.NewInMemory(), runner, "https://zorvixe.com")
	svc := New(store.NewInMemoryCandidates(), store.NewInMemoryUploads(), objectstore.NewInMemory(), links, runner)

	link, err := links.Issue(s.ctx, linkmodels.SubjectRef{Kind: linkmodels.SubjectClient, ID: uuid.New()})
	s.Require().NoError(err)

	_, err = svc.ResolveByToken(s.ctx, link.Token)
	s.True(dErrors.Is(err, dErrors.CodeLinkInvalid))
}
