package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"zorvixe/pkg/requestcontext"
)

type PublisherSuite struct {
	suite.Suite
	sink *InMemorySink
	ctx  context.Context
}

func (s *PublisherSuite) SetupTest() {
	s.sink = NewInMemorySink()
	s.ctx = context.Background()
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestSyncEmit() {
	p := NewPublisher(s.sink)

	err := p.Emit(s.ctx, Event{Action: ActionLinkIssued, SubjectID: "abc"})
	s.Require().NoError(err)

	events := s.sink.Events()
	s.Require().Len(events, 1)
	s.Equal(ActionLinkIssued, events[0].Action)
	s.False(events[0].Timestamp.IsZero(), "emit stamps the event")
}

func (s *PublisherSuite) TestEnrichesFromContext() {
	p := NewPublisher(s.sink)

	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.ctx, now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithClientIP(ctx, "203.0.113.7")

	s.Require().NoError(p.Emit(ctx, Event{Action: ActionPaymentRegistered}))

	events := s.sink.Events()
	s.Require().Len(events, 1)
	s.Equal(now, events[0].Timestamp)
	s.Equal("req-1", events[0].RequestID)
	s.Equal("203.0.113.7", events[0].ClientIP)
}

func (s *PublisherSuite) TestAsyncDrainsOnClose() {
	p := NewPublisher(s.sink, WithAsyncBuffer(16))

	for i := 0; i < 10; i++ {
		s.Require().NoError(p.Emit(s.ctx, Event{Action: ActionDocumentUploaded}))
	}
	p.Close()

	s.Len(s.sink.Events(), 10, "close drains buffered events")
}

func (s *PublisherSuite) TestNilPublisherIsNoop() {
	var p *Publisher
	s.NoError(p.Emit(s.ctx, Event{Action: ActionLinkIssued}))
	p.Close()
}
