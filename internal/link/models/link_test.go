package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLink(t *testing.T) {
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	t.Run("payment link gets 30 day deadline", func(t *testing.T) {
		l, err := NewLink(SubjectRef{Kind: SubjectClient, ID: uuid.New()}, "tok", now)
		require.NoError(t, err)
		assert.True(t, l.Active)
		assert.False(t, l.Completed)
		assert.Equal(t, now.Add(30*24*time.Hour), l.ExpiresAt)
	})

	t.Run("onboarding link gets 5 hour deadline", func(t *testing.T) {
		l, err := NewLink(SubjectRef{Kind: SubjectCandidate, ID: uuid.New()}, "tok", now)
		require.NoError(t, err)
		assert.Equal(t, now.Add(5*time.Hour), l.ExpiresAt)
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		_, err := NewLink(SubjectRef{Kind: "weird", ID: uuid.New()}, "tok", now)
		assert.Error(t, err)

		_, err = NewLink(SubjectRef{Kind: SubjectClient}, "tok", now)
		assert.Error(t, err)

		_, err = NewLink(SubjectRef{Kind: SubjectClient, ID: uuid.New()}, "", now)
		assert.Error(t, err)
	})
}

func TestGatePredicate(t *testing.T) {
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	subject := SubjectRef{Kind: SubjectCandidate, ID: uuid.New()}

	newLink := func() *Link {
		l, err := NewLink(subject, "tok", now)
		require.NoError(t, err)
		return l
	}

	t.Run("fresh link is usable", func(t *testing.T) {
		assert.True(t, newLink().Usable(now.Add(time.Hour)))
	})

	t.Run("deactivated link is not usable regardless of deadline", func(t *testing.T) {
		l := newLink()
		l.Active = false
		assert.False(t, l.Usable(now.Add(time.Minute)))
		assert.False(t, l.Resolvable(now.Add(time.Minute)))
	})

	t.Run("expired link is not usable regardless of active flag", func(t *testing.T) {
		l := newLink()
		assert.False(t, l.Usable(now.Add(5*time.Hour)))
		assert.False(t, l.Usable(now.Add(6*time.Hour)))
	})

	t.Run("completed link resolves even past expiry", func(t *testing.T) {
		l := newLink()
		l.Completed = true
		l.Active = false
		assert.True(t, l.Resolvable(now.Add(6*time.Hour)))
		assert.False(t, l.Usable(now.Add(6*time.Hour)))
	})
}
