package tx

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRunnerSerializes(t *testing.T) {
	runner := NewMemoryRunner()

	var inside int
	var maxInside int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = runner.RunInTx(context.Background(), func(ctx context.Context) error {
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside, "units of work must not overlap")
}

func TestMemoryRunnerPropagatesError(t *testing.T) {
	runner := NewMemoryRunner()
	sentinelErr := errors.New("boom")

	err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
		return sentinelErr
	})
	require.ErrorIs(t, err, sentinelErr)
}

func TestFromEmptyContext(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
}
