package objectstore

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"zorvixe/pkg/platform/sentinel"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	t.Run("put and get round trip", func(t *testing.T) {
		body := strings.NewReader("%PDF-1.7 fake")
		require.NoError(t, store.Put(ctx, "onboarding/2025/abc/doc.pdf", body, 13, "application/pdf"))

		obj, err := store.Get(ctx, "onboarding/2025/abc/doc.pdf")
		require.NoError(t, err)
		defer obj.Body.Close()

		data, err := io.ReadAll(obj.Body)
		require.NoError(t, err)
		require.Equal(t, "%PDF-1.7 fake", string(data))
		require.Equal(t, "application/pdf", obj.ContentType)
		require.Equal(t, int64(13), obj.Size)
	})

	t.Run("get absent key returns not found", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		require.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "onboarding/2025/abc/doc.pdf"))
		require.NoError(t, store.Delete(ctx, "onboarding/2025/abc/doc.pdf"))
		require.Equal(t, 0, store.Len())
	})
}
