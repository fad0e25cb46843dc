package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"sheetsync/internal/auth"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "sheetsync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestToken(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store reports missing credentials", func(t *testing.T) {
		s := testStore(t)

		_, err := s.Token(ctx)
		assert.ErrorIs(t, err, auth.ErrMissingCredentials)
	})

	t.Run("round trip", func(t *testing.T) {
		s := testStore(t)

		saved := &oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Hour).UTC(),
		}
		require.NoError(t, s.SaveToken(ctx, saved))

		got, err := s.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, saved.AccessToken, got.AccessToken)
		assert.Equal(t, saved.RefreshToken, got.RefreshToken)
		assert.WithinDuration(t, saved.Expiry, got.Expiry, time.Second)
	})

	t.Run("save replaces the previous token", func(t *testing.T) {
		s := testStore(t)

		require.NoError(t, s.SaveToken(ctx, &oauth2.Token{AccessToken: "old"}))
		require.NoError(t, s.SaveToken(ctx, &oauth2.Token{AccessToken: "new"}))

		got, err := s.Token(ctx)
		require.NoError(t, err)
		assert.Equal(t, "new", got.AccessToken)
	})
}

func TestLedger(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	done, err := s.Appended(ctx, "order-1")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, s.MarkAppended(ctx, "order-1", 3))

	done, err = s.Appended(ctx, "order-1")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = s.Appended(ctx, "order-2")
	require.NoError(t, err)
	assert.False(t, done)

	// Re-marking the same order is not an error.
	require.NoError(t, s.MarkAppended(ctx, "order-1", 3))
}
