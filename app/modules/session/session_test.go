package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s, err := store.Create(ctx, "user-1", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "user-1", s.UserID)

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestMemoryStore_GetUnknownID(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ExpiredSessionIsGone(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	s, err := store.Create(ctx, "user-1", time.Minute)
	require.NoError(t, err)

	// Still valid just before expiry.
	now = now.Add(59 * time.Second)
	_, err = store.Get(ctx, s.ID)
	require.NoError(t, err)

	// Gone after.
	now = now.Add(2 * time.Second)
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s, err := store.Create(ctx, "user-1", time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is a no-op.
	require.NoError(t, store.Delete(ctx, s.ID))
}

func TestTokenProvider_RoundTrip(t *testing.T) {
	provider := NewTokenProvider("test-secret")

	now := time.Now()
	s := Session{
		ID:        "session-1",
		UserID:    "user-1",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}

	token, err := provider.Generate(s)
	require.NoError(t, err)

	id, err := provider.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
}

func TestTokenProvider_ExpiredToken(t *testing.T) {
	provider := NewTokenProvider("test-secret")

	now := time.Now()
	s := Session{
		ID:        "session-1",
		UserID:    "user-1",
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}

	token, err := provider.Generate(s)
	require.NoError(t, err)

	_, err = provider.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenProvider_WrongSecret(t *testing.T) {
	signer := NewTokenProvider("secret-a")
	verifier := NewTokenProvider("secret-b")

	now := time.Now()
	token, err := signer.Generate(Session{
		ID:        "session-1",
		UserID:    "user-1",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenProvider_GarbageToken(t *testing.T) {
	provider := NewTokenProvider("test-secret")

	_, err := provider.Validate("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = provider.Validate("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
