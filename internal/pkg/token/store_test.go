package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/partsmarket/internal/pkg/kvstore"
)

func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"userId": "u1",
		"exp":    time.Now().Add(expiresIn).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(kvstore.NewMemory())

	_, ok := s.Token(ctx)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "jwt-abc"))

	tok, ok := s.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "jwt-abc", tok)

	require.NoError(t, s.Clear(ctx))
	_, ok = s.Token(ctx)
	assert.False(t, ok)
}

func TestStore_ValidAcceptsLiveToken(t *testing.T) {
	ctx := context.Background()
	s := New(kvstore.NewMemory())

	require.NoError(t, s.Set(ctx, signedToken(t, time.Hour)))
	assert.True(t, s.Valid(ctx))

	// Still stored afterwards.
	_, ok := s.Token(ctx)
	assert.True(t, ok)
}

func TestStore_ValidClearsExpiredToken(t *testing.T) {
	ctx := context.Background()
	s := New(kvstore.NewMemory())

	require.NoError(t, s.Set(ctx, signedToken(t, -time.Minute)))
	assert.False(t, s.Valid(ctx))

	_, ok := s.Token(ctx)
	assert.False(t, ok, "expired token must be cleared")
}

func TestStore_ValidClearsGarbage(t *testing.T) {
	ctx := context.Background()
	s := New(kvstore.NewMemory())

	require.NoError(t, s.Set(ctx, "not-a-jwt"))
	assert.False(t, s.Valid(ctx))

	_, ok := s.Token(ctx)
	assert.False(t, ok)
}

func TestStore_ValidWithoutToken(t *testing.T) {
	s := New(kvstore.NewMemory())
	assert.False(t, s.Valid(context.Background()))
}
