// Package token persists the session JWT between runs and answers the only
// question the client ever asks about it: is there a usable token right now?
package token

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jcmexdev/partsmarket/internal/pkg/kvstore"
)

// storageKey is the fixed key the token lives under in the kv store.
const storageKey = "token"

// Store reads and writes the session token through a kvstore.Store.
// It implements apiclient.TokenSource.
type Store struct {
	kv kvstore.Store
}

func New(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Token returns the stored session token. A read failure is treated as
// "no token": the caller will simply make an unauthenticated request and the
// server will answer 401.
func (s *Store) Token(ctx context.Context) (string, bool) {
	value, ok, err := s.kv.Get(ctx, storageKey)
	if err != nil {
		slog.WarnContext(ctx, "failed to read session token", "error", err)
		return "", false
	}
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Set stores a freshly issued session token.
func (s *Store) Set(ctx context.Context, tok string) error {
	return s.kv.Set(ctx, storageKey, tok)
}

// Clear removes the stored token. Called on logout and on a 401 answer.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, storageKey)
}

// Valid reports whether a token is present and not past its exp claim.
// The signature is NOT verified here: only the server holds the secret, and
// the point is merely to avoid sending a token the server is guaranteed to
// reject. An expired or undecodable token is cleared as a side effect.
func (s *Store) Valid(ctx context.Context) bool {
	tok, ok := s.Token(ctx)
	if !ok {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		slog.WarnContext(ctx, "stored session token is not a valid JWT, clearing it", "error", err)
		_ = s.Clear(ctx)
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// No exp claim: assume the server will decide.
		return true
	}
	if time.Now().After(exp.Time) {
		slog.InfoContext(ctx, "session token expired, clearing it")
		_ = s.Clear(ctx)
		return false
	}
	return true
}
