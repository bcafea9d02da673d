package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/partsmarket/internal/pkg/apiclient"
	"github.com/jcmexdev/partsmarket/internal/pkg/kvstore"
	"github.com/jcmexdev/partsmarket/internal/pkg/token"
	"github.com/jcmexdev/partsmarket/internal/storefront/core/domain/entity"
)

func newClient(t *testing.T, baseURL string, tokens *token.Store) *apiclient.Client {
	t.Helper()

	cfg := apiclient.Config{
		BaseURL:      baseURL,
		MaxRetries:   1,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
	}
	if tokens != nil {
		cfg.Tokens = tokens
	}
	c, err := apiclient.New(cfg)
	require.NoError(t, err)
	return c
}

func TestCatalogClient_ListPublicBuildsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/parts/public", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode([]entity.Part{{ID: "p1", Name: "Brake Pad", Price: 49.99}})
	}))
	defer srv.Close()

	catalog := NewCatalogClient(newClient(t, srv.URL, nil))

	parts, err := catalog.ListPublic(context.Background(), entity.PartFilter{
		Category: "brakes",
		Brand:    "Brembo",
		Search:   "ceramic",
	})

	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "Brake Pad", parts[0].Name)
	assert.Equal(t, "brand=Brembo&category=brakes&search=ceramic", gotQuery)
}

func TestCatalogClient_ListPublicOmitsEmptyFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_ = json.NewEncoder(w).Encode([]entity.Part{})
	}))
	defer srv.Close()

	catalog := NewCatalogClient(newClient(t, srv.URL, nil))

	parts, err := catalog.ListPublic(context.Background(), entity.PartFilter{})
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestCatalogClient_CreateUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/parts", r.URL.Path)
		assert.Equal(t, "Bearer seller-jwt", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Part created successfully","part":{"id":"p9","name":"Alternator","price":220}}`))
	}))
	defer srv.Close()

	tokens := token.New(kvstore.NewMemory())
	require.NoError(t, tokens.Set(context.Background(), "seller-jwt"))
	catalog := NewCatalogClient(newClient(t, srv.URL, tokens))

	part, err := catalog.Create(context.Background(), entity.PartInput{Name: "Alternator", Price: 220})

	require.NoError(t, err)
	assert.Equal(t, "p9", part.ID)
	assert.Equal(t, "Alternator", part.Name)
}

func TestCatalogClient_DeleteNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/parts/p9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tokens := token.New(kvstore.NewMemory())
	require.NoError(t, tokens.Set(context.Background(), "seller-jwt"))
	catalog := NewCatalogClient(newClient(t, srv.URL, tokens))

	require.NoError(t, catalog.Delete(context.Background(), "p9"))
}

func TestCatalogClient_GetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Part not found"}`))
	}))
	defer srv.Close()

	catalog := NewCatalogClient(newClient(t, srv.URL, token.New(kvstore.NewMemory())))

	_, err := catalog.Get(context.Background(), "ghost")

	require.Error(t, err)
	assert.Equal(t, apiclient.KindNotFound, apiclient.KindOf(err))
}

func TestAuthClient_LoginPersistsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "kai", body["username"])

		_, _ = w.Write([]byte(`{"message":"ok","token":"fresh-jwt","user":{"id":"u1","username":"kai"}}`))
	}))
	defer srv.Close()

	tokens := token.New(kvstore.NewMemory())
	auth := NewAuthClient(newClient(t, srv.URL, tokens), tokens)

	session, err := auth.Login(context.Background(), "kai", "hunter2")

	require.NoError(t, err)
	assert.Equal(t, "fresh-jwt", session.Token)
	assert.Equal(t, "kai", session.User.Username)

	stored, ok := tokens.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "fresh-jwt", stored)
}

func TestAuthClient_LogoutClearsToken(t *testing.T) {
	ctx := context.Background()
	tokens := token.New(kvstore.NewMemory())
	require.NoError(t, tokens.Set(ctx, "jwt"))

	auth := NewAuthClient(newClient(t, "http://api.local", tokens), tokens)

	require.NoError(t, auth.Logout(ctx))
	_, ok := tokens.Token(ctx)
	assert.False(t, ok)
}

func TestAuthClient_ProfileUnauthorizedDropsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid token"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	tokens := token.New(kvstore.NewMemory())
	require.NoError(t, tokens.Set(ctx, "stale-jwt"))
	auth := NewAuthClient(newClient(t, srv.URL, tokens), tokens)

	_, err := auth.Profile(ctx)

	require.Error(t, err)
	assert.Equal(t, apiclient.KindUnauthorized, apiclient.KindOf(err))
	_, ok := tokens.Token(ctx)
	assert.False(t, ok, "401 must invalidate the stored token")
}
