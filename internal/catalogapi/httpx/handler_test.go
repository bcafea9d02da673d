package httpx_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jcmexdev/partsmarket/internal/catalogapi/auth"
	"github.com/jcmexdev/partsmarket/internal/catalogapi/httpx"
	"github.com/jcmexdev/partsmarket/internal/catalogapi/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	issuer := auth.NewIssuer("test-secret", time.Hour)
	srv := httptest.NewServer(httpx.NewRouter(httpx.NewHandler(repo, issuer), issuer))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerStore(t *testing.T, srv *httptest.Server, username string) httpx.AuthResponse {
	t.Helper()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"username":  username,
		"password":  "s3cret",
		"userType":  "store",
		"storeName": username + " Auto Parts",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[httpx.AuthResponse](t, resp)
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	reg := registerStore(t, srv, "garage")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "garage", reg.User.Username)
	require.NotNil(t, reg.User.Store)
	assert.Equal(t, "garage Auto Parts", reg.User.Store.Name)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"username": "garage",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decodeBody[httpx.AuthResponse](t, resp)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "Login successful", login.Message)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	registerStore(t, srv, "garage")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"username": "garage",
		"password": "other",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody[httpx.ErrorResponse](t, resp)
	assert.Equal(t, "Username already exists", body.Message)
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := newTestServer(t)
	registerStore(t, srv, "garage")

	for _, creds := range []map[string]string{
		{"username": "garage", "password": "wrong"},
		{"username": "nobody", "password": "s3cret"},
	} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestProfileIncludesStore(t *testing.T) {
	srv := newTestServer(t)
	reg := registerStore(t, srv, "garage")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/auth/profile", reg.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	profile := decodeBody[httpx.UserResponse](t, resp)
	assert.Equal(t, "garage", profile.Username)
	require.NotNil(t, profile.Store)
	assert.Equal(t, reg.User.Store.ID, profile.Store.ID)
}

func TestProfileRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/auth/profile", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPartLifecycle(t *testing.T) {
	srv := newTestServer(t)
	reg := registerStore(t, srv, "garage")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/parts", reg.Token, map[string]any{
		"name":     "Brake pads",
		"price":    49.99,
		"category": "brakes",
		"brand":    "Toyota",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[httpx.PartEnvelope](t, resp)
	assert.Equal(t, "Part created successfully", created.Message)
	assert.True(t, created.Part.IsAvailable)
	partID := created.Part.ID
	require.NotEmpty(t, partID)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/parts/store", reg.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := decodeBody[[]httpx.PartResponse](t, resp)
	require.Len(t, listed, 1)
	assert.Equal(t, partID, listed[0].ID)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/parts/"+partID, reg.Token, map[string]any{
		"price":         59.99,
		"discountPrice": 44.99,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decodeBody[httpx.PartEnvelope](t, resp)
	assert.Equal(t, 59.99, updated.Part.Price)
	assert.Equal(t, 44.99, updated.Part.DiscountPrice)
	assert.Equal(t, "Brake pads", updated.Part.Name)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/parts/"+partID, reg.Token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/parts/"+partID, reg.Token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPublicListingFilters(t *testing.T) {
	srv := newTestServer(t)
	reg := registerStore(t, srv, "garage")

	seed := []map[string]any{
		{"name": "Brake pads", "price": 49.99, "category": "brakes", "brand": "Toyota", "model": "Corolla"},
		{"name": "Oil filter", "price": 9.99, "category": "engine", "brand": "Honda", "model": "Civic"},
		{"name": "Hidden part", "price": 5.0, "isAvailable": false},
	}
	for _, p := range seed {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/parts", reg.Token, p)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/parts/public", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decodeBody[[]httpx.PartResponse](t, resp)
	assert.Len(t, all, 2, "unavailable parts stay hidden")

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/parts/public?brand=Toyota", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	toyota := decodeBody[[]httpx.PartResponse](t, resp)
	require.Len(t, toyota, 1)
	assert.Equal(t, "Brake pads", toyota[0].Name)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/parts/public?search=filter", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	searched := decodeBody[[]httpx.PartResponse](t, resp)
	require.Len(t, searched, 1)
	assert.Equal(t, "Oil filter", searched[0].Name)
}

func TestPartsAreStoreScoped(t *testing.T) {
	srv := newTestServer(t)
	alice := registerStore(t, srv, "alice")
	bob := registerStore(t, srv, "bob")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/parts", alice.Token, map[string]any{
		"name":  "Radiator",
		"price": 120.0,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[httpx.PartEnvelope](t, resp)

	// Another store cannot see, update, or delete the part.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/parts/"+created.Part.ID, bob.Token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/parts/"+created.Part.ID, bob.Token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBuyerCannotManageParts(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"username": "buyer",
		"password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	buyer := decodeBody[httpx.AuthResponse](t, resp)
	assert.Nil(t, buyer.User.Store)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/parts", buyer.Token, map[string]any{
		"name":  "Spark plug",
		"price": 3.5,
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
