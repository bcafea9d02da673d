package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jcmexdev/partsmarket/internal/catalogapi/auth"
	"github.com/jcmexdev/partsmarket/internal/catalogapi/domain"
	"github.com/jcmexdev/partsmarket/internal/catalogapi/httpx/middlewares"
	"github.com/jcmexdev/partsmarket/internal/catalogapi/storage"
)

// Handler handles incoming HTTP requests for accounts and the parts catalog.
type Handler struct {
	repo   storage.Repository
	issuer *auth.Issuer
}

// NewHandler initializes the handler with its repository and token issuer.
func NewHandler(repo storage.Repository, issuer *auth.Issuer) *Handler {
	return &Handler{repo: repo, issuer: issuer}
}

// Register creates a buyer or store-owner account and returns a signed token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}
	if req.UserType == "store" && req.StoreName == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "storeName is required for store accounts")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not process password")
		return
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.repo.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "username_taken", "Username already exists")
			return
		}
		slog.ErrorContext(r.Context(), "failed to create user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not create account")
		return
	}

	if req.UserType == "store" {
		store := &domain.Store{
			ID:          uuid.NewString(),
			Name:        req.StoreName,
			Address:     req.Address,
			Phone:       req.Phone,
			Description: req.Description,
			UserID:      user.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := h.repo.CreateStore(r.Context(), store); err != nil {
			slog.ErrorContext(r.Context(), "failed to create store", "user_id", user.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "could not create store")
			return
		}
		user.Store = store
	}

	token, err := h.signFor(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not issue token")
		return
	}

	slog.InfoContext(r.Context(), "account registered", "user_id", user.ID, "store", user.Store != nil)

	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    mapUserToResponse(user),
	})
}

// Login checks credentials and returns a fresh token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	user, err := h.repo.UserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
			return
		}
		slog.ErrorContext(r.Context(), "failed to load user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not log in")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
		return
	}

	token, err := h.signFor(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    mapUserToResponse(user),
	})
}

// Profile returns the authenticated account, including its store when present.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middlewares.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	user, err := h.repo.UserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user_not_found", "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "could not load profile")
		return
	}

	writeJSON(w, http.StatusOK, mapUserToResponse(user))
}

// ListPublicParts returns available parts, optionally narrowed by filters.
func (h *Handler) ListPublicParts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.PartFilter{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Model:    q.Get("model"),
		Year:     q.Get("year"),
		Search:   q.Get("search"),
	}

	parts, err := h.repo.PublicParts(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list public parts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not list parts")
		return
	}

	writeJSON(w, http.StatusOK, mapPartsToResponse(parts))
}

// ListStoreParts returns every part owned by the caller's store.
func (h *Handler) ListStoreParts(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.storeClaims(w, r)
	if !ok {
		return
	}

	parts, err := h.repo.StoreParts(r.Context(), claims.StoreID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list store parts", "store_id", claims.StoreID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not list parts")
		return
	}

	writeJSON(w, http.StatusOK, mapPartsToResponse(parts))
}

// GetPart returns one part from the caller's store.
func (h *Handler) GetPart(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.storeClaims(w, r)
	if !ok {
		return
	}

	part, err := h.repo.PartByID(r.Context(), chi.URLParam(r, "id"), claims.StoreID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "part_not_found", "Part not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "could not load part")
		return
	}

	writeJSON(w, http.StatusOK, mapPartToResponse(part))
}

// CreatePart adds a part to the caller's store.
func (h *Handler) CreatePart(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.storeClaims(w, r)
	if !ok {
		return
	}

	var req PartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Name == "" || req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "name and a positive price are required")
		return
	}

	now := time.Now().UTC()
	part := &domain.Part{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		ImageURL:      req.ImageURL,
		IsAvailable:   true,
		Category:      req.Category,
		Brand:         req.Brand,
		Model:         req.Model,
		Year:          req.Year,
		StoreID:       claims.StoreID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.IsAvailable != nil {
		part.IsAvailable = *req.IsAvailable
	}

	if err := h.repo.CreatePart(r.Context(), part); err != nil {
		slog.ErrorContext(r.Context(), "failed to create part", "store_id", claims.StoreID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not create part")
		return
	}

	slog.InfoContext(r.Context(), "part created", "part_id", part.ID, "store_id", claims.StoreID)

	writeJSON(w, http.StatusCreated, PartEnvelope{
		Message: "Part created successfully",
		Part:    mapPartToResponse(part),
	})
}

// UpdatePart applies a partial update to a part in the caller's store.
func (h *Handler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.storeClaims(w, r)
	if !ok {
		return
	}

	var patch PartPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	part, err := h.repo.PartByID(r.Context(), chi.URLParam(r, "id"), claims.StoreID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "part_not_found", "Part not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "could not load part")
		return
	}

	applyPatch(part, &patch)
	part.UpdatedAt = time.Now().UTC()

	if err := h.repo.UpdatePart(r.Context(), part); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "part_not_found", "Part not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to update part", "part_id", part.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not update part")
		return
	}

	writeJSON(w, http.StatusOK, PartEnvelope{
		Message: "Part updated successfully",
		Part:    mapPartToResponse(part),
	})
}

// DeletePart removes a part from the caller's store.
func (h *Handler) DeletePart(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.storeClaims(w, r)
	if !ok {
		return
	}

	err := h.repo.DeletePart(r.Context(), chi.URLParam(r, "id"), claims.StoreID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "part_not_found", "Part not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete part", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not delete part")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// storeClaims extracts the caller's claims and rejects accounts without a
// store, since the catalog CRUD endpoints are store-owner only.
func (h *Handler) storeClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := middlewares.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return nil, false
	}
	if claims.StoreID == "" {
		writeError(w, http.StatusForbidden, "store_required", "Only store accounts can manage parts")
		return nil, false
	}
	return claims, true
}

func (h *Handler) signFor(user *domain.User) (string, error) {
	storeID := ""
	if user.Store != nil {
		storeID = user.Store.ID
	}
	return h.issuer.Sign(user.ID, storeID, user.IsAdmin)
}

func applyPatch(part *domain.Part, patch *PartPatch) {
	if patch.Name != nil {
		part.Name = *patch.Name
	}
	if patch.Description != nil {
		part.Description = *patch.Description
	}
	if patch.Price != nil {
		part.Price = *patch.Price
	}
	if patch.DiscountPrice != nil {
		part.DiscountPrice = *patch.DiscountPrice
	}
	if patch.ImageURL != nil {
		part.ImageURL = *patch.ImageURL
	}
	if patch.IsAvailable != nil {
		part.IsAvailable = *patch.IsAvailable
	}
	if patch.Category != nil {
		part.Category = *patch.Category
	}
	if patch.Brand != nil {
		part.Brand = *patch.Brand
	}
	if patch.Model != nil {
		part.Model = *patch.Model
	}
	if patch.Year != nil {
		part.Year = *patch.Year
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
