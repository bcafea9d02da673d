package httpx

import (
	"time"

	"github.com/jcmexdev/partsmarket/internal/catalogapi/domain"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
	UserType string `json:"userType,omitempty"` // "buyer" (default) or "store"

	StoreName   string `json:"storeName,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Description string `json:"description,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	Email     string         `json:"email,omitempty"`
	IsAdmin   bool           `json:"isAdmin"`
	Store     *StoreResponse `json:"store,omitempty"`
	CreatedAt string         `json:"createdAt,omitempty"`
	UpdatedAt string         `json:"updatedAt,omitempty"`
}

type StoreResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Description string `json:"description,omitempty"`
}

type PartRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	DiscountPrice float64 `json:"discountPrice,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	IsAvailable   *bool   `json:"isAvailable,omitempty"`
	Category      string  `json:"category,omitempty"`
	Brand         string  `json:"brand,omitempty"`
	Model         string  `json:"model,omitempty"`
	Year          string  `json:"year,omitempty"`
}

// PartPatch is the partial-update payload: nil fields are left untouched.
type PartPatch struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`
	ImageURL      *string  `json:"imageUrl,omitempty"`
	IsAvailable   *bool    `json:"isAvailable,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Brand         *string  `json:"brand,omitempty"`
	Model         *string  `json:"model,omitempty"`
	Year          *string  `json:"year,omitempty"`
}

type PartResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	DiscountPrice float64 `json:"discountPrice,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	IsAvailable   bool    `json:"isAvailable"`
	Category      string  `json:"category,omitempty"`
	Brand         string  `json:"brand,omitempty"`
	Model         string  `json:"model,omitempty"`
	Year          string  `json:"year,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// PartEnvelope wraps a part with a human-readable message for create/update
// responses.
type PartEnvelope struct {
	Message string       `json:"message"`
	Part    PartResponse `json:"part"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func mapUserToResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IsAdmin:   user.IsAdmin,
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
	if user.Store != nil {
		resp.Store = &StoreResponse{
			ID:          user.Store.ID,
			Name:        user.Store.Name,
			Address:     user.Store.Address,
			Phone:       user.Store.Phone,
			Description: user.Store.Description,
		}
	}
	return resp
}

func mapPartToResponse(part *domain.Part) PartResponse {
	return PartResponse{
		ID:            part.ID,
		Name:          part.Name,
		Description:   part.Description,
		Price:         part.Price,
		DiscountPrice: part.DiscountPrice,
		ImageURL:      part.ImageURL,
		IsAvailable:   part.IsAvailable,
		Category:      part.Category,
		Brand:         part.Brand,
		Model:         part.Model,
		Year:          part.Year,
		CreatedAt:     formatTime(part.CreatedAt),
		UpdatedAt:     formatTime(part.UpdatedAt),
	}
}

func mapPartsToResponse(parts []domain.Part) []PartResponse {
	out := make([]PartResponse, len(parts))
	for i := range parts {
		out[i] = mapPartToResponse(&parts[i])
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
