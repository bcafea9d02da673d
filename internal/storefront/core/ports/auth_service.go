package ports

import (
	"context"

	"github.com/jcmexdev/partsmarket/internal/storefront/core/domain/entity"
)

// AuthService is the port to the marketplace auth API. Register and Login
// persist the returned session token so subsequent authenticated calls can
// pick it up.
type AuthService interface {
	Register(ctx context.Context, reg entity.Registration) (*entity.AuthSession, error)
	Login(ctx context.Context, username, password string) (*entity.AuthSession, error)
	Profile(ctx context.Context) (*entity.User, error)
	// Logout discards the stored session token. Purely local.
	Logout(ctx context.Context) error
}
