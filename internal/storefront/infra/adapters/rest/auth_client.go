package rest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/partsmarket/internal/pkg/apiclient"
	"github.com/jcmexdev/partsmarket/internal/pkg/token"
	"github.com/jcmexdev/partsmarket/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/partsmarket/internal/storefront/core/ports"
)

// Auth endpoints, relative to the API base URL.
const (
	pathAuthRegister = "/auth/register"
	pathAuthLogin    = "/auth/login"
	pathAuthProfile  = "/auth/profile"
)

// AuthClient is the REST adapter for ports.AuthService. On successful
// register/login the returned token is written to the token store so every
// later WithAuth call picks it up.
type AuthClient struct {
	api    *apiclient.Client
	tokens *token.Store
}

var _ ports.AuthService = (*AuthClient)(nil)

func NewAuthClient(api *apiclient.Client, tokens *token.Store) *AuthClient {
	return &AuthClient{api: api, tokens: tokens}
}

// authEnvelope matches the register/login response shape.
type authEnvelope struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    entity.User `json:"user"`
}

func (c *AuthClient) Register(ctx context.Context, reg entity.Registration) (*entity.AuthSession, error) {
	var env authEnvelope
	if err := c.api.Post(ctx, pathAuthRegister, reg, &env); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	c.saveToken(ctx, env.Token)
	return &entity.AuthSession{Token: env.Token, User: env.User}, nil
}

func (c *AuthClient) Login(ctx context.Context, username, password string) (*entity.AuthSession, error) {
	body := map[string]string{"username": username, "password": password}

	var env authEnvelope
	if err := c.api.Post(ctx, pathAuthLogin, body, &env); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.saveToken(ctx, env.Token)
	return &entity.AuthSession{Token: env.Token, User: env.User}, nil
}

func (c *AuthClient) Profile(ctx context.Context) (*entity.User, error) {
	var user entity.User
	if err := c.api.Get(ctx, pathAuthProfile, &user, apiclient.WithAuth()); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return &user, nil
}

func (c *AuthClient) Logout(ctx context.Context) error {
	if err := c.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (c *AuthClient) saveToken(ctx context.Context, tok string) {
	if tok == "" {
		slog.WarnContext(ctx, "auth response carried no session token")
		return
	}
	if err := c.tokens.Set(ctx, tok); err != nil {
		slog.WarnContext(ctx, "failed to persist session token", "error", err)
	}
}
