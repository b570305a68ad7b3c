package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/formworks/formworks/adapters/auth"
	"github.com/formworks/formworks/ports"
	"github.com/rs/zerolog"
)

// AuthService verifies admin credentials and issues bearer tokens.
type AuthService struct {
	admins ports.AdminStore
	hasher ports.Hasher
	tokens *auth.TokenService
	clock  ports.Clock
	idgen  ports.IDGenerator
	logger zerolog.Logger
}

// AuthDeps contains dependencies for the auth service.
type AuthDeps struct {
	Admins ports.AdminStore
	Hasher ports.Hasher
	Tokens *auth.TokenService
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(deps AuthDeps) *AuthService {
	return &AuthService{
		admins: deps.Admins,
		hasher: deps.Hasher,
		tokens: deps.Tokens,
		clock:  deps.Clock,
		idgen:  deps.IDGen,
		logger: deps.Logger.With().Str("service", "auth").Logger(),
	}
}

// LoginResult carries a successful login outcome.
type LoginResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"-"`
}

// Login verifies credentials and issues a signed token. Every failure mode
// collapses into ErrUnauthorized so callers cannot probe for usernames.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	admin, err := s.admins.GetByUsername(ctx, strings.ToLower(username))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return LoginResult{}, ErrUnauthorized
		}
		return LoginResult{}, fmt.Errorf("lookup admin: %w", err)
	}

	if !s.hasher.Compare(admin.PasswordHash, password) {
		s.logger.Warn().Str("username", admin.Username).Msg("failed login attempt")
		return LoginResult{}, ErrUnauthorized
	}

	token, expiresAt, err := s.tokens.Generate(admin.Username, admin.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}

	return LoginResult{
		Token:     token,
		Username:  admin.Username,
		ExpiresAt: expiresAt,
	}, nil
}

// Identity is a verified admin identity.
type Identity struct {
	Username string
	ID       string
}

// Verify checks a bearer token and returns the identity it names.
func (s *AuthService) Verify(token string) (Identity, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	return Identity{Username: claims.Username, ID: claims.AdminID}, nil
}

// CreateAdmin stores a new admin account with a hashed password.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password, email string) (ports.Admin, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return ports.Admin{}, NewValidationError(map[string]string{
			"username": "Username and password are required",
		})
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return ports.Admin{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now().UTC()
	admin := ports.Admin{
		ID:           s.idgen.New(),
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return ports.Admin{}, mapStoreErr(err)
	}

	s.logger.Info().Str("username", username).Msg("admin created")
	return admin, nil
}

// Seed creates the bootstrap admin account if it does not exist yet.
func (s *AuthService) Seed(ctx context.Context, username, password, email string) error {
	username = strings.ToLower(strings.TrimSpace(username))

	_, err := s.admins.GetByUsername(ctx, username)
	if err == nil {
		return nil // already seeded
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return fmt.Errorf("check admin: %w", err)
	}

	if _, err := s.CreateAdmin(ctx, username, password, email); err != nil {
		return err
	}
	s.logger.Info().Str("username", username).Msg("seeded bootstrap admin")
	return nil
}
