// Package service contains the business logic layer: validation, the
// assignment state machine, and the rules around roles and ownership.
// Handlers parse HTTP and delegate here; repositories persist what this
// layer decides.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// MinUsernameLength is the registration floor for usernames.
const MinUsernameLength = 4

// AuthService handles registration and login.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users     repository.UserRepository → the credential store
//   - tokens    *auth.TokenService        → issues identity assertions
//   - passwords *auth.PasswordService     → bcrypt hashing/verification
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult bundles what a successful login returns to the client: the
// signed token and the role flag (so the frontend can route to the right
// dashboard without decoding the token).
type LoginResult struct {
	Token   string `json:"token"`
	IsAdmin bool   `json:"isAdmin"`
}

// Register creates a new account (regular user or admin).
//
// Validation order matches the error a caller sees first: required fields,
// username length, email shape, password policy, then uniqueness. The
// uniqueness pre-check exists to produce a field-specific 409 message; the
// store's UNIQUE constraints backstop it if two registrations race past it.
func (s *AuthService) Register(ctx context.Context, email, username, password string, isAdmin bool) (*model.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)

	if email == "" || username == "" || password == "" {
		return nil, apperror.ValidationFailed("", "email, username, and password are required")
	}
	if len(username) < MinUsernameLength {
		return nil, apperror.ValidationFailed("userName",
			fmt.Sprintf("username must be at least %d characters long", MinUsernameLength))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("userEmail", "invalid email format")
	}
	if err := auth.CheckStrength(password); err != nil {
		return nil, err
	}

	// Field-specific duplicate reporting: the store's constraint error alone
	// can't tell the caller which of the two identifiers collided first.
	existing, err := s.users.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		if existing.Username == username {
			return nil, apperror.Conflict("userName", "username already exists")
		}
		return nil, apperror.Conflict("userEmail", "email already exists")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
		slog.Bool("isAdmin", user.IsAdmin),
	)

	return user, nil
}

// Login verifies the credentials and issues a token embedding the user's ID
// and role.
//
// An unknown email is NotFound (404) while a wrong password is a validation
// failure (400) — distinct on purpose, matching the API's established
// contract.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)

	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", "email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("userEmail", "invalid email format")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.ValidationFailed("password", "invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &LoginResult{Token: token, IsAdmin: user.IsAdmin}, nil
}
