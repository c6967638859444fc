// Package auth provides JWT token handling, password hashing, and the HTTP
// gates that turn a bearer credential into a verified principal.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User registers with email/username/password (bcrypt hash stored)
// 2. User logs in → server issues a signed JWT embedding {userID, isAdmin}
// 3. On subsequent calls the client sends "Authorization: Bearer <token>"
// 4. Middleware validates the token and places a model.Principal in the
//    request context; admin-only routes add a role check on top
//
// WHY JWT?
// The token is stateless — the server needs no session storage. Everything a
// request needs (user ID, role, expiry) is inside the signed payload, and the
// HMAC signature ensures nobody can tamper with it without the secret key.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
)

const issuer = "taskboard"

// tokenTTL is the fixed lifetime of an access token.
//
// ROLE STALENESS TRADE-OFF:
// The isAdmin claim is baked in at issuance rather than re-fetched from the
// store on every request. A role change therefore takes effect only when the
// holder's token expires or is reissued — acceptable with a one-hour ceiling,
// and it keeps authenticated calls free of any extra store lookup.
const tokenTTL = time.Hour

// TokenService signs and verifies the identity assertions bound to each
// request. It holds the HMAC secret used for both operations; the service is
// stateless and safe for concurrent use.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload: the standard registered claims plus the role
// flag. The user ID travels in "sub" (Subject), the standard claim for who
// the token belongs to.
type claims struct {
	IsAdmin bool `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Generate creates and signs an access token for the given user.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and sufficient
// for a single-service deployment where issuer and verifier share a secret.
func (s *TokenService) Generate(userID string, isAdmin bool) (string, error) {
	return s.GenerateWithDuration(userID, isAdmin, tokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used by tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, isAdmin bool, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the principal it
// encodes. Every failure — bad signature, malformed payload, wrong issuer,
// missing or elapsed expiry — comes back as apperror.ErrInvalidCredential so
// the HTTP layer maps them all to one response.
//
// Only fields bound by the signature are trusted; nothing is read from the
// token before verification succeeds.
//
// ALGORITHM CONFUSION:
// jwt.WithValidMethods pins the accepted algorithm to HS256 so a token signed
// with "none" (or an attacker-chosen asymmetric scheme) is rejected outright.
func (s *TokenService) Validate(tokenStr string) (model.Principal, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Principal{}, apperror.InvalidCredential("token expired")
		}
		return model.Principal{}, apperror.InvalidCredential("invalid token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return model.Principal{}, apperror.InvalidCredential("invalid token claims")
	}
	if c.Subject == "" {
		return model.Principal{}, apperror.InvalidCredential("token has no subject")
	}

	return model.Principal{UserID: c.Subject, IsAdmin: c.IsAdmin}, nil
}
