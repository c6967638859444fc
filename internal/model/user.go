// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account — a regular submitter or an admin.
//
// PasswordHash holds the bcrypt hash produced at registration; the raw
// password is never stored. The `json:"-"` tag keeps the hash out of every
// JSON response no matter which handler serializes a User.
//
// WHY A BOOLEAN ROLE FLAG?
// The system has exactly two roles: regular users submit assignments, admins
// decide them. A bool is the simplest representation that covers both; if a
// third role ever appears this becomes a string enum, but not before.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"userEmail" db:"email"`    // globally unique
	Username     string    `json:"userName"  db:"username"` // globally unique, >= 4 chars
	PasswordHash string    `json:"-"         db:"password_hash"`
	IsAdmin      bool      `json:"isAdmin"   db:"is_admin"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Principal is the verified identity derived from a request's bearer token.
//
// It carries only what the token cryptographically binds: the user ID and the
// role flag. It is never persisted — its lifetime is a single request, held
// in the request context by the auth middleware.
//
// ROLE STALENESS:
// IsAdmin reflects the user's role at token issuance, not at request time.
// A demotion takes effect only once the holder's token expires (one hour at
// most) and a fresh one is issued. This is a deliberate trade: zero store
// lookups per authenticated call in exchange for bounded staleness.
type Principal struct {
	UserID  string
	IsAdmin bool
}
