package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, username, password_hash, is_admin, created_at, updated_at`

// Insert stores a new user. The UNIQUE constraints on email and username are
// the last line of defence: the service pre-checks for duplicates to produce
// a field-specific message, but two concurrent registrations can both pass
// that check, and only one may win here.
func (db *DB) Insert(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, username, password_hash, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.IsAdmin,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return apperror.Conflict("userEmail", "email already exists")
		}
		if isUniqueViolation(err, "users.username") {
			return apperror.Conflict("userName", "username already exists")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Username, err)
	}

	return nil
}

// FindByEmail returns the user with the given email.
func (db *DB) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	), email)
}

// FindByEmailOrUsername returns a user matching either identifier.
// Registration uses this to tell the caller which field already exists.
func (db *DB) FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? OR username = ? LIMIT 1`,
		email, username,
	), email)
}

// FindByUsername returns the user with the given username. With adminOnly
// set, a non-admin row with that username is reported as not found — the
// caller is resolving an admin reference, and a regular user of the same
// name must not satisfy it.
func (db *DB) FindByUsername(ctx context.Context, username string, adminOnly bool) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	args := []any{username}
	if adminOnly {
		query += ` AND is_admin = 1`
	}
	return db.scanUser(db.conn.QueryRowContext(ctx, query, args...), username)
}

// ListAdmins returns the usernames of all admins, oldest account first.
func (db *DB) ListAdmins(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT username FROM users WHERE is_admin = 1 ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing admins: %w", err)
	}
	defer rows.Close()

	usernames := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning admin row: %w", err)
		}
		usernames = append(usernames, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating admins: %w", err)
	}

	return usernames, nil
}

// scanUser reads one user row, translating sql.ErrNoRows into the domain's
// NotFound. The ident argument only feeds the error message.
func (db *DB) scanUser(row *sql.Row, ident string) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", ident)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", ident, err)
	}
	return &u, nil
}
