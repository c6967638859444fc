// Package repository defines the storage contracts consumed by the service
// layer. Services depend on these interfaces, never on the concrete SQLite
// types — tests inject in-memory mocks, and the backend can be swapped
// without touching business logic.
package repository

import (
	"context"

	"github.com/sakif/taskboard/internal/model"
)

// UserRepository is the credential store: identity records with
// uniqueness-checked insert and the lookups the auth and assignment flows
// need.
type UserRepository interface {
	// Insert stores a new user, generating ID and timestamps. A duplicate
	// email or username surfaces as apperror.ErrConflict with the offending
	// field set.
	Insert(ctx context.Context, user *model.User) error

	// FindByEmail returns the user with the given email, or
	// apperror.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByEmailOrUsername returns a user matching either identifier, used
	// by registration to report which field collides. Returns
	// apperror.ErrNotFound when neither matches.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error)

	// FindByUsername returns the user with the given username. With
	// adminOnly set, a matching non-admin row is treated as not found.
	FindByUsername(ctx context.Context, username string, adminOnly bool) (*model.User, error)

	// ListAdmins returns the usernames of all admin users in insertion order.
	ListAdmins(ctx context.Context) ([]string, error)
}

// AssignmentRepository is the assignment store. The natural uniqueness key is
// the triple (submitter, task, admin); the implementation must guarantee
// at-most-one winning writer for concurrent creates on the same triple.
type AssignmentRepository interface {
	// Create stores a new assignment, generating ID and timestamps. Losing a
	// race on the uniqueness triple surfaces as apperror.ErrConflict — a
	// retryable condition, never a silent duplicate.
	Create(ctx context.Context, a *model.Assignment) error

	// GetByID returns the assignment with the given ID, or
	// apperror.ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.Assignment, error)

	// FindByTriple returns the assignment keyed by (submitter, task, admin),
	// or apperror.ErrNotFound.
	FindByTriple(ctx context.Context, submitterID, task, adminID string) (*model.Assignment, error)

	// UpdateTask rewrites the task text of a Pending assignment and bumps
	// its updated timestamp. A decided assignment is never touched.
	UpdateTask(ctx context.Context, id, task string) error

	// UpdateStatus transitions the assignment to the given status.
	UpdateStatus(ctx context.Context, id string, status model.Status) error

	// ListForAdmin returns every assignment addressed to the given admin,
	// each joined with the submitter's username, ordered by creation time.
	ListForAdmin(ctx context.Context, adminID string) ([]model.AssignmentWithSubmitter, error)
}
