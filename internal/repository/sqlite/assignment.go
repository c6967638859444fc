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

// compile-time check that *DB implements repository.AssignmentRepository
var _ repository.AssignmentRepository = (*DB)(nil)

const assignmentColumns = `id, submitter_id, admin_id, task, status, created_at, updated_at`

// Create stores a new Pending assignment.
//
// UPSERT RACE:
// The service checks FindByTriple before calling Create, but two concurrent
// submits for the same (submitter, task, admin) can both observe "not found".
// The UNIQUE index on the triple then lets exactly one INSERT through; the
// loser comes back as a retryable conflict rather than a duplicate row.
func (db *DB) Create(ctx context.Context, a *model.Assignment) error {
	now := time.Now()
	a.ID = xid.New().String()
	a.Status = model.StatusPending
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO assignments (id, submitter_id, admin_id, task, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.SubmitterID,
		a.AdminID,
		a.Task,
		a.Status,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return apperror.Conflict("task", "assignment already exists for this task and admin")
		}
		return fmt.Errorf("sqlite: creating assignment: %w", err)
	}

	return nil
}

// GetByID returns the assignment with the given ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	return db.scanAssignment(db.conn.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id,
	), id)
}

// FindByTriple returns the assignment keyed by the natural uniqueness triple.
func (db *DB) FindByTriple(ctx context.Context, submitterID, task, adminID string) (*model.Assignment, error) {
	return db.scanAssignment(db.conn.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments
		 WHERE submitter_id = ? AND task = ? AND admin_id = ?`,
		submitterID, task, adminID,
	), task)
}

// UpdateTask rewrites the task text of a Pending assignment.
//
// The status guard is in the SQL itself, so even a caller that raced past the
// service-level terminal check cannot touch a decided record: the UPDATE
// simply matches no rows and reports not found.
func (db *DB) UpdateTask(ctx context.Context, id, task string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE assignments SET task = ?, updated_at = ? WHERE id = ? AND status = ?`,
		task, time.Now(), id, model.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating assignment %s: %w", id, err)
	}
	return checkAffected(result, id)
}

// UpdateStatus transitions the assignment to the given status.
func (db *DB) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE assignments SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating assignment %s status: %w", id, err)
	}
	return checkAffected(result, id)
}

// ListForAdmin returns every assignment addressed to the given admin, each
// joined with the submitter's username, oldest first.
func (db *DB) ListForAdmin(ctx context.Context, adminID string) ([]model.AssignmentWithSubmitter, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT a.id, a.submitter_id, a.admin_id, a.task, a.status,
		        a.created_at, a.updated_at, u.username
		 FROM assignments a
		 JOIN users u ON u.id = a.submitter_id
		 WHERE a.admin_id = ?
		 ORDER BY a.created_at, a.id`,
		adminID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing assignments for admin %s: %w", adminID, err)
	}
	defer rows.Close()

	assignments := []model.AssignmentWithSubmitter{}
	for rows.Next() {
		var a model.AssignmentWithSubmitter
		if err := rows.Scan(
			&a.ID, &a.SubmitterID, &a.AdminID, &a.Task, &a.Status,
			&a.CreatedAt, &a.UpdatedAt, &a.SubmitterUsername,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning assignment row: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating assignments: %w", err)
	}

	return assignments, nil
}

// scanAssignment reads one assignment row, translating sql.ErrNoRows into
// the domain's NotFound.
func (db *DB) scanAssignment(row *sql.Row, ident string) (*model.Assignment, error) {
	var a model.Assignment
	err := row.Scan(
		&a.ID,
		&a.SubmitterID,
		&a.AdminID,
		&a.Task,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("assignment", ident)
		}
		return nil, fmt.Errorf("sqlite: getting assignment %s: %w", ident, err)
	}
	if !a.Status.Valid() {
		return nil, fmt.Errorf("sqlite: assignment %s has unknown status %q", ident, a.Status)
	}
	return &a, nil
}

// checkAffected turns a zero-row UPDATE into NotFound.
func checkAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("assignment", id)
	}
	return nil
}
