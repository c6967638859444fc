package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// viewTimeLayout renders timestamps for the admin listing: dd/mm/yyyy with a
// 12-hour clock, e.g. "02/01/2026, 03:04:05 pm".
const viewTimeLayout = "02/01/2006, 03:04:05 pm"

// AssignmentService is the state machine governing assignment creation,
// idempotent re-submission, and terminal status transitions.
type AssignmentService struct {
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	logger      *slog.Logger
}

// NewAssignmentService creates an AssignmentService.
func NewAssignmentService(
	assignments repository.AssignmentRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *AssignmentService {
	return &AssignmentService{
		assignments: assignments,
		users:       users,
		logger:      logger,
	}
}

// SubmitResult is the tagged outcome of a Submit call. Created distinguishes
// a fresh Pending record from an idempotent update of an existing one — the
// handler maps the two to 201 and 200 with different messages.
type SubmitResult struct {
	ID      string
	Created bool
}

// Submit is an idempotent upsert keyed by (submitter, task, admin):
//
//  1. Resolve the admin by username; a missing or non-admin user is NotFound.
//  2. Reject self-assignment — an admin may not submit a task to themself.
//  3. If the triple already exists:
//     - terminal status → the record is immutable, fail without touching it
//     - Pending → rewrite the task text in place and report Updated
//  4. Otherwise create a fresh Pending record and report Created.
//
// Re-submitting the same triple before a decision is therefore a
// no-op-equivalent update, never a duplicate. Two concurrent submits that
// both reach step 4 are serialized by the store's UNIQUE index — the loser
// gets a retryable conflict.
func (s *AssignmentService) Submit(ctx context.Context, submitterID, task, adminUsername string) (*SubmitResult, error) {
	task = strings.TrimSpace(task)
	adminUsername = strings.TrimSpace(adminUsername)

	if task == "" || adminUsername == "" {
		return nil, apperror.ValidationFailed("", "task name and admin name are required")
	}

	admin, err := s.users.FindByUsername(ctx, adminUsername, true)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("admin", adminUsername)
		}
		return nil, err
	}

	if submitterID == admin.ID {
		return nil, apperror.Forbidden("you cannot upload an assignment for yourself")
	}

	existing, err := s.assignments.FindByTriple(ctx, submitterID, task, admin.ID)
	switch {
	case err == nil:
		if existing.Status.Terminal() {
			return nil, apperror.TerminalState("cannot update an assignment that is already accepted or rejected")
		}
		// The task text equals the key today, but the update path is the
		// idempotent re-submission contract: same triple, same record.
		if err := s.assignments.UpdateTask(ctx, existing.ID, task); err != nil {
			return nil, err
		}
		s.logger.Info("assignment re-submitted",
			slog.String("assignmentID", existing.ID),
			slog.String("submitterID", submitterID),
		)
		return &SubmitResult{ID: existing.ID, Created: false}, nil

	case errors.Is(err, apperror.ErrNotFound):
		a := &model.Assignment{
			SubmitterID: submitterID,
			AdminID:     admin.ID,
			Task:        task,
		}
		if err := s.assignments.Create(ctx, a); err != nil {
			return nil, err
		}
		s.logger.Info("assignment created",
			slog.String("assignmentID", a.ID),
			slog.String("submitterID", submitterID),
			slog.String("adminUsername", adminUsername),
		)
		return &SubmitResult{ID: a.ID, Created: true}, nil

	default:
		return nil, err
	}
}

// ListForAdmin returns the assignments addressed to the given admin, each
// carrying the submitter's username and display-formatted timestamps.
func (s *AssignmentService) ListForAdmin(ctx context.Context, adminID string) ([]model.AssignmentView, error) {
	rows, err := s.assignments.ListForAdmin(ctx, adminID)
	if err != nil {
		s.logger.Error("failed to list assignments",
			slog.String("adminID", adminID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	views := make([]model.AssignmentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, model.AssignmentView{
			TaskID:    row.ID,
			Task:      row.Task,
			Username:  row.SubmitterUsername,
			Status:    row.Status,
			CreatedAt: row.CreatedAt.Format(viewTimeLayout),
			UpdatedAt: row.UpdatedAt.Format(viewTimeLayout),
		})
	}

	return views, nil
}

// Decide transitions an assignment to Accepted or Rejected.
//
// Any authenticated admin may decide any assignment — there is no check that
// the deciding admin is the one the assignment was addressed to. Callers
// depend on this, so tightening it is an API change, not a bug fix.
//
// A missing ID is NotFound with no side effect. Accepted and Rejected are
// terminal: deciding an already-decided assignment fails and leaves the
// record untouched.
func (s *AssignmentService) Decide(ctx context.Context, id string, outcome model.Status) error {
	if outcome != model.StatusAccepted && outcome != model.StatusRejected {
		return apperror.ValidationFailed("status", "outcome must be Accepted or Rejected")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "assignment ID is required")
	}

	existing, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status.Terminal() {
		return apperror.TerminalState("assignment has already been " + strings.ToLower(string(existing.Status)))
	}

	if err := s.assignments.UpdateStatus(ctx, id, outcome); err != nil {
		return err
	}

	s.logger.Info("assignment decided",
		slog.String("assignmentID", id),
		slog.String("outcome", string(outcome)),
	)

	return nil
}

// ListAdmins returns the usernames of all admins — the picker a submitter
// chooses a recipient from.
func (s *AssignmentService) ListAdmins(ctx context.Context) ([]string, error) {
	admins, err := s.users.ListAdmins(ctx)
	if err != nil {
		s.logger.Error("failed to list admins", slog.String("error", err.Error()))
		return nil, err
	}
	return admins, nil
}
