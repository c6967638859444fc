package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
)

func TestSubmit_CreatesPending(t *testing.T) {
	svc, users, repo := newTestAssignmentService(t)
	alice := registerUser(t, users, "alice", false)
	registerUser(t, users, "bob_admin", true)

	result, err := svc.Submit(context.Background(), alice.ID, "Report", "bob_admin")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !result.Created {
		t.Error("Created = false, want true for a fresh submission")
	}

	stored, err := repo.GetByID(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Status != model.StatusPending {
		t.Errorf("Status = %q, want Pending", stored.Status)
	}
}

func TestSubmit_IdempotentResubmission(t *testing.T) {
	// Two sequential submits before any decision leave exactly one Pending
	// record; the second is tagged as an update of the first.
	svc, users, repo := newTestAssignmentService(t)
	alice := registerUser(t, users, "alice", false)
	registerUser(t, users, "bob_admin", true)

	first, err := svc.Submit(context.Background(), alice.ID, "Report", "bob_admin")
	if err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	second, err := svc.Submit(context.Background(), alice.ID, "Report", "bob_admin")
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}

	if second.Created {
		t.Error("second Submit() Created = true, want false")
	}
	if second.ID != first.ID {
		t.Errorf("second Submit() ID = %q, want same record %q", second.ID, first.ID)
	}
	if len(repo.assignments) != 1 {
		t.Errorf("store holds %d records, want exactly 1", len(repo.assignments))
	}
}

func TestSubmit_AdminNotFound(t *testing.T) {
	svc, users, _ := newTestAssignmentService(t)
	alice := registerUser(t, users, "alice", false)

	_, err := svc.Submit(context.Background(), alice.ID, "Report", "ghost_admin")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSubmit_RegularUserIsNotAnAdmin(t *testing.T) {
	// A non-admin user's username must not resolve as a recipient.
	svc, users, _ := newTestAssignmentService(t)
	alice := registerUser(t, users, "alice", false)
	registerUser(t, users, "dave", false)

	_, err := svc.Submit(context.Background(), alice.ID, "Report", "dave")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSubmit_SelfAssignment(t *testing.T) {
	svc, users, _ := newTestAssignmentService(t)
	admin := registerUser(t, users, "bob_admin", true)

	_, err := svc.Submit(context.Background(), admin.ID, "Report", "bob_admin")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestSubmit_MissingFields(t *testing.T) {
	svc, users, _ := newTestAssignmentService(t)
	alice := registerUser(t, users, "alice", false)

	for _, tc := range []struct{ task, admin string }{
		{"", "bob_admin"},
		{"Report", ""},
		{"   ", "bob_admin"},
	} {
		if _, err := svc.Submit(context.Background(), alice.ID, tc.task, tc.admin); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Submit(task=%q, admin=%q) error = %v, want ErrValidation", tc.task, tc.admin, err)
		}
	}
}

func TestSubmit_TerminalRecordIsImmutable(t *testing.T) {
	svc, users, repo := newTestAssignmentService(t)
	alice := registerUser(t, users, "alice", false)
	registerUser(t, users, "bob_admin", true)

	for _, outcome := range []model.Status{model.StatusAccepted, model.StatusRejected} {
		task := "Report for " + string(outcome)

		result, err := svc.Submit(context.Background(), alice.ID, task, "bob_admin")
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if err := svc.Decide(context.Background(), result.ID, outcome); err != nil {
			t.Fatalf("Decide(%s) error = %v", outcome, err)
		}

		_, err = svc.Submit(context.Background(), alice.ID, task, "bob_admin")
		if !errors.Is(err, apperror.ErrTerminalState) {
			t.Errorf("Submit() after Decide(%s): error = %v, want ErrTerminalState", outcome, err)
		}

		// The record itself is untouched.
		stored, _ := repo.GetByID(context.Background(), result.ID)
		if stored.Status != outcome {
			t.Errorf("Status = %q, want %q", stored.Status, outcome)
		}
	}
}

func TestDecide_Accept(t *testing.T) {
	svc, users, repo := newTestAssignmentService(t)
	alice := registerUser(t, users, "alice", false)
	registerUser(t, users, "bob_admin", true)

	result, _ := svc.Submit(context.Background(), alice.ID, "Report", "bob_admin")

	if err := svc.Decide(context.Background(), result.ID, model.StatusAccepted); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), result.ID)
	if stored.Status != model.StatusAccepted {
		t.Errorf("Status = %q, want Accepted", stored.Status)
	}
}

func TestDecide_NotFound(t *testing.T) {
	svc, _, repo := newTestAssignmentService(t)

	err := svc.Decide(context.Background(), "missing-id", model.StatusAccepted)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if len(repo.assignments) != 0 {
		t.Error("Decide() on a missing id must have no side effect")
	}
}

func TestDecide_InvalidOutcome(t *testing.T) {
	svc, users, _ := newTestAssignmentService(t)
	alice := registerUser(t, users, "alice", false)
	registerUser(t, users, "bob_admin", true)
	result, _ := svc.Submit(context.Background(), alice.ID, "Report", "bob_admin")

	for _, outcome := range []model.Status{model.StatusPending, model.Status("Maybe"), model.Status("")} {
		if err := svc.Decide(context.Background(), result.ID, outcome); !errors.Is(err, apperror.ErrValidation) {
			t.Errorf("Decide(outcome=%q) error = %v, want ErrValidation", outcome, err)
		}
	}
}

func TestDecide_AlreadyDecided(t *testing.T) {
	// Terminal states have no outgoing transitions — a second decision
	// fails and the first stands.
	svc, users, repo := newTestAssignmentService(t)
	alice := registerUser(t, users, "alice", false)
	registerUser(t, users, "bob_admin", true)
	result, _ := svc.Submit(context.Background(), alice.ID, "Report", "bob_admin")

	if err := svc.Decide(context.Background(), result.ID, model.StatusRejected); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	err := svc.Decide(context.Background(), result.ID, model.StatusAccepted)
	if !errors.Is(err, apperror.ErrTerminalState) {
		t.Errorf("error = %v, want ErrTerminalState", err)
	}

	stored, _ := repo.GetByID(context.Background(), result.ID)
	if stored.Status != model.StatusRejected {
		t.Errorf("Status = %q, want the first decision Rejected", stored.Status)
	}
}

func TestListForAdmin_JoinsAndFormats(t *testing.T) {
	svc, users, _ := newTestAssignmentService(t)
	alice := registerUser(t, users, "alice", false)
	admin := registerUser(t, users, "bob_admin", true)
	otherAdmin := registerUser(t, users, "carol_admin", true)

	if _, err := svc.Submit(context.Background(), alice.ID, "Report", "bob_admin"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := svc.Submit(context.Background(), alice.ID, "Elsewhere", "carol_admin"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	views, err := svc.ListForAdmin(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("ListForAdmin() error = %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("len(views) = %d, want 1 (only bob_admin's)", len(views))
	}

	v := views[0]
	if v.Username != "alice" {
		t.Errorf("Username = %q, want alice", v.Username)
	}
	if v.Task != "Report" {
		t.Errorf("Task = %q, want Report", v.Task)
	}
	if v.Status != model.StatusPending {
		t.Errorf("Status = %q, want Pending", v.Status)
	}
	if v.CreatedAt == "" || v.UpdatedAt == "" {
		t.Error("timestamps should be formatted, not empty")
	}

	// carol_admin sees only her own
	otherViews, err := svc.ListForAdmin(context.Background(), otherAdmin.ID)
	if err != nil {
		t.Fatalf("ListForAdmin() error = %v", err)
	}
	if len(otherViews) != 1 || otherViews[0].Task != "Elsewhere" {
		t.Errorf("otherViews = %+v, want just the Elsewhere task", otherViews)
	}
}

func TestListAdmins(t *testing.T) {
	svc, users, _ := newTestAssignmentService(t)
	registerUser(t, users, "alice", false)
	registerUser(t, users, "bob_admin", true)
	registerUser(t, users, "carol_admin", true)

	admins, err := svc.ListAdmins(context.Background())
	if err != nil {
		t.Fatalf("ListAdmins() error = %v", err)
	}
	if len(admins) != 2 {
		t.Fatalf("len(admins) = %d, want 2", len(admins))
	}
	seen := map[string]bool{}
	for _, name := range admins {
		seen[name] = true
	}
	if !seen["bob_admin"] || !seen["carol_admin"] {
		t.Errorf("admins = %v, want bob_admin and carol_admin", admins)
	}
}
