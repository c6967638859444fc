package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// In-memory repository doubles. The services only see the interfaces, so
// these swap in for the SQLite implementations without the services knowing.

type mockUserRepo struct {
	users  map[string]*model.User // keyed by ID
	nextID int
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Insert(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.Conflict("userEmail", "email already exists")
		}
		if u.Username == user.Username {
			return apperror.Conflict("userName", "username already exists")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) FindByEmailOrUsername(_ context.Context, email, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) FindByUsername(_ context.Context, username string, adminOnly bool) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username && (!adminOnly || u.IsAdmin) {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) ListAdmins(_ context.Context) ([]string, error) {
	// Insertion order by numeric ID suffix would be overkill for the tests
	// that use this; they assert on set membership, not order.
	names := []string{}
	for _, u := range m.users {
		if u.IsAdmin {
			names = append(names, u.Username)
		}
	}
	return names, nil
}

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	users       *mockUserRepo // for the username join in ListForAdmin
	nextID      int
}

var _ repository.AssignmentRepository = (*mockAssignmentRepo)(nil)

func newMockAssignmentRepo(users *mockUserRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{
		assignments: make(map[string]*model.Assignment),
		users:       users,
	}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	for _, existing := range m.assignments {
		if existing.SubmitterID == a.SubmitterID && existing.Task == a.Task && existing.AdminID == a.AdminID {
			return apperror.Conflict("task", "assignment already exists for this task and admin")
		}
	}
	m.nextID++
	a.ID = fmt.Sprintf("assignment-%d", m.nextID)
	a.Status = model.StatusPending
	stored := *a
	m.assignments[a.ID] = &stored
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	a, ok := m.assignments[id]
	if !ok {
		return nil, apperror.NotFound("assignment", id)
	}
	result := *a
	return &result, nil
}

func (m *mockAssignmentRepo) FindByTriple(_ context.Context, submitterID, task, adminID string) (*model.Assignment, error) {
	for _, a := range m.assignments {
		if a.SubmitterID == submitterID && a.Task == task && a.AdminID == adminID {
			result := *a
			return &result, nil
		}
	}
	return nil, apperror.NotFound("assignment", task)
}

func (m *mockAssignmentRepo) UpdateTask(_ context.Context, id, task string) error {
	a, ok := m.assignments[id]
	if !ok || a.Status != model.StatusPending {
		return apperror.NotFound("assignment", id)
	}
	a.Task = task
	return nil
}

func (m *mockAssignmentRepo) UpdateStatus(_ context.Context, id string, status model.Status) error {
	a, ok := m.assignments[id]
	if !ok {
		return apperror.NotFound("assignment", id)
	}
	a.Status = status
	return nil
}

func (m *mockAssignmentRepo) ListForAdmin(_ context.Context, adminID string) ([]model.AssignmentWithSubmitter, error) {
	result := []model.AssignmentWithSubmitter{}
	for _, a := range m.assignments {
		if a.AdminID != adminID {
			continue
		}
		row := model.AssignmentWithSubmitter{Assignment: *a}
		if u, ok := m.users.users[a.SubmitterID]; ok {
			row.SubmitterUsername = u.Username
		}
		result = append(result, row)
	}
	return result, nil
}

// testLogger keeps service log output out of test noise below Error level.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestAuthService wires an AuthService against the in-memory doubles,
// with bcrypt at minimum cost so hashing doesn't dominate test time.
func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	users := newMockUserRepo()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)
	return NewAuthService(users, tokens, passwords, testLogger()), users
}

// newTestAssignmentService wires an AssignmentService against the doubles
// and pre-registers the given users.
func newTestAssignmentService(t *testing.T) (*AssignmentService, *mockUserRepo, *mockAssignmentRepo) {
	t.Helper()
	users := newMockUserRepo()
	assignments := newMockAssignmentRepo(users)
	return NewAssignmentService(assignments, users, testLogger()), users, assignments
}

// registerUser inserts a user directly into the mock store.
func registerUser(t *testing.T, users *mockUserRepo, username string, isAdmin bool) *model.User {
	t.Helper()
	u := &model.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
		IsAdmin:      isAdmin,
	}
	if err := users.Insert(context.Background(), u); err != nil {
		t.Fatalf("failed to insert %s: %v", username, err)
	}
	return u
}
