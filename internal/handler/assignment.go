package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/service"
)

// AssignmentHandler serves the assignment lifecycle endpoints: upload,
// admin listing, and accept/reject decisions.
type AssignmentHandler struct {
	assignments *service.AssignmentService
	logger      *slog.Logger
}

// NewAssignmentHandler creates an AssignmentHandler.
func NewAssignmentHandler(assignments *service.AssignmentService, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, logger: logger}
}

// uploadRequest is the POST /upload body: a task name and the username of
// the admin it is submitted to.
type uploadRequest struct {
	Task  string `json:"task"`
	Admin string `json:"admin"`
}

// HandleUpload submits (or idempotently re-submits) an assignment.
//
// HTTP: POST /upload (authenticated)
// Responses: 201 when a new Pending record was created, 200 when an existing
// Pending record was updated, 400/403/404/409 per the lifecycle rules.
func (h *AssignmentHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but don't trust route wiring.
		WriteError(w, apperror.Unauthenticated("access denied, no token provided"))
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid upload JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	result, err := h.assignments.Submit(r.Context(), principal.UserID, req.Task, req.Admin)
	if err != nil {
		WriteError(w, err)
		return
	}

	// The tagged result drives both the status code and the message.
	if result.Created {
		writeJSON(w, http.StatusCreated, map[string]string{
			"id":      result.ID,
			"message": "assignment uploaded successfully",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":      result.ID,
		"message": "assignment already exists, has been updated",
	})
}

// HandleAdmins returns the usernames of all admins.
//
// HTTP: GET /admins (authenticated)
func (h *AssignmentHandler) HandleAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.assignments.ListAdmins(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

// HandleList returns the assignments addressed to the calling admin.
//
// HTTP: GET /assignments (authenticated, admin-only)
func (h *AssignmentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, apperror.Unauthenticated("access denied, no token provided"))
		return
	}

	views, err := h.assignments.ListForAdmin(r.Context(), principal.UserID)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleAccept accepts a pending assignment.
//
// HTTP: POST /assignments/{id}/accept (authenticated, admin-only)
func (h *AssignmentHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, model.StatusAccepted, "assignment accepted")
}

// HandleReject rejects a pending assignment.
//
// HTTP: POST /assignments/{id}/reject (authenticated, admin-only)
func (h *AssignmentHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, model.StatusRejected, "assignment rejected")
}

func (h *AssignmentHandler) decide(w http.ResponseWriter, r *http.Request, outcome model.Status, message string) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "assignment ID is required",
		})
		return
	}

	if err := h.assignments.Decide(r.Context(), id, outcome); err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}
