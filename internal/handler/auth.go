// Package handler is the HTTP layer: it parses requests, delegates to the
// services, and writes JSON responses. No business rules live here.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/taskboard/internal/service"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// registerRequest is the POST /register body. isAdmin defaults to false, so
// a plain user registration can omit it.
type registerRequest struct {
	Email    string `json:"userEmail"`
	Username string `json:"userName"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /register
// Responses: 201 on success, 400 on validation failure, 409 on a duplicate
// email or username.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	if _, err := h.auth.Register(r.Context(), req.Email, req.Username, req.Password, req.IsAdmin); err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "user registered successfully"})
}

// loginRequest is the POST /login body.
type loginRequest struct {
	Email    string `json:"userEmail"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and returns a bearer token plus the role
// flag.
//
// HTTP: POST /login
// Responses: 200 {token, isAdmin}, 400 on bad input or wrong password,
// 404 on an unknown email.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
