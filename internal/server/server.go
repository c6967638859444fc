// Package server wires handlers, middleware, and routes, and owns the HTTP
// server lifecycle.
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go loads config and creates the logger
//	server.New() creates: sqlite.DB → services → handlers → routes
//
// All dependencies are assembled in one place (the composition root) rather
// than scattered across the codebase; every layer receives interfaces or
// ready-made collaborators, never globals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/config"
	"github.com/sakif/taskboard/internal/handler"
	"github.com/sakif/taskboard/internal/middleware"
	sqliteRepo "github.com/sakif/taskboard/internal/repository/sqlite"
	"github.com/sakif/taskboard/internal/service"
)

// Server is the HTTP server and its owned resources. The database connection
// is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, builds the token and password
// services, wires the service and handler layers, and registers all routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens)

	return s, nil
}

// Router exposes the assembled handler, primarily for httptest-based tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's owned resources without serving. Start does
// this itself; Close exists for callers (tests) that never call Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures middleware and the route table.
//
// ROUTE STRUCTURE:
//
//	POST /register                  → create account (public)
//	POST /login                     → issue token (public)
//	POST /upload                    → submit assignment (authenticated)
//	GET  /admins                    → list admin usernames (authenticated)
//	GET  /assignments               → list own inbox (authenticated, admin)
//	POST /assignments/{id}/accept   → accept (authenticated, admin)
//	POST /assignments/{id}/reject   → reject (authenticated, admin)
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordService()
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	assignmentService := service.NewAssignmentService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, s.logger)

	requireAuth := auth.RequireAuth(tokens, handler.WriteError)
	requireAdmin := auth.RequireAdmin(handler.WriteError)

	// Public routes
	s.router.Post("/register", authHandler.HandleRegister)
	s.router.Post("/login", authHandler.HandleLogin)

	// Authenticated user routes
	s.router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/upload", assignmentHandler.HandleUpload)
		r.Get("/admins", assignmentHandler.HandleAdmins)
	})

	// Admin routes
	s.router.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(requireAdmin)
		r.Get("/assignments", assignmentHandler.HandleList)
		r.Post("/assignments/{id}/accept", assignmentHandler.HandleAccept)
		r.Post("/assignments/{id}/reject", assignmentHandler.HandleReject)
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30 seconds,
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
