// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go reads config and creates the logger and (optionally) recording storage.
// Server.New() creates: sqlite.DB → services → handlers, and wires the routes.
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
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

	"github.com/performproject/backend/internal/auth"
	"github.com/performproject/backend/internal/handler"
	"github.com/performproject/backend/internal/middleware"
	sqliteRepo "github.com/performproject/backend/internal/repository/sqlite"
	"github.com/performproject/backend/internal/service"
	"github.com/performproject/backend/internal/storage"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port      int
	DBPath    string // path to the SQLite database file
	JWTSecret string // HMAC key for access tokens, required
	TokenTTL  time.Duration
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection (db). When the server shuts down,
// we must close it to flush any pending writes and release the file lock.
// This is handled in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the entire dependency chain is assembled:
//  1. Create the database connection (sqlite.New)
//  2. Create the token and password services from config
//  3. Create the service layer with the DB
//  4. Create the handlers with the services
//  5. Wire handlers to routes
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete sqlite.DB)
// - Handlers get services (not repositories or the DB)
//
// recordings may be nil — the server runs without object storage and the
// recording endpoints return an error explaining that.
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package.
func New(cfg Config, recordings *storage.RecordingStorage, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(recordings); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /api/auth/register                                  → Register + token
// POST   /api/auth/login                                     → Login + token
// GET    /api/auth/me                                        → Current user        [auth]
// GET    /api/users/me/profile                               → Get profile         [auth]
// PUT    /api/users/me/profile                               → Save profile        [auth]
// POST   /api/practice/sessions                              → Log session         [auth]
// GET    /api/practice/sessions                              → List sessions       [auth]
// GET    /api/practice/sessions/{sessionID}                  → Get session         [auth]
// DELETE /api/practice/sessions/{sessionID}                  → Delete session      [auth]
// GET    /api/practice/summary                               → Practice totals     [auth]
// POST   /api/practice/sessions/{sessionID}/recordings       → Presigned upload    [auth]
// GET    /api/practice/sessions/{sessionID}/recordings       → List + download URL [auth]
// DELETE /api/practice/sessions/{sessionID}/recordings/{recordingID}               [auth]
// POST   /api/groups                                         → Create group        [auth]
// GET    /api/groups                                         → List public groups  [auth]
// GET    /api/groups/{groupID}                               → Get group           [auth]
// POST   /api/groups/join                                    → Join by invite code [auth]
// DELETE /api/groups/{groupID}/members/me                    → Leave group         [auth]
// GET    /api/groups/{groupID}/members                       → List members        [auth]
// POST   /api/posts                                          → Create post         [auth]
// GET    /api/posts                                          → List posts          [auth]
// GET    /api/posts/{postID}                                 → Get post (+view)    [auth]
// DELETE /api/posts/{postID}                                 → Delete post         [auth]
// POST   /api/posts/{postID}/comments                        → Add comment         [auth]
// GET    /api/posts/{postID}/comments                        → List comments       [auth]
// DELETE /api/posts/comments/{commentID}                     → Delete comment      [auth]
// POST   /api/posts/{postID}/likes                           → Like post           [auth]
// DELETE /api/posts/{postID}/likes                           → Unlike post         [auth]
// GET    /api/achievements                                   → Catalog             [auth]
// GET    /api/achievements/me                                → Earned              [auth]
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
func (s *Server) setupRoutes(recordings *storage.RecordingStorage) error {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Auth primitives ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	// === Services ===
	// DEPENDENCY CHAIN:
	//   s.db exposes one narrow repository view per domain (Users(),
	//   Practice(), ...) — each service receives only the slice of the
	//   store it needs, as an interface.
	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	userService := service.NewUserService(s.db.Users(), s.logger)
	practiceService := service.NewPracticeService(s.db.Practice(), s.db.Achievements(), recordings, s.logger)
	groupService := service.NewGroupService(s.db.Groups(), s.logger)
	postService := service.NewPostService(s.db.Posts(), s.logger)
	achievementService := service.NewAchievementService(s.db.Achievements(), s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	practiceHandler := handler.NewPracticeHandler(practiceService, s.logger)
	groupHandler := handler.NewGroupHandler(groupService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	achievementHandler := handler.NewAchievementHandler(achievementService, s.logger)

	// RequireAuth validates the bearer token and loads the user into the
	// request context. The AuthService itself is the IdentityResolver.
	requireAuth := auth.RequireAuth(authService)

	s.router.Route("/api", func(r chi.Router) {
		// Public: these are the only two routes reachable without a token.
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		// Everything else requires a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/auth/me", authHandler.HandleMe)

			r.Get("/users/me/profile", userHandler.HandleGetProfile)
			r.Put("/users/me/profile", userHandler.HandleSaveProfile)

			r.Route("/practice", func(r chi.Router) {
				r.Post("/sessions", practiceHandler.HandleLogSession)
				r.Get("/sessions", practiceHandler.HandleListSessions)
				r.Get("/sessions/{sessionID}", practiceHandler.HandleGetSession)
				r.Delete("/sessions/{sessionID}", practiceHandler.HandleDeleteSession)
				r.Get("/summary", practiceHandler.HandleSummary)
				r.Post("/sessions/{sessionID}/recordings", practiceHandler.HandleAttachRecording)
				r.Get("/sessions/{sessionID}/recordings", practiceHandler.HandleListRecordings)
				r.Delete("/sessions/{sessionID}/recordings/{recordingID}", practiceHandler.HandleDeleteRecording)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Post("/", groupHandler.HandleCreate)
				r.Get("/", groupHandler.HandleList)
				r.Post("/join", groupHandler.HandleJoin)
				r.Get("/{groupID}", groupHandler.HandleGet)
				r.Delete("/{groupID}/members/me", groupHandler.HandleLeave)
				r.Get("/{groupID}/members", groupHandler.HandleMembers)
			})

			r.Route("/posts", func(r chi.Router) {
				r.Post("/", postHandler.HandleCreate)
				r.Get("/", postHandler.HandleList)
				r.Delete("/comments/{commentID}", postHandler.HandleDeleteComment)
				r.Get("/{postID}", postHandler.HandleGet)
				r.Delete("/{postID}", postHandler.HandleDelete)
				r.Post("/{postID}/comments", postHandler.HandleAddComment)
				r.Get("/{postID}/comments", postHandler.HandleListComments)
				r.Post("/{postID}/likes", postHandler.HandleLike)
				r.Delete("/{postID}/likes", postHandler.HandleUnlike)
			})

			r.Get("/achievements", achievementHandler.HandleCatalog)
			r.Get("/achievements/me", achievementHandler.HandleEarned)
		})
	})

	return nil
}

// Router exposes the configured router, mostly for tests that want to run
// requests through the full middleware chain with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 3, the database file might be left in an inconsistent state.
// The `defer s.db.Close()` ensures this happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
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

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
