// Package server is the composition root: it connects MongoDB, wires the
// dependency chain (repository → service → handler), registers routes, and
// runs the HTTP server with graceful shutdown.
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

	"github.com/placementcell/drivetrack/internal/auth"
	"github.com/placementcell/drivetrack/internal/config"
	"github.com/placementcell/drivetrack/internal/handler"
	"github.com/placementcell/drivetrack/internal/middleware"
	"github.com/placementcell/drivetrack/internal/repository/mongodb"
	"github.com/placementcell/drivetrack/internal/service"
)

// Server owns the router and the MongoDB handle; the handle is closed
// during shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *mongodb.DB
}

// New connects to the store and assembles the full dependency graph.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes registers middleware and the route tree.
//
//	POST   /api/user/signup        public
//	POST   /api/user/signin        public
//	GET    /api/me                 gated
//	GET    /api/users              gated
//	POST   /api/drives             gated
//	GET    /api/drives             gated (filtered list)
//	GET    /api/drives/{id}        gated
//	PUT    /api/drives/{id}        gated (partial merge)
//	DELETE /api/drives/{id}        gated
//	GET    /api/legacy/drives      public (only when SHEET_CSV_URL is set)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordServiceWithCost(s.config.BcryptCost)

	authService := service.NewAuthService(mongodb.NewUserRepo(s.db), tokens, passwords, s.logger)
	driveService := service.NewDriveService(mongodb.NewDriveRepo(s.db), s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	driveHandler := handler.NewDriveHandler(driveService, s.logger)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/user/signup", authHandler.HandleSignup)
		r.Post("/user/signin", authHandler.HandleSignin)

		if s.config.SheetCSVURL != "" {
			legacy := handler.NewLegacyDriveHandler(s.config.SheetCSVURL, s.logger)
			r.Get("/legacy/drives", legacy.HandleList)
		}

		// Everything below passes through the auth gate exactly once.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Get("/users", authHandler.HandleListUsers)

			r.Post("/drives", driveHandler.HandleCreate)
			r.Get("/drives", driveHandler.HandleList)
			r.Get("/drives/{id}", driveHandler.HandleGetByID)
			r.Put("/drives/{id}", driveHandler.HandleUpdate)
			r.Delete("/drives/{id}", driveHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the store handle.
func (s *Server) Start() error {
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
			slog.String("database", s.config.MongoDB),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			s.closeStore()
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			s.closeStore()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	s.closeStore()
	return nil
}

func (s *Server) closeStore() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.db.Close(ctx); err != nil {
		s.logger.Error("closing store", slog.String("error", err.Error()))
	}
}
