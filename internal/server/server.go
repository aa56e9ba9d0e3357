// Package server is the composition root: it wires repositories, services,
// and handlers, defines the routes, and owns the process lifecycle.
//
// main.go creates the config and logger; New assembles the dependency
// chain (sqlite.DB → services → handlers) in one place; Start runs the
// HTTP server until a shutdown signal arrives and then closes the database
// handle. Nothing here holds state between requests — the store is the only
// shared mutable resource.
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
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/sakif/spearo/internal/auth"
	"github.com/sakif/spearo/internal/config"
	"github.com/sakif/spearo/internal/handler"
	"github.com/sakif/spearo/internal/middleware"
	sqliteRepo "github.com/sakif/spearo/internal/repository/sqlite"
	"github.com/sakif/spearo/internal/service"
)

// Server is the HTTP server and its owned resources. The database handle
// is opened in New and closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain and registers all routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
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

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	s.router.Use(httprate.LimitByIP(
		s.config.RateLimit,
		time.Duration(s.config.RateLimitWindow)*time.Minute,
	))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	provider := auth.NewAuth0Provider(
		s.config.Auth0Domain,
		s.config.Auth0ClientID,
		s.config.Auth0ClientSecret,
		s.config.Auth0CallbackURL,
	)

	users := s.db.Users()
	sessions := s.db.Sessions()

	identityService := service.NewIdentityService(users, s.logger)
	userService := service.NewUserService(users, s.logger)
	sessionService := service.NewSessionService(sessions, s.logger)
	feedService := service.NewFeedService(users, sessions, s.logger)

	authHandler := handler.NewAuthHandler(provider, tokens, identityService, userService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	sessionHandler := handler.NewSessionHandler(sessionService, feedService, s.logger)

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Welcome to Spearo API"}`))
	})

	s.router.Get("/auth/login", authHandler.HandleLogin)
	s.router.Get("/auth/callback", authHandler.HandleCallback)
	s.router.Post("/auth/logout", authHandler.HandleLogout)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)

		r.Route("/users", func(r chi.Router) {
			r.Get("/profile/{id}", userHandler.HandleGetProfile)
			r.Put("/profile/{id}", userHandler.HandleUpdateProfile)
			r.Post("/follow/{id}", userHandler.HandleFollow)
			r.Post("/unfollow/{id}", userHandler.HandleUnfollow)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.HandleCreate)
			// Static segments before the {id} wildcard; chi matches them
			// first, so /feed and /user/... never collide with /{id}.
			r.Get("/feed", sessionHandler.HandleFeed)
			r.Get("/user/{userId}", sessionHandler.HandleListByUser)
			r.Get("/{id}", sessionHandler.HandleGet)
			r.Post("/{id}/like", sessionHandler.HandleToggleLike)
			r.Post("/{id}/comment", sessionHandler.HandleAddComment)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, give in-flight requests 30 seconds, close the
// database.
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
