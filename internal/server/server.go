package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Emiliocodings/ServiceUsers/config"
	"github.com/Emiliocodings/ServiceUsers/internal/db"
	"github.com/Emiliocodings/ServiceUsers/internal/handlers"
	"github.com/Emiliocodings/ServiceUsers/internal/mq"
	"github.com/Emiliocodings/ServiceUsers/internal/services"
	"github.com/Emiliocodings/ServiceUsers/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer      *http.Server
	router          *chi.Mux
	db              *sqlx.DB
	events          *mq.MQ
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New opens the database, ensures the schema and wires the routes.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	start := time.Now()
	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established",
		"driver", cfg.Database.Driver,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg.Database.URL, logger); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	var opts []services.UserServiceOption
	events, err := mq.Connect(ctx, cfg.Events)
	switch {
	case errors.Is(err, mq.ErrDisabled):
	case err != nil:
		_ = dbConn.Close()
		return nil, err
	default:
		logger.Info("publishing user events", "backend", cfg.Events.Backend, "channel", cfg.Events.Channel)
		opts = append(opts, services.WithEvents(events, cfg.Events.Channel, logger))
	}

	userRepo := store.NewUserRepository(dbConn)
	userService := services.NewUserService(userRepo, opts...)

	router := NewRouter(cfg, logger, userService, dbConn)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer:      httpServer,
		router:          router,
		db:              dbConn,
		events:          events,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// NewRouter builds the HTTP routes and middleware stack.
func NewRouter(cfg config.Config, logger *slog.Logger, userService *services.UserService, pinger handlers.Pinger) *chi.Mux {
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		handlers.RequestLogger(logger),
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	router.Get("/healthz", handlers.Healthz(pinger))
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, userService, logger)
	})
	return router
}

func migrateUp(databaseURL string, logger *slog.Logger) error {
	migrator, err := db.NewMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = migrator.Close()
	}()
	return migrator.Up()
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, then closes the broker and the
// database pool.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}

	err := s.httpServer.Shutdown(ctx)
	if s.events != nil {
		if closeErr := s.events.Close(); closeErr != nil {
			s.logger.Error("failed to close events backend", "error", closeErr)
		}
	}
	if s.db != nil {
		if closeErr := s.db.Close(); closeErr != nil {
			s.logger.Error("failed to close database", "error", closeErr)
		}
	}
	s.logger.Info("server stopped")
	return err
}
