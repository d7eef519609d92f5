// Package app wires the dashboard together and owns its lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"taskboard/internal/config"
	"taskboard/internal/dashboard"
	"taskboard/internal/directory"
	"taskboard/internal/handlers"
	"taskboard/internal/identity"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	"taskboard/internal/repository"
	"taskboard/internal/repository/inmemory"
	"taskboard/internal/repository/postgres"
)

type App struct {
	config    *config.Config
	server    *http.Server
	store     repository.Store
	dir       *directory.Directory
	worker    *directory.RefreshWorker
	shutdowns []func()
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	switch a.config.Repository.Type {
	case "inmemory":
		a.store = inmemory.New()
	default:
		store, err := postgres.New(ctx, a.config.Database.URL, postgres.PoolConfig{
			MaxConns:    a.config.Database.MaxConnections,
			MinConns:    a.config.Database.MinConnections,
			IdleTimeout: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("connecting to store: %w", err)
		}
		a.store = store
		a.shutdowns = append(a.shutdowns, store.Close)
	}

	sessions := identity.NewClient(a.config.Identity.BaseURL, a.config.Identity.Timeout)
	resolver := identity.NewResolver(sessions, a.store)

	a.dir = directory.New(a.store)
	if err := a.dir.Refresh(ctx); err != nil {
		// Not fatal: the worker retries and lookups degrade to ids.
		logger.Warn("App: initial directory refresh failed")
	}
	a.worker = directory.NewRefreshWorker(a.dir, a.config.Directory.RefreshInterval)

	board := dashboard.New(a.store)
	taskHandler := handlers.NewTaskHandler(board, a.dir)
	sessionHandler := handlers.NewSessionHandler(resolver)

	a.server = &http.Server{
		Addr:    a.config.ServerAddr(),
		Handler: a.router(taskHandler, sessionHandler, resolver),
	}
	return nil
}

func (a *App) router(tasks *handlers.TaskHandler, sessions *handlers.SessionHandler, resolver *identity.Resolver) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(a.config.Server.RateLimitRPM))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	r.Get("/health", tasks.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(resolver))

		r.Get("/session", sessions.GetSession)
		r.Post("/session/signout", sessions.SignOut)
		r.Get("/users", tasks.ListStaff)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", tasks.ListTasks)
			r.With(middleware.RequireAdmin).Post("/", tasks.CreateTask)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/status", tasks.ChangeStatus)
				r.Post("/claim", tasks.ClaimTask)
				r.Get("/history", tasks.GetHistory)
				r.With(middleware.RequireAdmin).Post("/assignee", tasks.ChangeAssignee)
				r.With(middleware.RequireAdmin).Delete("/", tasks.DeleteTask)
			})
		})
	})

	return r
}

// Run serves until the context is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	go a.worker.Start(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: server started on " + a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.runShutdowns()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: forced shutdown", err)
	}
	a.runShutdowns()
	return nil
}

func (a *App) runShutdowns() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
