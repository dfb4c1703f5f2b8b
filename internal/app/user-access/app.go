// Package useraccess собирает сервис управления пользователями:
// выбирает бэкенд хранилища по конфигу, строит сервисный слой и HTTP-сервер.
package useraccess

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/user-access/internal/config"
	"github.com/magabrotheeeer/user-access/internal/lib/jwt"
	"github.com/magabrotheeeer/user-access/internal/migrations"
	services "github.com/magabrotheeeer/user-access/internal/services/auth"
	"github.com/magabrotheeeer/user-access/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *sql.DB // nil для memory и file бэкендов
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	repo, db, err := newRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := services.NewAuthService(repo, jwtMaker)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, authService)

	router.Get("/docs/*", httpSwagger.WrapHandler)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// newRepository выбирает бэкенд хранилища пользователей по конфигу.
func newRepository(cfg *config.Config, logger *slog.Logger) (storage.UserRepository, *sql.DB, error) {
	switch cfg.Storage.Type {
	case "memory":
		return storage.NewMemoryStorage(), nil, nil
	case "file":
		return storage.NewFileStorage(cfg.FilePath, logger), nil, nil
	case "postgres":
		db, err := storage.New(cfg.ConnectionString)
		if err != nil {
			return nil, nil, err
		}
		if err = migrations.Run(db.DB, "./migrations"); err != nil {
			return nil, nil, err
		}
		return db, db.DB, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage type: %q", cfg.Storage.Type)
	}
}

func (a *App) Run(ctx context.Context) error {
	if a.db != nil {
		defer a.db.Close()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		return a.server.Shutdown(timeoutCtx)
	}
}
