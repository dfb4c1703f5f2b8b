// Package useraccess предоставляет маршруты для основного приложения.
package useraccess

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magabrotheeeer/user-access/internal/http/handlers/auth/firstadmin"
	"github.com/magabrotheeeer/user-access/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/user-access/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/user-access/internal/http/handlers/health"
	"github.com/magabrotheeeer/user-access/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/user-access/internal/http/handlers/user/updaterole"
	"github.com/magabrotheeeer/user-access/internal/http/middlewarectx"
	"github.com/magabrotheeeer/user-access/internal/models"
	services "github.com/magabrotheeeer/user-access/internal/services/auth"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *services.AuthService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Открытые конечные точки
	r.Post("/register", register.New(logger, authService).ServeHTTP)
	r.Post("/register/first-admin", firstadmin.New(logger, authService).ServeHTTP)
	r.Post("/login", login.New(logger, authService).ServeHTTP)
	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	// Группа с JWT аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(authService, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Get("/users/me", me.New(logger, authService).ServeHTTP)

		// Операции только для администраторов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireRole(models.RoleAdmin, logger))
			r.Put("/users/{username}/role", updaterole.New(logger, authService).ServeHTTP)
		})
	})
}
