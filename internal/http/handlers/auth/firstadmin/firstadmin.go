// Package firstadmin реализует одноразовый путь создания первого администратора.
//
// Запрос совпадает с обычной регистрацией, но роль принудительно admin.
// Как только в хранилище есть хотя бы один администратор, путь закрыт навсегда
// и возвращает 403.
package firstadmin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-access/internal/http/response"
	"github.com/magabrotheeeer/user-access/internal/lib/sl"
	"github.com/magabrotheeeer/user-access/internal/metrics"
	"github.com/magabrotheeeer/user-access/internal/models"
	"github.com/magabrotheeeer/user-access/internal/storage"
)

// Request — входные данные для создания первого администратора.
type Request struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"omitempty,max=100"`
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания первого администратора.
type Service interface {
	RegisterFirstAdmin(ctx context.Context, username, email, fullName, rawPassword string) (*models.User, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.firstadmin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.service.RegisterFirstAdmin(r.Context(), req.Username, req.Email, req.FullName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAdminExists):
			log.Warn("first admin already exists")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("admin already exists"))
		case errors.Is(err, storage.ErrUserExists):
			log.Warn("username already registered", slog.String("username", req.Username))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("username already registered"))
		default:
			log.Error("first admin registration failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to register user"))
		}
		return
	}

	metrics.RegistrationsTotal.Inc()
	log.Info("first admin registered", slog.String("username", user.Username))
	render.JSON(w, r, user.Info())
}
