// Package updaterole реализует HTTP-обработчик смены роли пользователя.
//
// Доступен только администраторам (проверка в middleware RequireRole).
// Имя целевого пользователя берётся из URL, новая роль — из JSON-тела.
package updaterole

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-access/internal/http/response"
	"github.com/magabrotheeeer/user-access/internal/lib/sl"
	"github.com/magabrotheeeer/user-access/internal/models"
	"github.com/magabrotheeeer/user-access/internal/storage"
)

// Request — новая роль для целевого пользователя.
type Request struct {
	Role string `json:"role" validate:"required,oneof=viewer editor admin"`
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики смены роли.
type Service interface {
	UpdateRole(ctx context.Context, username, role string) (*models.User, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Смена роли пользователя
// @Description Перезаписывает роль существующего пользователя. Только для администраторов.
// @Tags Users
// @Accept json
// @Produce json
// @Param username path string true "Имя целевого пользователя"
// @Param request body Request true "Новая роль"
// @Success 200 {object} models.UserInfo "Обновлённая запись"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Security BearerAuth
// @Router /users/{username}/role [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.updaterole"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	targetUsername := chi.URLParam(r, "username")
	if targetUsername == "" {
		log.Error("failed to decode username from url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode username from url"))
		return
	}

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

	user, err := h.service.UpdateRole(r.Context(), targetUsername, req.Role)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("target user not found", slog.String("username", targetUsername))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to update role", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update role"))
		return
	}

	log.Info("role updated",
		slog.String("username", user.Username),
		slog.String("role", user.Role),
	)
	render.JSON(w, r, user.Info())
}
