// Package login реализует HTTP-обработчик для запросов аутентификации пользователей.
//
// Учетные данные принимаются в form-encoded виде (совместимо с OAuth2 password flow).
// При успешной аутентификации возвращается JSON с access_token типа bearer;
// при любой неудаче — единый ответ 401 без уточнения причины.
package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/user-access/internal/http/response"
	"github.com/magabrotheeeer/user-access/internal/lib/sl"
	"github.com/magabrotheeeer/user-access/internal/metrics"
)

// Request — структура входных данных для авторизации.
type Request struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// TokenResponse — успешный ответ на запрос входа.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, username, rawPassword string) (string, error)
}

// New создает новый экземпляр Handler с указанными логгером и сервисом аутентификации.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя по имени и паролю (form-encoded). Возвращает bearer-токен.
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Имя пользователя"
// @Param password formData string true "Пароль"
// @Success 200 {object} TokenResponse "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request form"))
		return
	}

	req := Request{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	// Ошибки валидации формы отвечают тем же единым сообщением, что и
	// неверный пароль: форма запроса не должна служить оракулом.
	if err := h.validate.Struct(req); err != nil {
		log.Warn("login form validation failed")
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.unauthorized(w, r)
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Warn("login failed", slog.String("username", req.Username))
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.unauthorized(w, r)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	log.Info("login success", slog.String("username", req.Username))
	render.JSON(w, r, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// unauthorized отвечает единообразно на любую неудачу входа.
func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	render.JSON(w, r, response.Error("incorrect username or password"))
}
