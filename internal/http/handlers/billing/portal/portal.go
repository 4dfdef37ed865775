// Package portal реализует HTTP-обработчик создания сессии портала
// управления подпиской у платёжного провайдера.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/middlewarectx"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/response"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/billing"
)

// Request — тело запроса создания сессии портала.
type Request struct {
	UserID string `json:"user_id" validate:"required"`
}

// Handler обрабатывает запросы на создание сессии портала.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики биллинга.
type Service interface {
	CreatePortalSession(ctx context.Context, user *models.User) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать сессию портала подписки
// @Description Создает у платёжного провайдера сессию портала управления подпиской и возвращает URL для перехода.
// @Tags Billing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Идентификация пользователя"
// @Success 200 {object} response.Response "URL сессии портала"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или нет покупателя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Идентификация не совпадает с токеном"
// @Failure 500 {object} response.ErrorResponse "Ошибка платёжного провайдера"
// @Router /create-portal-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.portal"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
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

	if req.UserID != user.UID {
		log.Warn("billing identity mismatch",
			slog.String("token_uid", user.UID), slog.String("body_uid", req.UserID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("identity mismatch"))
		return
	}

	url, err := h.service.CreatePortalSession(r.Context(), user)
	if err != nil {
		if errors.Is(err, billing.ErrNoCustomer) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("no billing customer for user"))
			return
		}
		log.Error("failed to create portal session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create portal session"))
		return
	}

	log.Info("portal session created")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"url": url,
	}))
}
