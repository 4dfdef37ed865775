// Package checkout реализует HTTP-обработчик создания checkout-сессии
// подписки. Идентификация в теле запроса сверяется с аутентифицированным
// пользователем: оплатить можно только от своего имени.
package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/middlewarectx"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/response"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

// Request — тело запроса создания checkout-сессии.
type Request struct {
	UserID string `json:"user_id" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
}

// Handler обрабатывает запросы на создание checkout-сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики биллинга.
type Service interface {
	CreateCheckoutSession(ctx context.Context, user *models.User) (string, error)
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
// @Summary Создать checkout-сессию подписки
// @Description Создает у платёжного провайдера сессию оформления подписки и возвращает URL для перехода.
// @Tags Billing
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body Request true "Идентификация пользователя"
// @Success 200 {object} response.Response "URL checkout-сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Идентификация не совпадает с токеном"
// @Failure 422 {object} response.Response "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка платёжного провайдера"
// @Router /create-checkout-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"
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

	// Платёжная операция от чужого имени запрещена независимо от валидности тела.
	if req.UserID != user.UID || req.Email != user.Email {
		log.Warn("billing identity mismatch",
			slog.String("token_uid", user.UID), slog.String("body_uid", req.UserID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("identity mismatch"))
		return
	}

	url, err := h.service.CreateCheckoutSession(r.Context(), user)
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create checkout session"))
		return
	}

	log.Info("checkout session created")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"url": url,
	}))
}
