// Package usage реализует HTTP-обработчик сводки использования: статус
// подписки, число генераций и остаток бесплатной квоты.
package usage

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/middlewarectx"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/response"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/entitlement"
)

// Handler обрабатывает запросы сводки использования.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сервиса прав.
type Service interface {
	Check(ctx context.Context, userUID string) (entitlement.Entitlement, error)
	FreeLimit() int
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить сводку использования
// @Description Возвращает статус подписки, число использованных генераций и остаток бесплатной квоты текущего пользователя.
// @Tags Usage
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response "Сводка использования"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка проверки прав"
// @Router /usage [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage"
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

	ent, err := h.service.Check(r.Context(), user.UID)
	if err != nil {
		log.Error("failed to check entitlement", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not load usage"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"hasActiveSubscription": ent.Unlimited,
		"totalUsage":            response.UsageCount(ent.Unlimited, ent.UsageCount),
		"remainingCreations":    response.UsageCount(ent.Unlimited, ent.Remaining),
		"limit":                 h.service.FreeLimit(),
	}))
}
