// Package webhook реализует HTTP-обработчик webhook-событий платёжного
// провайдера. Запрос аутентифицируется подписью провайдера, а не
// bearer-токеном, поэтому маршрут стоит вне пользовательского конвейера.
package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/response"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
)

const maxBodyBytes = int64(65536)

// Handler обрабатывает webhook-события платёжного провайдера.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// Service описывает интерфейс зеркалирования событий провайдера.
type Service interface {
	HandleWebhookEvent(ctx context.Context, event stripe.Event) error
}

// New создает новый Handler с переданными логгером, сервисом и секретом подписи.
func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// ServeHTTP godoc
// @Summary Принять webhook платёжного провайдера
// @Description Проверяет подпись события и зеркалирует изменение подписки в хранилище.
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "Событие обработано"
// @Failure 400 {object} response.ErrorResponse "Невалидная подпись или payload"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки события"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid payload"))
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		r.Header.Get("Stripe-Signature"),
		h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		log.Warn("webhook signature verification failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("signature verification failed"))
		return
	}

	if err := h.service.HandleWebhookEvent(r.Context(), event); err != nil {
		// Не-200 заставит провайдера повторить доставку события.
		log.Error("failed to handle billing event",
			slog.String("event_type", string(event.Type)), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process event"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"received": true,
	}))
}
