// Package regenerate реализует HTTP-обработчик перегенерации одной секции
// сохранённой проповеди с вклейкой результата в неизменённый документ.
package regenerate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/middlewarectx"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/response"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/generation"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/validation"
)

// Schema описывает допустимые поля тела запроса перегенерации.
// Markdown оригинала не санитизируется: схлопывание пробелов разрушило бы
// структуру документа.
var Schema = validation.Schema{
	"section": {
		Type:     validation.TypeString,
		Required: true,
		Enum:     []string{"introduction", "illustrations", "application", "points", "full"},
	},
	"originalSermon": {
		Type:      validation.TypeString,
		Required:  true,
		MinLength: 1,
		MaxLength: 50000,
	},
	"originalInputs": {
		Type: validation.TypeObject,
	},
	"additionalNote": {
		Type:      validation.TypeString,
		MaxLength: 1000,
		Sanitize:  validation.SanitizeHTML,
	},
}

// Handler обрабатывает запросы на перегенерацию секции.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики перегенерации.
type Service interface {
	RegenerateSection(ctx context.Context, user *models.User, req generation.RegenerateRequest) (*generation.Result, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Перегенерировать секцию проповеди
// @Description Перегенерирует одну секцию проповеди и возвращает документ целиком. Секции illustrations и full перегенерируют весь документ.
// @Tags Generation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "Документ с обновлённой секцией"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.QuotaResponse "Квота бесплатного тарифа исчерпана"
// @Failure 429 {object} response.RateLimitResponse "Превышена частота запросов"
// @Failure 500 {object} response.ErrorResponse "Ошибка генерации"
// @Router /regenerate-section [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.generation.regenerate"
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
	data := middlewarectx.DataFromContext(r.Context())

	req := generation.RegenerateRequest{
		Section:        strField(data, "section"),
		OriginalSermon: strField(data, "originalSermon"),
		AdditionalNote: strField(data, "additionalNote"),
	}
	if inputs, ok := data["originalInputs"].(map[string]any); ok {
		req.OriginalInputs = inputs
	}

	res, err := h.service.RegenerateSection(r.Context(), user, req)
	if err != nil {
		var limitErr *generation.LimitReachedError
		if errors.As(err, &limitErr) {
			log.Info("free quota exhausted", slog.Int("total_usage", limitErr.TotalUsage))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.QuotaExceeded(limitErr.TotalUsage))
			return
		}
		log.Error("regeneration failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("regeneration failed"))
		return
	}

	log.Info("section regenerated", slog.String("section", req.Section))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"content": res.Content,
		"section": req.Section,
	}))
}

func strField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}
