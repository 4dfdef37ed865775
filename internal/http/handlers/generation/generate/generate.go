// Package generate реализует HTTP-обработчик генерации проповеди или
// разбора Библии. Тело запроса к моменту вызова уже провалидировано
// схемой конвейера безопасности, пользователь аутентифицирован.
package generate

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
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/llm"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/services/generation"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/validation"
)

// Schema описывает допустимые поля тела запроса генерации.
var Schema = validation.Schema{
	"input": {
		Type:      validation.TypeString,
		Required:  true,
		MinLength: 1,
		MaxLength: 2000,
		Sanitize:  validation.SanitizeText,
	},
	"mode": {
		Type: validation.TypeString,
		Enum: []string{models.ContentTypeSermon, models.ContentTypeStudy},
	},
	"sermonOptions": {
		Type: validation.TypeObject,
		Nested: validation.Schema{
			"audience":         {Type: validation.TypeString, MaxLength: 100, Sanitize: validation.SanitizeText},
			"teaching_style":   {Type: validation.TypeString, MaxLength: 100, Sanitize: validation.SanitizeText},
			"cultural_context": {Type: validation.TypeString, MaxLength: 100, Sanitize: validation.SanitizeText},
			"tone":             {Type: validation.TypeString, MaxLength: 100, Sanitize: validation.SanitizeText},
			"length": {
				Type: validation.TypeString,
				Enum: []string{"short", "medium", "long"},
			},
		},
	},
}

// Handler обрабатывает запросы на генерацию контента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики генерации.
type Service interface {
	Generate(ctx context.Context, user *models.User, req generation.GenerateRequest) (*generation.Result, error)
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
// @Summary Сгенерировать проповедь или разбор
// @Description Генерирует контент по теме или отрывку. Бесплатный тариф ограничен пожизненной квотой, активная подписка снимает ограничение.
// @Tags Generation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "Сгенерированный контент"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.QuotaResponse "Квота бесплатного тарифа исчерпана"
// @Failure 429 {object} response.RateLimitResponse "Превышена частота запросов"
// @Failure 500 {object} response.ErrorResponse "Ошибка генерации"
// @Router /generate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.generation.generate"
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

	req := generation.GenerateRequest{
		Input: strField(data, "input"),
		Mode:  strField(data, "mode"),
	}
	if req.Mode == "" {
		req.Mode = models.ContentTypeSermon
	}
	if opts, ok := data["sermonOptions"].(map[string]any); ok {
		req.SermonOptions = models.SermonOptions{
			Audience:        strField(opts, "audience"),
			TeachingStyle:   strField(opts, "teaching_style"),
			CulturalContext: strField(opts, "cultural_context"),
			Tone:            strField(opts, "tone"),
			Length:          strField(opts, "length"),
		}
	}

	res, err := h.service.Generate(r.Context(), user, req)
	if err != nil {
		var limitErr *generation.LimitReachedError
		if errors.As(err, &limitErr) {
			log.Info("free quota exhausted", slog.Int("total_usage", limitErr.TotalUsage))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.QuotaExceeded(limitErr.TotalUsage))
			return
		}
		log.Error("generation failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("generation failed"))
		return
	}

	log.Info("content generated", slog.String("mode", req.Mode))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"content":               res.Content,
		"usage":                 tokenUsage(res.Usage),
		"hasActiveSubscription": res.HasActiveSubscription,
		"totalUsage":            response.UsageCount(res.HasActiveSubscription, res.TotalUsage),
		"remainingCreations":    response.UsageCount(res.HasActiveSubscription, res.RemainingCreations),
		"limit":                 h.service.FreeLimit(),
	}))
}

func strField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}

// tokenUsage формирует блок расхода токенов провайдера для ответа.
func tokenUsage(c *llm.Completion) map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{
		"prompt_tokens":     c.PromptTokens,
		"completion_tokens": c.CompletionTokens,
		"total_tokens":      c.TotalTokens,
	}
}
