// Package create реализует HTTP-обработчик сохранения сгенерированного
// контента пользователя.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/middlewarectx"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/http/response"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/lib/sl"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/validation"
)

// Schema описывает допустимые поля тела сохранения контента. Используется
// также маршрутом обновления: у операций одинаковый формат тела.
// Markdown-тело не санитизируется, чтобы не разрушить структуру документа.
var Schema = validation.Schema{
	"title": {
		Type:      validation.TypeString,
		Required:  true,
		MinLength: 1,
		MaxLength: 200,
		Sanitize:  validation.SanitizeText,
	},
	"content": {
		Type:      validation.TypeString,
		Required:  true,
		MinLength: 1,
		MaxLength: 100000,
	},
	"content_type": {
		Type:     validation.TypeString,
		Required: true,
		Enum:     []string{models.ContentTypeSermon, models.ContentTypeStudy},
	},
	"topic": {
		Type:      validation.TypeString,
		MaxLength: 500,
		Sanitize:  validation.SanitizeText,
	},
	"bible_verse": {
		Type:      validation.TypeString,
		MaxLength: 200,
		Sanitize:  validation.SanitizeText,
	},
	"style": {
		Type:      validation.TypeString,
		MaxLength: 100,
		Sanitize:  validation.SanitizeText,
	},
	"structured_data": {
		Type: validation.TypeObject,
	},
}

// Handler обрабатывает запросы на сохранение контента.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики сохранения контента.
type Service interface {
	Create(ctx context.Context, userUID string, content models.Content) (string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сохранить контент
// @Description Сохраняет сгенерированный контент текущего пользователя и возвращает ID записи.
// @Tags Content
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response "ID сохранённой записи"
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сохранения"
// @Router /save-content [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.create"
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

	id, err := h.service.Create(r.Context(), user.UID, ContentFromData(data))
	if err != nil {
		log.Error("failed to save content", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not save content"))
		return
	}

	log.Info("content saved", slog.String("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}

// ContentFromData собирает models.Content из валидированных данных тела.
func ContentFromData(data map[string]any) models.Content {
	content := models.Content{
		Title:       strField(data, "title"),
		Body:        strField(data, "content"),
		ContentType: strField(data, "content_type"),
		Topic:       strField(data, "topic"),
		BibleVerse:  strField(data, "bible_verse"),
		Style:       strField(data, "style"),
	}
	if structured, ok := data["structured_data"].(map[string]any); ok {
		content.StructuredData = structured
	}
	return content
}

func strField(data map[string]any, key string) string {
	value, _ := data[key].(string)
	return value
}
