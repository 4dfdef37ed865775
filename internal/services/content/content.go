// Package content содержит бизнес-логику сохранённого контента: создание,
// чтение, листинг, обновление и удаление в пределах владельца.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/sermon"
)

// Repository определяет методы хранилища контента.
type Repository interface {
	CreateContent(ctx context.Context, content models.Content) (string, error)
	ReadContent(ctx context.Context, id, userUID string) (*models.Content, error)
	ListContent(ctx context.Context, userUID string, limit, offset int) ([]*models.Content, error)
	UpdateContent(ctx context.Context, content models.Content, id, userUID string) (int, error)
	RemoveContent(ctx context.Context, id, userUID string) (int, error)
}

// Service реализует операции над сохранённым контентом.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает Service с переданным хранилищем.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Create сохраняет контент и возвращает его ID. Для проповеди без
// переданных структурированных данных секции извлекаются из markdown,
// чтобы клиент мог адресовать их при перегенерации.
func (s *Service) Create(ctx context.Context, userUID string, content models.Content) (string, error) {
	const op = "content.Create"

	content.ID = uuid.NewString()
	content.UserUID = userUID
	if content.StructuredData == nil && content.ContentType == models.ContentTypeSermon {
		content.StructuredData = extractSections(content.Body)
	}

	id, err := s.repo.CreateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Read возвращает контент по ID или nil, если записи нет или она чужая.
func (s *Service) Read(ctx context.Context, id, userUID string) (*models.Content, error) {
	const op = "content.Read"

	content, err := s.repo.ReadContent(ctx, id, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return content, nil
}

// List возвращает страницу контента пользователя, новое сверху.
func (s *Service) List(ctx context.Context, userUID string, limit, offset int) ([]*models.Content, error) {
	const op = "content.List"

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	result, err := s.repo.ListContent(ctx, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Update обновляет контент пользователя. Возвращает false, если запись
// не найдена или принадлежит другому пользователю.
func (s *Service) Update(ctx context.Context, id, userUID string, content models.Content) (bool, error) {
	const op = "content.Update"

	if content.StructuredData == nil && content.ContentType == models.ContentTypeSermon {
		content.StructuredData = extractSections(content.Body)
	}

	affected, err := s.repo.UpdateContent(ctx, content, id, userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// Remove удаляет контент пользователя. Возвращает false, если запись
// не найдена или принадлежит другому пользователю.
func (s *Service) Remove(ctx context.Context, id, userUID string) (bool, error) {
	const op = "content.Remove"

	affected, err := s.repo.RemoveContent(ctx, id, userUID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// extractSections разбирает markdown проповеди в map для jsonb-колонки.
// Неразбираемый документ сохраняется без структурированных данных.
func extractSections(body string) map[string]any {
	sections := sermon.Parse(body)
	if sections == nil {
		return nil
	}

	raw, err := json.Marshal(sections)
	if err != nil {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return data
}
