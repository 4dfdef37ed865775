// Package middlewarectx содержит конвейер безопасности HTTP API: проверку
// метода, аутентификацию через внешний провайдер, ограничение частоты
// запросов и схемную валидацию тела — в строгом порядке, с коротким
// замыканием на первой отказавшей стадии. Запрос, не прошедший конвейер,
// никогда не достигает бизнес-логики и не изменяет хранимое состояние.
package middlewarectx

import (
	"context"

	"github.com/ZEEVERTHY/church-content-ai-sub000/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserKey — ключ аутентифицированного пользователя в контексте.
	UserKey Key = "user"
	// DataKey — ключ валидированных данных тела запроса в контексте.
	DataKey Key = "validated_data"
)

// UserFromContext возвращает аутентифицированного пользователя запроса.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

// DataFromContext возвращает валидированные данные тела запроса.
// Обработчик никогда не читает сырой payload: до него доходят только
// объявленные схемой и санитизированные поля.
func DataFromContext(ctx context.Context) map[string]any {
	data, _ := ctx.Value(DataKey).(map[string]any)
	return data
}
