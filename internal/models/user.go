// Package models содержит доменные структуры сервиса генерации контента:
// пользователь, подписка, записи использования и сохранённый контент.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

// User представляет пользователя, удостоверенного внешним провайдером идентификации.
// Сервис не хранит учётные записи локально: структура живёт только в рамках запроса.
type User struct {
	UID   string // Стабильный идентификатор пользователя у провайдера
	Email string // Электронная почта
}
