package models

import "time"

// Типы генерируемого контента.
const (
	ContentTypeSermon = "sermon"
	ContentTypeStudy  = "study"
)

// UsageRecord — одна строка user_usage: факт успешной генерации.
// Запись создаётся только после успешного ответа провайдера генерации,
// никогда не обновляется и не удаляется сервисом.
type UsageRecord struct {
	UserUID     string
	ContentType string // sermon или study
	CreatedAt   time.Time
}
