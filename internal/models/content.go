package models

import "time"

// Content представляет сохранённую пользователем генерацию (строка user_content).
// Все операции над контентом ограничены владельцем: запросы фильтруются по UserUID.
type Content struct {
	ID             string         // UUID записи
	UserUID        string         // Владелец
	Title          string         // Заголовок
	Body           string         // Markdown-документ целиком
	ContentType    string         // sermon или study
	Topic          string         // Тема или стих, с которых начиналась генерация
	BibleVerse     string         // Основной стих (опционально)
	Style          string         // Стиль подачи (опционально)
	StructuredData map[string]any // Разобранные секции проповеди (опционально, jsonb)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SermonOptions — настройки генерации проповеди, приходящие из JSON-запроса.
type SermonOptions struct {
	Audience        string `json:"audience,omitempty"`
	TeachingStyle   string `json:"teaching_style,omitempty"`
	CulturalContext string `json:"cultural_context,omitempty"`
	Tone            string `json:"tone,omitempty"`
	Length          string `json:"length,omitempty"`
}
