// Package validation реализует декларативную схемную валидацию JSON-запросов.
//
// Схема описывает разрешённые поля и их правила (тип, обязательность, enum,
// границы длины, шаблон, вложенная схема). В строгом режиме любое поле,
// отсутствующее в схеме, отклоняет запрос целиком: обработчик получает только
// объявленные и санитизированные данные. Все нарушения накапливаются, поэтому
// клиент получает полный список ошибок за один запрос.
package validation

import "regexp"

// FieldType задаёт ожидаемый JSON-тип значения поля.
type FieldType string

// Поддерживаемые типы полей.
const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
)

// SanitizeMode определяет режим санитизации строкового значения.
type SanitizeMode int

const (
	// SanitizeNone — значение передаётся как есть.
	SanitizeNone SanitizeMode = iota
	// SanitizeText — нулевые байты удаляются, пробелы схлопываются,
	// значение обрезается и усекается до MaxLength.
	SanitizeText
	// SanitizeHTML — как SanitizeText, плюс вырезаются блоки <script>,
	// inline-обработчики событий и javascript:-ссылки.
	SanitizeHTML
)

// Rule описывает правила одного поля схемы. Правила — данные: каждая
// разновидность проверяется фиксированным вычислителем в Validate.
type Rule struct {
	Type      FieldType
	Required  bool
	Enum      []string       // допустимые значения (для строк)
	MinLength int            // минимальная длина строки, 0 — без ограничения
	MaxLength int            // максимальная длина строки, 0 — без ограничения
	Pattern   *regexp.Regexp // шаблон, которому должна соответствовать строка
	Check     func(any) bool // дополнительный предикат
	Sanitize  SanitizeMode
	Nested    Schema // схема вложенного объекта (для TypeObject)
}

// Schema — карта имени поля в его правила. Определяется один раз при старте
// и не изменяется во время работы.
type Schema map[string]Rule

// Result — итог валидации: флаг успеха, полный список нарушений и данные,
// содержащие только объявленные схемой поля после санитизации.
type Result struct {
	Valid  bool
	Errors []string
	Data   map[string]any
}
