// Package sermon разбирает сгенерированный markdown-документ проповеди на
// именованные секции и собирает его обратно. Это позволяет перегенерировать
// одну секцию внешним вызовом и вклеить её в неизменённый документ.
//
// Разбор устроен как конечный автомат над последовательностью событий строк
// (заголовок уровня N, содержимое, пустая строка). Разбор намеренно
// снисходителен: документ с отсутствующими или незнакомыми заголовками
// даёт пустые секции, а не ошибку.
package sermon

import "strings"

// Имена секций, принимаемые SpliceSection.
const (
	SectionIntroduction = "introduction"
	SectionPoints       = "points"
	SectionApplication  = "application"
	SectionConclusion   = "conclusion"
)

// Point — один пункт проповеди с заголовком и накопленным содержимым.
type Point struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Sections — разобранная структура документа. Существует только в памяти:
// системой записи остаётся сам markdown-документ.
type Sections struct {
	Title              string  `json:"title"`
	PrimaryScripture   string  `json:"primary_scripture"`
	Introduction       string  `json:"introduction"`
	BiblicalContext    string  `json:"biblical_context"`
	ExegeticalInsights string  `json:"exegetical_insights"`
	Points             []Point `json:"points"`
	Application        string  `json:"application"`
	Conclusion         string  `json:"conclusion"`
	ClosingPrayer      string  `json:"closing_prayer"`
}

// SpliceSection заменяет одну именованную секцию новым текстом.
// Для SectionPoints текст разбирается как markdown-блок пунктов.
// Неизвестное имя секции оставляет структуру без изменений и возвращает false.
func (s *Sections) SpliceSection(name, text string) bool {
	switch name {
	case SectionIntroduction:
		s.Introduction = strings.TrimSpace(text)
	case SectionApplication:
		s.Application = strings.TrimSpace(text)
	case SectionConclusion:
		s.Conclusion = strings.TrimSpace(text)
	case SectionPoints:
		s.Points = parsePointsBlock(text)
	default:
		return false
	}
	return true
}
