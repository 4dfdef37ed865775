package sermon

import (
	"regexp"
	"strings"
)

type lineKind int

const (
	lineBlank lineKind = iota
	lineHeading1
	lineHeading2
	lineHeading3
	lineContent
)

type lineEvent struct {
	kind lineKind
	text string // текст заголовка без маркера или строка содержимого
}

// Состояния автомата: какая секция сейчас открыта.
type sectionState int

const (
	statePreamble sectionState = iota
	statePrimaryScripture
	stateIntroduction
	stateBiblicalContext
	stateExegeticalInsights
	statePoints
	stateApplication
	stateConclusion
	stateClosingPrayer
)

// Таблица переходов по заголовкам второго уровня. Сопоставление нечувствительно
// к регистру и терпимо к небольшим вариациям формулировок.
var headingStates = []struct {
	pattern *regexp.Regexp
	state   sectionState
}{
	{regexp.MustCompile(`(?i)^primary\s+scripture|^scripture`), statePrimaryScripture},
	{regexp.MustCompile(`(?i)^introduction`), stateIntroduction},
	{regexp.MustCompile(`(?i)^biblical\s+context`), stateBiblicalContext},
	{regexp.MustCompile(`(?i)^exegetical\s+insights?`), stateExegeticalInsights},
	{regexp.MustCompile(`(?i)^(sermon|main)\s+points|^points`), statePoints},
	{regexp.MustCompile(`(?i)^(practical\s+)?application`), stateApplication},
	{regexp.MustCompile(`(?i)^conclusion`), stateConclusion},
	{regexp.MustCompile(`(?i)^closing\s+prayer|^prayer`), stateClosingPrayer},
}

var pointHeadingRe = regexp.MustCompile(`(?i)^(?:point\s+\d+\s*:|[IVX]+\.)\s*(.*)$`)

func lex(doc string) []lineEvent {
	lines := strings.Split(doc, "\n")
	events := make([]lineEvent, 0, len(lines))
	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			events = append(events, lineEvent{kind: lineBlank})
		case strings.HasPrefix(trimmed, "### "):
			events = append(events, lineEvent{kind: lineHeading3, text: strings.TrimSpace(trimmed[4:])})
		case strings.HasPrefix(trimmed, "## "):
			events = append(events, lineEvent{kind: lineHeading2, text: strings.TrimSpace(trimmed[3:])})
		case strings.HasPrefix(trimmed, "# "):
			events = append(events, lineEvent{kind: lineHeading1, text: strings.TrimSpace(trimmed[2:])})
		default:
			events = append(events, lineEvent{kind: lineContent, text: line})
		}
	}
	return events
}

func matchState(heading string) (sectionState, bool) {
	for _, h := range headingStates {
		if h.pattern.MatchString(heading) {
			return h.state, true
		}
	}
	return statePreamble, false
}

type parser struct {
	sections     Sections
	state        sectionState
	buffer       []string
	currentPoint *Point
	sawAnything  bool
}

// Parse разбирает markdown-документ на секции. Возвращает nil только для
// пустого документа; любой непустой текст даёт частично заполненную структуру.
func Parse(doc string) *Sections {
	if strings.TrimSpace(doc) == "" {
		return nil
	}

	p := &parser{state: statePreamble}
	for _, ev := range lex(doc) {
		p.consume(ev)
	}
	p.flush()

	return &p.sections
}

func (p *parser) consume(ev lineEvent) {
	switch ev.kind {
	case lineHeading1:
		// Заголовок первого уровня до первой секции — название проповеди.
		if p.state == statePreamble && p.sections.Title == "" {
			p.sections.Title = ev.text
			return
		}
		p.buffer = append(p.buffer, "# "+ev.text)
	case lineHeading2:
		next, ok := matchState(ev.text)
		if !ok {
			// Незнакомый заголовок: остаёмся в текущей секции.
			p.buffer = append(p.buffer, "## "+ev.text)
			return
		}
		p.flush()
		p.state = next
	case lineHeading3:
		if p.state == statePoints {
			if m := pointHeadingRe.FindStringSubmatch(ev.text); m != nil {
				p.flushPoint()
				p.currentPoint = &Point{Title: strings.TrimSpace(m[1])}
				return
			}
		}
		p.buffer = append(p.buffer, "### "+ev.text)
	case lineContent:
		p.buffer = append(p.buffer, ev.text)
		p.sawAnything = true
	case lineBlank:
		if len(p.buffer) > 0 {
			p.buffer = append(p.buffer, "")
		}
	}
}

func (p *parser) flushPoint() {
	if p.currentPoint == nil {
		return
	}
	p.currentPoint.Content = joinBuffer(p.buffer)
	p.sections.Points = append(p.sections.Points, *p.currentPoint)
	p.currentPoint = nil
	p.buffer = nil
}

func (p *parser) flush() {
	if p.state == statePoints {
		if p.currentPoint != nil {
			p.flushPoint()
			return
		}
		// Текст внутри блока пунктов до первого "### Point N:" отбрасывать
		// нельзя: считаем его безымянным пунктом.
		if text := joinBuffer(p.buffer); text != "" {
			p.sections.Points = append(p.sections.Points, Point{Content: text})
		}
		p.buffer = nil
		return
	}

	text := joinBuffer(p.buffer)
	p.buffer = nil
	if text == "" {
		return
	}

	switch p.state {
	case statePrimaryScripture:
		p.sections.PrimaryScripture = text
	case stateIntroduction:
		p.sections.Introduction = text
	case stateBiblicalContext:
		p.sections.BiblicalContext = text
	case stateExegeticalInsights:
		p.sections.ExegeticalInsights = text
	case stateApplication:
		p.sections.Application = text
	case stateConclusion:
		p.sections.Conclusion = text
	case stateClosingPrayer:
		p.sections.ClosingPrayer = text
	case statePreamble:
		// Текст до первой известной секции: без заголовка-маркера считаем
		// его введением, чтобы не терять содержимое.
		if p.sections.Introduction == "" {
			p.sections.Introduction = text
		}
	}
}

func joinBuffer(buffer []string) string {
	return strings.TrimSpace(strings.Join(buffer, "\n"))
}

// parsePointsBlock разбирает отдельный markdown-блок пунктов, каким его
// возвращает перегенерация секции points.
func parsePointsBlock(text string) []Point {
	p := &parser{state: statePoints}
	for _, ev := range lex(text) {
		p.consume(ev)
	}
	p.flush()
	return p.sections.Points
}
