package validation

import (
	"regexp"
	"strings"
)

var (
	multiSpaceRe   = regexp.MustCompile(`\s+`)
	scriptBlockRe  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	eventHandlerRe = regexp.MustCompile(`(?i)\s+on[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	jsURIRe        = regexp.MustCompile(`(?i)javascript\s*:`)
)

func sanitizeString(str string, rule Rule) string {
	switch rule.Sanitize {
	case SanitizeText:
		return sanitizeText(str, rule.MaxLength)
	case SanitizeHTML:
		return sanitizeText(stripHTML(str), rule.MaxLength)
	default:
		return str
	}
}

// sanitizeText убирает нулевые байты, схлопывает пробельные последовательности,
// обрезает края и усекает до maxLen. Повторная санитизация уже чистой строки
// возвращает её без изменений.
func sanitizeText(str string, maxLen int) string {
	str = strings.ReplaceAll(str, "\x00", "")
	str = multiSpaceRe.ReplaceAllString(str, " ")
	str = strings.TrimSpace(str)
	if maxLen > 0 && len(str) > maxLen {
		str = str[:maxLen]
	}
	return str
}

func stripHTML(str string) string {
	str = scriptBlockRe.ReplaceAllString(str, "")
	str = eventHandlerRe.ReplaceAllString(str, "")
	str = jsURIRe.ReplaceAllString(str, "")
	return str
}
