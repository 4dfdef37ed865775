package sermon

import (
	"fmt"
	"strings"
)

// Reconstruct собирает markdown-документ из секций в каноническом порядке,
// пропуская пустые секции. Для документа с канонической структурой
// Reconstruct(Parse(doc)) воспроизводит содержимое секций без изменений.
func Reconstruct(s *Sections) string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	if s.Title != "" {
		b.WriteString("# " + s.Title + "\n\n")
	}

	writeSection(&b, "Primary Scripture", s.PrimaryScripture)
	writeSection(&b, "Introduction", s.Introduction)
	writeSection(&b, "Biblical Context", s.BiblicalContext)
	writeSection(&b, "Exegetical Insights", s.ExegeticalInsights)

	if len(s.Points) > 0 {
		b.WriteString("## Sermon Points\n\n")
		for i, point := range s.Points {
			if point.Title != "" {
				b.WriteString(fmt.Sprintf("### Point %d: %s\n\n", i+1, point.Title))
			}
			if point.Content != "" {
				b.WriteString(point.Content + "\n\n")
			}
		}
	}

	writeSection(&b, "Practical Application", s.Application)
	writeSection(&b, "Conclusion", s.Conclusion)
	writeSection(&b, "Closing Prayer", s.ClosingPrayer)

	return strings.TrimSpace(b.String()) + "\n"
}

func writeSection(b *strings.Builder, heading, text string) {
	if text == "" {
		return
	}
	b.WriteString("## " + heading + "\n\n")
	b.WriteString(text + "\n\n")
}
