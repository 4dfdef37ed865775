package generation

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are an experienced pastor and Bible teacher. " +
	"You write biblically faithful, well-structured content in markdown."

func buildPrompt(req GenerateRequest) (string, string) {
	var b strings.Builder

	if req.Mode == "study" {
		b.WriteString("Write a Bible study on the following topic or passage: ")
		b.WriteString(req.Input)
		b.WriteString("\n\nStructure it with a title, key scripture, observations, interpretation, and discussion questions.")
		return systemPrompt, b.String()
	}

	b.WriteString("Write a complete sermon on the following topic or passage: ")
	b.WriteString(req.Input)
	b.WriteString("\n\nUse exactly this markdown structure: a level-1 title, then the level-2 sections " +
		"\"Primary Scripture\", \"Introduction\", \"Biblical Context\", \"Exegetical Insights\", " +
		"\"Sermon Points\" (with level-3 headings \"Point N: ...\"), \"Practical Application\", " +
		"\"Conclusion\" and \"Closing Prayer\".")

	opts := req.SermonOptions
	if opts.Audience != "" {
		fmt.Fprintf(&b, "\nAudience: %s.", opts.Audience)
	}
	if opts.TeachingStyle != "" {
		fmt.Fprintf(&b, "\nTeaching style: %s.", opts.TeachingStyle)
	}
	if opts.CulturalContext != "" {
		fmt.Fprintf(&b, "\nCultural context: %s.", opts.CulturalContext)
	}
	if opts.Tone != "" {
		fmt.Fprintf(&b, "\nTone: %s.", opts.Tone)
	}
	if opts.Length != "" {
		fmt.Fprintf(&b, "\nLength: %s.", opts.Length)
	}

	return systemPrompt, b.String()
}

func buildRegeneratePrompt(req RegenerateRequest, full bool) (string, string) {
	var b strings.Builder

	if full {
		b.WriteString("Rewrite the following sermon, keeping its topic and scripture but producing fresh material")
		if req.Section == "illustrations" {
			b.WriteString(" with new illustrations throughout")
		}
		b.WriteString(". Keep the same markdown section structure.\n\n")
	} else {
		fmt.Fprintf(&b, "Rewrite only the %q section of the following sermon. ", req.Section)
		b.WriteString("Return just the markdown block for that section, without the level-2 heading.\n\n")
	}

	if req.AdditionalNote != "" {
		fmt.Fprintf(&b, "Additional instruction: %s\n\n", req.AdditionalNote)
	}
	b.WriteString("Original sermon:\n\n")
	b.WriteString(req.OriginalSermon)

	return systemPrompt, b.String()
}
