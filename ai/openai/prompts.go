package openai

import (
	"fmt"
	"strings"
)

// buildKeywordPrompt assembles the keyword-extraction prompt for a list of
// cluster sample titles. The model is instructed to answer with a bare JSON
// array so the response can be parsed mechanically.
func buildKeywordPrompt(titles []string) string {
	var b strings.Builder
	b.WriteString("The following is a list of bookmark titles that belong to one topic cluster.\n")
	b.WriteString("Extract the keywords that best represent the cluster's topic.\n\n")
	b.WriteString("Titles:\n")
	b.WriteString(strings.Join(titles, "\n"))
	b.WriteString("\n\nRequirements:\n")
	b.WriteString("- 5 to 15 keywords\n")
	b.WriteString("- short phrases, no sentences\n")
	b.WriteString("- no duplicates\n")
	b.WriteString("Important: answer with a valid JSON array of strings and nothing else.\n")
	b.WriteString(fmt.Sprintf("Example output: %s\n", `["Python", "machine learning", "Docker", "AWS", "React"]`))
	return b.String()
}
