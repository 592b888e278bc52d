package chunker

import "strings"

// EstimateTokens approximates a token count from the word count, about 1.33
// tokens per English word. Never returns 0 for non-empty text.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := int(float64(len(strings.Fields(text))) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
