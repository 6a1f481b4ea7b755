package llm

import (
	"github.com/pkoukk/tiktoken-go"
)

// estimateTokens approximates the token count of a text when the provider
// does not report usage. Falls back to cl100k_base for unknown models.
func estimateTokens(model, text string) int {
	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tke, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			// Rough character heuristic as the last resort.
			return len(text) / 4
		}
	}
	return len(tke.Encode(text, nil, nil))
}
