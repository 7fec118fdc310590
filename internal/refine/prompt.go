package refine

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePrompt puts user input into NFC form and trims surrounding
// whitespace, so the same question typed on different systems reaches the
// model as the same bytes.
func NormalizePrompt(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// BuildInstruction returns the fixed critique-and-improve instruction for one
// refinement step. prompt is the user's original request; draft is the
// answer produced by the previous step.
func BuildInstruction(prompt, draft string) string {
	return fmt.Sprintf(`You are an AI assistant tasked with providing a thoughtful and comprehensive response to the following prompt:

%s

Your current draft response is:

%s

Carefully analyze this draft. Consider its accuracy, comprehensiveness, and how directly it addresses the original prompt.
Refine and improve your response, focusing on clarity, conciseness, and addressing all aspects of the prompt.
Do not mention the improvement process or include any meta-commentary about the response.
Simply provide the improved response as if it were your first and only answer to the original prompt.

Refined response:
`, prompt, draft)
}

// ParseIterations reads a user-supplied iteration count. Anything that is not
// a positive integer yields DefaultIterations.
func ParseIterations(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return DefaultIterations
	}
	return n
}
