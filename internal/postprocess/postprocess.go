// Package postprocess removes common LLM artifacts from model answers.
//
// It is applied by every chat backend (Ollama, OpenRouter, OpenAI-compatible)
// to the raw completion text before the draft reaches the refinement loop, so
// that convergence is judged on the answer itself and not on wrapper noise.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text in three phases and returns the
// trimmed result:
//  1. Thinking / reasoning block removal
//  2. Instruction echo removal ("Refined response:" and friends)
//  3. Quote wrapping removal (single-line answers only)
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches complete <think>…</think> style blocks emitted by
// reasoning models. RE2 has no backreferences, so each tag is listed.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches a response that opens with a thinking tag
// whose closing tag is missing (the model was cut off mid-thought). A tag
// mentioned later in the text is content and is kept.
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)^\s*(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: instruction echoes ---

// echoPatterns match headers a model prepends when it parrots the end of the
// refinement instruction. Anchored at the start and require a colon.
var echoPatterns = []*regexp.Regexp{
	// "Refined response:" / "Improved answer:" / "Final response:"
	regexp.MustCompile(`(?i)^(?:the )?(?:refined|improved|revised|final) (?:response|answer|draft)\s*:`),
	// "Here is / Here's [the|my] [refined|improved|revised] response:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| my)? (?:refined |improved |revised |updated )?(?:response|answer|draft)\s*:`),
	// "Certainly / Sure / Of course[,] here is [the] refined response:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]? here(?:'s| is)(?: the| my)? (?:refined |improved |revised |updated )?(?:response|answer|draft)\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: quote wrapping ---

// removeQuoteWrapping strips a matching pair of outer quotes when a
// single-line answer is wrapped in them. Multi-line answers are left alone:
// a paragraph that starts and ends with a quotation is usually content.
//
//	"…"  '…'  «…»  “…”  ‘…’
func removeQuoteWrapping(text string) string {
	if strings.Contains(text, "\n") {
		return text
	}
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
