package analyzer

import (
	"strings"

	"journai/internal/journal"
)

const analysisInstructions = `You are an emotionally perceptive assistant. Read the journal entry and describe it as strict JSON.

TASK:
1. Pick the single mood that best matches the entry.
2. Write a one-line summary of the writer's day or emotional state in 15 to 30 words.
3. Give a short reason that points at the phrases or signals behind the mood.

RESPONSE FORMAT:
Reply with exactly one JSON object and nothing else:
{"mood": "<mood>", "summary": "<summary>", "reason": "<reason>"}

RULES:
- mood must be one of: {{MOODS}}.
- Never use a mood word outside that list.
- Use "neutral" for matter-of-fact entries without a strong emotion.
- Use "tired" for physical or mental exhaustion.
- Do not wrap the JSON in code fences or add commentary.`

func moodList() string {
	moods := journal.AllMoods()
	labels := make([]string, 0, len(moods))
	for _, mood := range moods {
		labels = append(labels, mood.String())
	}
	return strings.Join(labels, ", ")
}

// Instructions returns the system-level analysis instructions.
func Instructions() string {
	return strings.Replace(analysisInstructions, "{{MOODS}}", moodList(), 1)
}

// BuildPrompt embeds the journal text under the analysis instructions for
// providers that take a single prompt.
func BuildPrompt(text string) string {
	var b strings.Builder
	b.WriteString(Instructions())
	b.WriteString("\n\nJOURNAL ENTRY:\n")
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n")
	return b.String()
}
