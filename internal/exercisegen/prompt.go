package exercisegen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You create matching exercises for music-theory students.

Rules:
- Produce question cards for the left column and answer cards for the right column.
- Each question lists the labels of every answer card that correctly matches it. A question may match several answers and an answer may match several questions.
- Give answer cards short unique labels (A, B, C, ...).
- Distractor answers are answer cards that no question references. Add exactly as many as requested.
- Card text is plain text: no markdown, no HTML, at most one or two short sentences.
- For notation cards set card_type to "abc", write a complete ABC tune in abc_code (with X:, M:, L: and K: headers) and use the text as a short caption that does not give the answer away. Otherwise set card_type to "text" and abc_code to "".
- Every fact must be correct. Prefer unambiguous matches.
- Do not repeat an exercise from the "already in the library" list.`

// buildUserMessage constructs the user message from the input and limits.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", input.Topic)
	fmt.Fprintf(&b, "Questions: %d\n", input.Pairs)
	fmt.Fprintf(&b, "Distractor answers: %d\n", input.Distractors)
	fmt.Fprintf(&b, "Notation cards allowed: %t\n", input.Notation)

	b.WriteString("\nAlready in the library:\n")
	b.WriteString(buildDedup(input.ExistingTitles, cfg.MaxExistingTitles))

	return b.String()
}

// buildFeedback is the follow-up turn sent after a rejected draft.
func buildFeedback(verr *ValidationError) string {
	return fmt.Sprintf("The exercise was rejected (%s check): %s.\nReturn a corrected exercise following all rules.", verr.Validator, verr.Message)
}

// buildDedup formats existing titles for the prompt, keeping the most
// recent max entries. Returns "None" if there are none.
func buildDedup(titles []string, max int) string {
	if len(titles) == 0 {
		return "None"
	}
	if max > 0 && len(titles) > max {
		titles = titles[len(titles)-max:]
	}

	var b strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	return strings.TrimRight(b.String(), "\n")
}
