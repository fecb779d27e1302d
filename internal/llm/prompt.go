package llm

import (
	"strings"
)

const maxPromptText = 2000

// BuildSystemPrompt composes the system message: output contract, intents,
// currency default and the date anchor.
func BuildSystemPrompt(req ExtractRequest) string {
	defCur := strings.TrimSpace(req.DefaultCurrency)
	if defCur == "" {
		defCur = "USD"
	}

	parts := []string{
		"You extract shared-expense details from a chat message. Return ONLY JSON that matches the provided JSON Schema.",
		"'intent' MUST be exactly one of: " + strings.Join(req.Intents, ", ") + ". If the message is not about money, use 'unclear'.",
		"'amount' is the total paid as a plain decimal string with a dot and at most two decimals (e.g. \"1234.50\"); never include symbols or thousands separators.",
		"'currency' is a 3-letter ISO 4217 code; default to " + defCur + " if no currency is mentioned.",
		"'date' is the expense date as YYYY-MM-DD.",
		"'title' is a 1-4 word description of what was bought (e.g. \"dinner\", \"taxi\").",
		"'participants' lists the people who shared the expense, spelled exactly as in the known participant list. Ignore names that are not in the list.",
		"Never output null. If a field is not present, omit it.",
	}
	if today := strings.TrimSpace(req.Today); today != "" {
		parts = append(parts, "Today is "+today+"; resolve 'today', 'yesterday' and weekday names against it.")
	}
	if tz := strings.TrimSpace(req.Timezone); tz != "" {
		parts = append(parts, "If dates are ambiguous, prefer timezone: "+tz+".")
	}
	if loc := strings.TrimSpace(req.Locale); loc != "" {
		parts = append(parts, "The user writes numbers in the conventions of locale "+loc+".")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the participant list and the message text.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if len(req.Participants) > 0 {
		b.WriteString("Known participants: ")
		b.WriteString(strings.Join(req.Participants, ", "))
		b.WriteString("\n")
	}

	text := strings.TrimSpace(req.Text)
	b.WriteString("\nMessage:\n")
	if len(text) > maxPromptText {
		b.WriteString(text[:maxPromptText])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
