package llm

import (
	"fmt"
	"strings"
)

// ContactParsePrompt builds the prompt that turns free-form text about a
// person ("met Sarah at the conference, she works at Acme, sarah@acme.com")
// into structured contact fields.
func ContactParsePrompt(text string) string {
	return fmt.Sprintf(`Extract contact details from the text below.

Respond with ONLY a JSON object, no explanation, using exactly these keys:
{
  "name": "full name, required",
  "nickname": "nickname or empty string",
  "email": "email address or empty string",
  "phone": "phone number or empty string",
  "location": "city or place or empty string",
  "notes": "anything else worth remembering, or empty string"
}

Text:
%s`, text)
}

// TagSuggestionPrompt builds the prompt for suggesting tags for a memory.
// Existing tags are passed so the model reuses the user's vocabulary instead
// of inventing near-duplicates.
func TagSuggestionPrompt(content string, existingTags []string) string {
	vocab := "none yet"
	if len(existingTags) > 0 {
		vocab = strings.Join(existingTags, ", ")
	}
	return fmt.Sprintf(`Suggest up to 5 short lowercase tags for this memory about a person.
Prefer tags from the existing vocabulary when they fit.

Existing vocabulary: %s

Respond with ONLY a JSON array of strings, e.g. ["travel", "family"].

Memory:
%s`, vocab, content)
}

// PersonSummaryPrompt builds the prompt for a short narrative summary of a
// person from their memories and life events.
func PersonSummaryPrompt(name string, memories []string, events []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a warm 2-3 sentence summary of what we know about %s.\n", name)
	b.WriteString("Base it only on the notes below. Respond with plain text, no preamble.\n\nMemories:\n")
	if len(memories) == 0 {
		b.WriteString("(none)\n")
	}
	for _, m := range memories {
		fmt.Fprintf(&b, "- %s\n", m)
	}
	b.WriteString("\nLife events:\n")
	if len(events) == 0 {
		b.WriteString("(none)\n")
	}
	for _, e := range events {
		fmt.Fprintf(&b, "- %s\n", e)
	}
	return b.String()
}
