package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParsedContact is the structured result of contact parsing.
type ParsedContact struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// ParseContactResponse extracts a ParsedContact from raw model output. Models
// wrap JSON in code fences and chatter, so the parser locates the first JSON
// object in the text rather than decoding the whole response.
func ParseContactResponse(raw string) (*ParsedContact, error) {
	obj := extractJSON(raw, '{', '}')
	if obj == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var contact ParsedContact
	if err := json.Unmarshal([]byte(obj), &contact); err != nil {
		return nil, fmt.Errorf("parse contact JSON: %w", err)
	}
	contact.Name = strings.TrimSpace(contact.Name)
	if contact.Name == "" {
		return nil, fmt.Errorf("contact response missing name")
	}
	return &contact, nil
}

// ParseTagsResponse extracts a tag list from raw model output. Tags are
// lowercased, trimmed, and deduplicated; blanks are dropped. Returns an empty
// slice rather than an error when the model produced an empty array.
func ParseTagsResponse(raw string) ([]string, error) {
	arr := extractJSON(raw, '[', ']')
	if arr == "" {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	var tags []string
	if err := json.Unmarshal([]byte(arr), &tags); err != nil {
		return nil, fmt.Errorf("parse tags JSON: %w", err)
	}

	seen := make(map[string]bool, len(tags))
	cleaned := []string{}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		cleaned = append(cleaned, tag)
	}
	return cleaned, nil
}

// stripCodeFences removes markdown code fences (``` and ```json) from model
// output, keeping the fenced content.
func stripCodeFences(raw string) string {
	if !strings.Contains(raw, "```") {
		return raw
	}
	var b strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// extractJSON returns the first balanced JSON value delimited by open/close
// in the text, or "" when none is found. Bracket depth is tracked outside of
// string literals so braces inside values don't break the match.
func extractJSON(raw string, open, close byte) string {
	text := stripCodeFences(raw)

	start := strings.IndexByte(text, open)
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == open:
			depth++
		case !inString && c == close:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
