package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"doclens/internal/domain"
)

// Models frequently wrap JSON answers in a fenced code block even when told
// not to. Sanitization removes exactly one leading fence opener (three
// backticks plus an optional language tag) and one trailing fence closer.
var (
	leadingFence  = regexp.MustCompile("^```[a-zA-Z0-9]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?```\\s*$")
)

// SanitizeResponse strips wrapping code fences and trims surrounding
// whitespace. Stripping repeats until the string stops changing, which makes
// the operation idempotent even for doubly-fenced output.
func SanitizeResponse(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := stripFenceOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripFenceOnce(s string) string {
	if loc := leadingFence.FindStringIndex(s); loc != nil {
		s = s[loc[1]:]
	}
	if loc := trailingFence.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}

// ParseStructured sanitizes the raw model output and decodes it as JSON.
// Decode failure is terminal: the caller receives a *MalformedResponseError
// carrying the unmodified raw text, never a partial result.
func ParseStructured(raw string) (json.RawMessage, error) {
	cleaned := SanitizeResponse(raw)

	var probe any
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		return nil, &domain.MalformedResponseError{Raw: raw, Err: err}
	}
	return json.RawMessage(cleaned), nil
}
