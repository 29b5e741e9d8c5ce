// Package extract recovers JSON values from free-form LLM output. Model text
// is not contractually structured: it may wrap the payload in code fences,
// prefix it with a "json" label, or surround it with prose. Every LLM-backed
// caller funnels its output through this package so fallback behavior lives
// in exactly one place.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error reports a failed extraction and carries the offending raw text for
// diagnostics. Callers substitute a fallback value; extraction failures are
// never raised into the orchestration loop.
type Error struct {
	Raw string
	Err error
}

func (e *Error) Error() string {
	preview := e.Raw
	if len(preview) > 120 {
		preview = preview[:117] + "..."
	}
	return fmt.Sprintf("extract: %v (raw: %q)", e.Err, preview)
}

func (e *Error) Unwrap() error { return e.Err }

// JSON extracts a JSON value from text. It strips code fences and a leading
// "json" label, and if prose surrounds the payload it slices from the first
// opening delimiter to the last closing delimiter of the same kind. Returns
// (nil, false) when no JSON value can be recovered; it never panics.
func JSON(text string) (any, bool) {
	candidate := Clean(text)
	if candidate == "" {
		return nil, false
	}

	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err == nil {
		return v, true
	}

	sliced, ok := sliceDelimited(candidate)
	if !ok {
		return nil, false
	}
	if err := json.Unmarshal([]byte(sliced), &v); err != nil {
		return nil, false
	}
	return v, true
}

// Object extracts a JSON object, returning an empty map when extraction fails
// or the value is not an object.
func Object(text string) (map[string]any, bool) {
	v, ok := JSON(text)
	if !ok {
		return map[string]any{}, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}, false
	}
	return m, true
}

// List extracts a JSON array, returning an empty slice when extraction fails
// or the value is not an array.
func List(text string) ([]any, bool) {
	v, ok := JSON(text)
	if !ok {
		return []any{}, false
	}
	l, ok := v.([]any)
	if !ok {
		return []any{}, false
	}
	return l, true
}

// Into decodes extracted JSON into a typed value. On failure it returns an
// *Error carrying the raw text so the caller can log it and fall back.
func Into(text string, v any) error {
	candidate := Clean(text)
	if candidate == "" {
		return &Error{Raw: text, Err: fmt.Errorf("empty input")}
	}

	if err := json.Unmarshal([]byte(candidate), v); err == nil {
		return nil
	}

	sliced, ok := sliceDelimited(candidate)
	if !ok {
		return &Error{Raw: text, Err: fmt.Errorf("no JSON delimiters found")}
	}
	if err := json.Unmarshal([]byte(sliced), v); err != nil {
		return &Error{Raw: text, Err: err}
	}
	return nil
}

// Clean strips surrounding whitespace, markdown code fences, and a leading
// case-insensitive "json" label from text.
func Clean(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	// A "json" fence language tag or bare label before the payload.
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		rest := s[4:]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' || rest[0] == '\r' {
			s = strings.TrimSpace(rest)
		}
	}

	return s
}

// sliceDelimited returns the substring between the first opening JSON
// delimiter and the last closing delimiter of the same kind. It prefers a
// brace-balanced match and falls back to the last closer in the text.
func sliceDelimited(s string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' || s[i] == '[' {
			start = i
			open = s[i]
			if open == '{' {
				close = '}'
			} else {
				close = ']'
			}
			break
		}
	}
	if start < 0 {
		return "", false
	}

	// Walk for the matching delimiter, respecting strings and escapes.
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
				return s[start : i+1], true
			}
		}
	}

	// Unbalanced: fall back to the last closing delimiter of the same kind.
	end := strings.LastIndexByte(s, close)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}
