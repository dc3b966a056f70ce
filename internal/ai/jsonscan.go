package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrNoJSON means no opening bracket of the wanted kind exists in the text.
	ErrNoJSON = errors.New("no json value found")
	// ErrInvalidJSON means opening brackets exist but none starts a valid value.
	ErrInvalidJSON = errors.New("no valid json value found")
)

// FirstJSONArray returns the first syntactically valid JSON array embedded in text.
// Prose before or after the array is ignored.
func FirstJSONArray(text string) (json.RawMessage, error) {
	return firstJSON(text, '[')
}

// FirstJSONObject returns the first syntactically valid JSON object embedded in text.
func FirstJSONObject(text string) (json.RawMessage, error) {
	return firstJSON(text, '{')
}

// firstJSON decodes exactly one value starting at each candidate bracket and
// moves on to the next bracket when decoding fails.
func firstJSON(text string, open byte) (json.RawMessage, error) {
	found := false
	for i := strings.IndexByte(text, open); i >= 0; {
		found = true
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err == nil {
			return raw, nil
		}
		next := strings.IndexByte(text[i+1:], open)
		if next < 0 {
			break
		}
		i += next + 1
	}
	if !found {
		return nil, ErrNoJSON
	}
	return nil, ErrInvalidJSON
}

// stripFences removes a surrounding markdown code fence such as ```json ... ```.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
