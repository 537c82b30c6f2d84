// Package salvage extracts structured payloads from free-form LLM output.
//
// Every function here is best-effort and follows an explicit fallback
// ladder, so the lossy parsing of model text lives in one place:
//
//   - FirstJSONObject: the first balanced {...} span
//   - FencedBlock: a tagged fence, then an untagged fence, then the raw text
//   - BulletLines: marker-prefixed lines above a minimum length
package salvage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoObject is returned when text contains no balanced JSON object.
var ErrNoObject = errors.New("salvage: no JSON object found")

// FirstJSONObject returns the first balanced {...} span in text.
// Braces inside JSON string literals do not count towards the balance.
func FirstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end, ok := matchBrace(text, start); ok {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// DecodeObject decodes the first balanced JSON object in text into v.
func DecodeObject(text string, v any) error {
	span, ok := FirstJSONObject(text)
	if !ok {
		return ErrNoObject
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return fmt.Errorf("salvage: decode object: %w", err)
	}
	return nil
}

const fenceMarker = "```"

// fence is one closed fenced block. info is the trimmed text after the
// opening marker.
type fence struct {
	info string
	body string
}

// fences returns the closed fenced blocks of text in order. Markers are
// only recognised at the start of a line, so a closing marker is never
// mistaken for the opening of the next block.
func fences(text string) []fence {
	var (
		found []fence
		open  bool
		info  string
		body  []string
	)
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, fenceMarker) {
			if open {
				body = append(body, line)
			}
			continue
		}
		if open {
			found = append(found, fence{info: info, body: strings.Join(body, "\n")})
			open = false
			continue
		}
		open = true
		info = strings.TrimSpace(strings.TrimPrefix(trimmed, fenceMarker))
		body = body[:0]
	}
	return found
}

// FencedBlock returns the payload of the first fence tagged lang, else the
// first untagged fence, else text unchanged. Fences tagged with another
// language are never used.
func FencedBlock(text, lang string) string {
	blocks := fences(text)
	if lang != "" {
		for _, b := range blocks {
			if b.info == lang {
				return strings.TrimSpace(b.body)
			}
		}
	}
	for _, b := range blocks {
		if b.info == "" {
			return strings.TrimSpace(b.body)
		}
	}
	return text
}

// BulletLines returns the trimmed remainder of every line starting with
// marker, dropping items shorter than minLen runes.
func BulletLines(text, marker string, minLen int) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, marker) {
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(line, marker))
		if len([]rune(item)) < minLen {
			continue
		}
		items = append(items, item)
	}
	return items
}

// Contains reports whether token appears in text. An empty token never matches.
func Contains(text, token string) bool {
	return token != "" && strings.Contains(text, token)
}
