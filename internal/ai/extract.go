package ai

import (
	"fmt"

	"github.com/daystack/daystack/internal/apperr"
)

// ExtractJSON returns the first balanced {...} or [...] span in text.
// Completion models routinely wrap their JSON payload in prose; this strips
// it without trusting the surrounding text. String literals and escape
// sequences inside the payload are honored when matching delimiters.
func ExtractJSON(text string) ([]byte, error) {
	start := -1
	var opener, closer byte
	for i := 0; i < len(text); i++ {
		if text[i] == '{' || text[i] == '[' {
			start = i
			opener = text[i]
			if opener == '{' {
				closer = '}'
			} else {
				closer = ']'
			}
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: no JSON payload in response", apperr.ErrBadResponse)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == opener:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return []byte(text[start : i+1]), nil
			}
		}
	}
	return nil, fmt.Errorf("%w: unbalanced JSON payload in response", apperr.ErrBadResponse)
}
