package plan

import (
	"errors"
	"strings"
)

// ErrNoPlan is returned by Recover when no valid plan can be extracted.
var ErrNoPlan = errors.New("no plan recoverable from text")

// Recover extracts a Plan from generated text. The whole text is tried first;
// failing that, the first balanced {...} object starting at the first '{' is
// tried. Later objects are never considered, even when the first one does not
// match the schema.
func Recover(text string) (*Plan, error) {
	if p, err := Parse([]byte(text)); err == nil {
		return p, nil
	}

	obj, ok := FirstObject(text)
	if !ok {
		return nil, ErrNoPlan
	}
	p, err := Parse([]byte(obj))
	if err != nil {
		return nil, errors.Join(ErrNoPlan, err)
	}
	return p, nil
}

// FirstObject returns the shortest substring that starts at the first '{' in
// text and whose brace depth returns to zero. Braces inside JSON string
// literals are counted like any other brace, so content such as "a { b" can
// unbalance the scan.
func FirstObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
