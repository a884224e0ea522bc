package plan

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverFromProse(t *testing.T) {
	text := "Sure! Here is the plan you asked for:\n```json\n" +
		`{"description":"add docs","actions":[{"type":"write_file","path":"README.md","content":"# Hi"}]}` +
		"\n```\nLet me know if you need anything else."

	p, err := Recover(text)
	require.NoError(t, err)

	want := &Plan{
		Description: "add docs",
		Actions:     []Action{WriteFile{Path: "README.md", Content: "# Hi"}},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("Recover mismatch (-want +got):\n%s", diff)
	}
}

func TestRecoverFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "no brace", text: "I cannot help with that."},
		{name: "unbalanced", text: `here is { "description": "x"`},
		{name: "balanced but wrong schema", text: `result: {"summary": "x"}`},
		{
			// Only the first object is considered.
			name: "first object wrong, second valid",
			text: `{"note":"ignore"} {"description":"d","actions":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Recover(tt.text)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, ErrNoPlan), "expected ErrNoPlan, got %v", err)
		})
	}
}

func TestFirstObject(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "simple", text: `x {"a":1} y`, want: `{"a":1}`, wantOK: true},
		{name: "nested", text: `{"a":{"b":{}}} tail}`, want: `{"a":{"b":{}}}`, wantOK: true},
		{name: "first of two", text: `{"a":1}{"b":2}`, want: `{"a":1}`, wantOK: true},
		{name: "none", text: `no json here`, wantOK: false},
		{name: "never closes", text: `{"a":{"b":1}`, wantOK: false},
		{
			// Braces inside strings are not skipped.
			name:   "brace inside string",
			text:   `{"content":"}"}`,
			want:   `{"content":"}`,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstObject(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
