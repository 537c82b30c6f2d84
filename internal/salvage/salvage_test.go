package salvage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		found    bool
	}{
		{"surrounded by prose", `Here is the JSON: {"colors":["black"]} thanks`, `{"colors":["black"]}`, true},
		{"nested", `x {"a":{"b":1}} y {"c":2}`, `{"a":{"b":1}}`, true},
		{"brace in string", `{"s":"}{"}`, `{"s":"}{"}`, true},
		{"escaped quote", `{"s":"a\"}"} tail`, `{"s":"a\"}"}`, true},
		{"unbalanced first then balanced", `{ broken {"ok":true}`, `{"ok":true}`, true},
		{"no object", `just text`, ``, false},
		{"empty", ``, ``, false},
		{"never closes", `{"a":1`, ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstJSONObject(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDecodeObject(t *testing.T) {
	var v struct {
		Colors []string `json:"colors"`
	}
	require.NoError(t, DecodeObject(`Here is the JSON: {"colors":["black"]} thanks`, &v))
	assert.Equal(t, []string{"black"}, v.Colors)

	assert.ErrorIs(t, DecodeObject("nothing", &v), ErrNoObject)
	assert.Error(t, DecodeObject(`{"colors": [1, }`, &v))
	assert.Error(t, DecodeObject(`{"colors": 5}`, &v))
}

func TestFencedBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tagged fence wins over earlier untagged",
			input:    "```\nplain\n```\ntext\n```html\n<p>hi</p>\n```",
			expected: "<p>hi</p>",
		},
		{
			name:     "untagged fence",
			input:    "Sure:\n```\n<div></div>\n```\nDone",
			expected: "<div></div>",
		},
		{
			name:     "other language fence returns raw text",
			input:    "```python\nprint(1)\n```",
			expected: "```python\nprint(1)\n```",
		},
		{
			name:     "untagged fence wins over earlier other language fence",
			input:    "intro\n```css\nbody{}\n```\nand\n```\n<p>untagged</p>\n```\n",
			expected: "<p>untagged</p>",
		},
		{
			name:     "blank info string counts as untagged",
			input:    "```  \n<i>x</i>\n```",
			expected: "<i>x</i>",
		},
		{
			name:     "no fence returns raw text",
			input:    "<html></html>",
			expected: "<html></html>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FencedBlock(tt.input, "html"))
		})
	}
}

func TestBulletLines(t *testing.T) {
	text := "QUESTIONS:\n- What colors should be used?\n-   short  \n  - Should the line grow upward or sideways?\n* not a bullet line at all\n- 123456789\n- 1234567890"

	got := BulletLines(text, "- ", 10)

	assert.Equal(t, []string{
		"What colors should be used?",
		"Should the line grow upward or sideways?",
		"1234567890",
	}, got)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("looks good. APPROVED", "APPROVED"))
	assert.False(t, Contains("approved", "APPROVED"))
	assert.False(t, Contains("anything", ""))
}
