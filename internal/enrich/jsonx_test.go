package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON_JSONFence(t *testing.T) {
	text := "Here is the analysis:\n```json\n{\"a\": 1}\n```\nLet me know if you need more."

	assert.Equal(t, `{"a": 1}`, ExtractJSON(text))
}

func TestExtractJSON_PlainFence(t *testing.T) {
	text := "```\n{\"a\": 1}\n```"

	assert.Equal(t, `{"a": 1}`, ExtractJSON(text))
}

func TestExtractJSON_NoFence(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, ExtractJSON("  {\"a\": 1}\n"))
}

func TestExtractJSON_UnterminatedFence(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, ExtractJSON("```json\n{\"a\": 1}"))
}
