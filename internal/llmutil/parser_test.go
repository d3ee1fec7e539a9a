// File: internal/llmutil/parser_test.go
package llmutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONFencedObject(t *testing.T) {
	t.Parallel()
	raw, err := ExtractJSON("```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(raw))
}

func TestExtractJSONFenceWithoutLanguageTag(t *testing.T) {
	t.Parallel()
	raw, err := ExtractJSON("```\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(raw))
}

func TestExtractJSONFencedArray(t *testing.T) {
	t.Parallel()
	raw, err := ExtractJSON("```json\n[{\"a\": 1}]\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"a": 1}]`, string(raw))
}

func TestExtractJSONBare(t *testing.T) {
	t.Parallel()
	raw, err := ExtractJSON(`  {"a": 1}  `)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(raw))
}

func TestExtractJSONEmbeddedInProse(t *testing.T) {
	t.Parallel()
	raw, err := ExtractJSON(`Sure! Here is the plan: {"instruction": "click save"} Hope that helps.`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"instruction": "click save"}`, string(raw))
}

func TestExtractJSONErrors(t *testing.T) {
	t.Parallel()
	for _, input := range []string{"", "   ", "no structure here"} {
		_, err := ExtractJSON(input)
		assert.Error(t, err, "input: %q", input)
	}
}

func TestParseJSONResponse(t *testing.T) {
	t.Parallel()
	type payload struct {
		Instruction string `json:"instruction"`
		Done        bool   `json:"done"`
	}

	got, err := ParseJSONResponse[payload]("```json\n{\"instruction\": \"click save\", \"done\": true}\n```")
	require.NoError(t, err)
	assert.Equal(t, "click save", got.Instruction)
	assert.True(t, got.Done)
}

func TestParseJSONResponseTypeMismatch(t *testing.T) {
	t.Parallel()
	type payload struct {
		Count int `json:"count"`
	}
	_, err := ParseJSONResponse[payload](`{"count": "many"}`)
	assert.Error(t, err)
}
