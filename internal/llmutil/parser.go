// File: internal/llmutil/parser.go
package llmutil

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	// Regex definitions use \x60 (hex representation) for backticks because Go raw strings cannot contain backticks.

	// fencedObjectRegex extracts a JSON object wrapped in a markdown fence.
	fencedObjectRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*({.*})\\s*\x60\x60\x60")
	// fencedArrayRegex extracts a JSON array wrapped in a markdown fence.
	fencedArrayRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*(\\[.*\\])\\s*\x60\x60\x60")
)

// ExtractJSON pulls the JSON payload out of a model response. Models wrap
// output in markdown fences or lead with conversational text even when asked
// for bare JSON, so this peels fences first and falls back to scanning for
// the outermost object or array boundaries.
func ExtractJSON(response string) (json.RawMessage, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, fmt.Errorf("empty model response")
	}

	isObject := strings.Contains(response, "{")
	isArray := strings.Contains(response, "[")
	if !isObject && !isArray {
		return nil, fmt.Errorf("model response contains no JSON structure")
	}

	// 1. Markdown fences.
	if strings.HasPrefix(response, "```") {
		var matches []string
		if isObject {
			matches = fencedObjectRegex.FindStringSubmatch(response)
		}
		if len(matches) <= 1 && isArray {
			matches = fencedArrayRegex.FindStringSubmatch(response)
		}
		if len(matches) > 1 {
			return json.RawMessage(matches[1]), nil
		}
	}

	// 2. Already bare JSON.
	if strings.HasPrefix(response, "{") || strings.HasPrefix(response, "[") {
		return json.RawMessage(response), nil
	}

	// 3. JSON embedded in conversational text: take the outermost structure.
	if isObject {
		if fb, lb := strings.Index(response, "{"), strings.LastIndex(response, "}"); fb != -1 && lb > fb {
			return json.RawMessage(response[fb : lb+1]), nil
		}
	}
	if isArray {
		if fb, lb := strings.Index(response, "["), strings.LastIndex(response, "]"); fb != -1 && lb > fb {
			return json.RawMessage(response[fb : lb+1]), nil
		}
	}
	return nil, fmt.Errorf("could not locate JSON structure in model response")
}

// ParseJSONResponse parses a model response string into a target Go type,
// tolerating markdown fences and surrounding prose.
func ParseJSONResponse[T any](response string) (*T, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model JSON response: %w. Extracted JSON (truncated): %s",
			err, truncateString(string(raw), 500))
	}
	return &result, nil
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 0 {
		return ""
	}
	return s[:maxLen] + "..."
}
