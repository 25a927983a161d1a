// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import "regexp"

var (
	// fencedObjectPattern matches a JSON object inside a markdown code fence.
	fencedObjectPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")

	// bareObjectPattern matches the outermost braces in free text.
	bareObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON returns the JSON object embedded in a model response, with
// trailing commas removed. It returns "" when no object-like text exists.
func ExtractJSON(content string) string {
	var raw string
	if m := fencedObjectPattern.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else {
		raw = bareObjectPattern.FindString(content)
	}
	if raw == "" {
		return ""
	}
	return trailingCommaPattern.ReplaceAllString(raw, "$1")
}
