// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps language model transports behind a single Model
// interface and provides the ordered-tier fallback policy used by every
// stage that calls a model.
package llm

import (
	"context"
	"encoding/json"
)

// Request is one model invocation.
type Request struct {
	Prompt string

	// Schema, when non-nil, is a JSON schema the response object must follow.
	// The model is asked for JSON and Result.Object is populated.
	Schema map[string]any
}

// Result is the model's answer. Object is nil when a schema was requested
// but the response was not a JSON object.
type Result struct {
	Text   string
	Object map[string]any
}

// Model abstracts a language model so tests can supply a mock. Invoke
// returns a *QuotaError when the provider reports a capacity or quota limit.
type Model interface {
	Name() string
	Invoke(ctx context.Context, req Request) (Result, error)
}

// newResult builds a Result from raw response text.
func newResult(text string, structured bool) Result {
	r := Result{Text: text}
	if structured {
		r.Object = ParseObject(text)
	}
	return r
}

// ParseObject decodes text as a JSON object, salvaging it from code fences
// or surrounding prose when needed. It returns nil when no object is found.
func ParseObject(text string) map[string]any {
	if obj, ok := decodeObject(text); ok {
		return obj
	}
	if raw := ExtractJSON(text); raw != "" {
		if obj, ok := decodeObject(raw); ok {
			return obj
		}
	}
	return nil
}

func decodeObject(s string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}
