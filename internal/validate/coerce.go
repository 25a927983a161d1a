// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate reconciles raw extracted values with the schema and
// produces the final model card.
//
// CoerceAndCheck fixes shapes and closed vocabularies field by field,
// recording an issue for every correction. Finalize fills remaining gaps
// with empty defaults and runs one strict validation pass with CUE.
package validate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/modelcard/internal/schema"
)

// Issue key prefixes.
const (
	prefixMissing   = "missing_"
	prefixTypeError = "type_error_"

	// IssueSchemaValidation is recorded when the final strict check fails.
	IssueSchemaValidation = "schema_validation"
)

// MissingIssue returns the issue key for an absent required field.
func MissingIssue(field string) string { return prefixMissing + field }

// TypeErrorIssue returns the issue key for a shape mismatch.
func TypeErrorIssue(field string) string { return prefixTypeError + field }

// CoerceAndCheck returns the cleaned value map and the issues found. The
// function is deterministic and idempotent; keys not in the schema are
// dropped. List-shaped values in the result are always []string.
func CoerceAndCheck(s *schema.Schema, raw map[string]any) (map[string]any, map[string]string) {
	cleaned := make(map[string]any, s.Len())
	issues := map[string]string{}

	for _, f := range s.Fields() {
		coerceField(f, raw, cleaned, issues)

		if _, present := cleaned[f.Name]; !present && f.Required {
			issues[MissingIssue(f.Name)] = fmt.Sprintf("required field %s is missing", f.Name)
		}
	}
	return cleaned, issues
}

func coerceField(f schema.FieldSpec, raw, cleaned map[string]any, issues map[string]string) {
	defer func() {
		if r := recover(); r != nil {
			delete(cleaned, f.Name)
			issues[TypeErrorIssue(f.Name)] = fmt.Sprintf("could not coerce %s: %v", f.Name, r)
		}
	}()

	v, present := raw[f.Name]
	if !present || v == nil {
		return
	}

	if f.Shape == schema.ListOfScalar {
		coerceList(f, v, cleaned, issues)
		return
	}
	coerceScalar(f, v, cleaned, issues)
}

func coerceList(f schema.FieldSpec, v any, cleaned map[string]any, issues map[string]string) {
	list, ok := asStringList(v)
	if !ok {
		if str, isString := v.(string); isString {
			list = splitCommas(str)
		} else if f.HasVocabulary() {
			issues[TypeErrorIssue(f.Name)] = fmt.Sprintf("%s must be a list, got %T; field removed", f.Name, v)
			return
		} else {
			issues[TypeErrorIssue(f.Name)] = fmt.Sprintf("%s must be a list, got %T; wrapped as a single element", f.Name, v)
			list = []string{fmt.Sprint(v)}
		}
	}

	if f.HasVocabulary() {
		kept := make([]string, 0, len(list))
		var dropped []string
		for _, item := range list {
			if f.Allows(item) {
				kept = append(kept, item)
			} else {
				dropped = append(dropped, item)
			}
		}
		if len(dropped) > 0 {
			issues[f.VocabularyIssue()] = fmt.Sprintf("%s: dropped values not in the allowed set: %s",
				f.Name, strings.Join(dropped, ", "))
		}
		list = kept
	}
	cleaned[f.Name] = list
}

func coerceScalar(f schema.FieldSpec, v any, cleaned map[string]any, issues map[string]string) {
	var str string
	switch val := v.(type) {
	case string:
		str = strings.TrimSpace(val)
	case float64:
		str = strconv.FormatFloat(val, 'f', -1, 64)
		issues[TypeErrorIssue(f.Name)] = fmt.Sprintf("%s must be a string, got number %s", f.Name, str)
	case bool, float32, int, int64:
		str = fmt.Sprint(val)
		issues[TypeErrorIssue(f.Name)] = fmt.Sprintf("%s must be a string, got %T %s", f.Name, val, str)
	default:
		if list, ok := asStringList(v); ok {
			str = strings.Join(list, ", ")
			issues[TypeErrorIssue(f.Name)] = fmt.Sprintf("%s must be a single value, got a list; joined", f.Name)
		} else {
			str = fmt.Sprint(v)
			issues[TypeErrorIssue(f.Name)] = fmt.Sprintf("%s must be a single value, got %T", f.Name, v)
		}
	}

	if f.HasVocabulary() && !f.Allows(str) {
		issues[f.VocabularyIssue()] = fmt.Sprintf("%s: %q is not an allowed value, replaced with %q",
			f.Name, str, f.Fallback)
		str = f.Fallback
	}
	cleaned[f.Name] = str
}

// asStringList converts list-typed values to trimmed non-empty strings.
// Nil elements are dropped. It reports false for non-list values.
func asStringList(v any) ([]string, bool) {
	var items []any
	switch val := v.(type) {
	case []string:
		items = make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}
	case []any:
		items = val
	default:
		return nil, false
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(item))
		if s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

// splitCommas splits s on commas into trimmed non-empty tokens.
func splitCommas(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SortedIssueKeys returns the issue keys in lexical order.
func SortedIssueKeys(issues map[string]string) []string {
	keys := make([]string, 0, len(issues))
	for k := range issues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
