// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"github.com/pdiddy/modelcard/internal/validate"
	"github.com/pdiddy/modelcard/pkg/types"
)

// Issue is one validation issue in a report.
type Issue struct {
	Key     string `json:"key" yaml:"key"`
	Message string `json:"message" yaml:"message"`
}

// FailureReport summarises a run for diagnosis. Issues are sorted by key.
type FailureReport struct {
	State   types.RunState     `json:"state" yaml:"state"`
	Trace   []types.RunState   `json:"trace" yaml:"trace"`
	Errors  []types.Diagnostic `json:"errors" yaml:"errors"`
	Issues  []Issue            `json:"issues" yaml:"issues"`
	Partial map[string]any     `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// Report builds the diagnostic view of rc.
func Report(rc *types.RunContext) FailureReport {
	r := FailureReport{
		State:   rc.State,
		Trace:   rc.Trace,
		Errors:  rc.Errors,
		Partial: rc.Partial,
	}
	for _, k := range validate.SortedIssueKeys(rc.Issues) {
		r.Issues = append(r.Issues, Issue{Key: k, Message: rc.Issues[k]})
	}
	return r
}
