// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Document is one bounded-size passage of ingested text together with the
// identifier of the source it came from.
type Document struct {
	Text   string `json:"text" yaml:"text"`
	Source string `json:"source" yaml:"source"`
}

// Provenance carries metadata about the ingested sources that lets some
// fields be derived without a model call.
type Provenance struct {
	// SourceID is the repository identifier (last URL path segment).
	SourceID string `json:"source_id" yaml:"source_id"`

	// Contributors lists unique commit authors in first-seen order.
	Contributors []string `json:"contributors" yaml:"contributors"`

	// License is the first line of the repository LICENSE file, if any.
	License string `json:"license,omitempty" yaml:"license,omitempty"`
}

// ErrorKind classifies a run diagnostic.
type ErrorKind string

const (
	KindIngestion       ErrorKind = "ingestion_failure"
	KindIndex           ErrorKind = "index_failure"
	KindFieldExtraction ErrorKind = "field_extraction_failure"
	KindEnrichment      ErrorKind = "enrichment_failure"
	KindSchema          ErrorKind = "schema_validation_failure"
	KindInternal        ErrorKind = "internal"
)

// Diagnostic is one recorded error. Soft diagnostics are informational and
// never affect routing.
type Diagnostic struct {
	Kind    ErrorKind `json:"kind" yaml:"kind"`
	Stage   string    `json:"stage" yaml:"stage"`
	Field   string    `json:"field,omitempty" yaml:"field,omitempty"`
	Message string    `json:"message" yaml:"message"`
	Soft    bool      `json:"soft,omitempty" yaml:"soft,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Field != "" {
		return fmt.Sprintf("%s [%s] %s: %s", d.Stage, d.Kind, d.Field, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s", d.Stage, d.Kind, d.Message)
}

// RunState names a state of the pipeline state machine.
type RunState string

const (
	StateIngest   RunState = "INGEST"
	StateExtract  RunState = "EXTRACT"
	StateEnrich   RunState = "ENRICH"
	StateValidate RunState = "VALIDATE"
	StateSuccess  RunState = "SUCCESS"
	StateFailure  RunState = "FAILURE"
)

// Terminal reports whether s ends a run.
func (s RunState) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}

// RunInputs holds the source locations for one run.
type RunInputs struct {
	GitHubURL string `json:"github_url" yaml:"github_url"`
	DocsURL   string `json:"docs_url" yaml:"docs_url"`

	// Name overrides the capability name derived from the repository URL.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// RunContext is the mutable record for one pipeline run. The orchestrator
// owns it; stages append to Errors and write only their own outputs.
type RunContext struct {
	Inputs     RunInputs  `json:"inputs" yaml:"inputs"`
	Documents  []Document `json:"-" yaml:"-"`
	Provenance Provenance `json:"provenance" yaml:"provenance"`

	// Extracted maps field name to its raw extracted value. A nil value
	// means the field was attempted and found absent.
	Extracted map[string]any `json:"extracted" yaml:"extracted"`

	// Errors is append-only for the duration of a run.
	Errors []Diagnostic `json:"errors" yaml:"errors"`

	// Issues is rebuilt by each validation pass.
	Issues map[string]string `json:"issues" yaml:"issues"`

	// Card is set only when final validation succeeded.
	Card *ModelCard `json:"card,omitempty" yaml:"card,omitempty"`

	// Partial is the best-effort record when validation failed.
	Partial map[string]any `json:"partial,omitempty" yaml:"partial,omitempty"`

	State RunState   `json:"state" yaml:"state"`
	Trace []RunState `json:"trace" yaml:"trace"`
}

// NewRunContext returns an empty context positioned at INGEST.
func NewRunContext(in RunInputs) *RunContext {
	return &RunContext{
		Inputs:    in,
		Extracted: map[string]any{},
		Issues:    map[string]string{},
		State:     StateIngest,
	}
}

// AddError appends a diagnostic.
func (rc *RunContext) AddError(d Diagnostic) {
	rc.Errors = append(rc.Errors, d)
}

// HasError reports whether a hard diagnostic of the given kind was recorded.
func (rc *RunContext) HasError(kind ErrorKind) bool {
	for _, d := range rc.Errors {
		if d.Kind == kind && !d.Soft {
			return true
		}
	}
	return false
}

// ErrorStrings renders every diagnostic in recording order.
func (rc *RunContext) ErrorStrings() []string {
	out := make([]string, len(rc.Errors))
	for i, d := range rc.Errors {
		out[i] = d.String()
	}
	return out
}
