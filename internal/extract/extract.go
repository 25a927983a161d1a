// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract derives a value for each model card field by retrieving
// context passages and asking a language model for a single-key JSON
// object. A field that cannot be extracted is recorded as an explicit null
// with at most one diagnostic; no single field aborts the run.
package extract

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/modelcard/internal/index"
	"github.com/pdiddy/modelcard/internal/llm"
	"github.com/pdiddy/modelcard/internal/schema"
	"github.com/pdiddy/modelcard/pkg/types"
)

const (
	stageName = "extract"
	defaultK  = 7
)

var (
	// ErrNotObject is recorded when the model response is not a JSON object.
	ErrNotObject = errors.New("model response is not a JSON object")

	// ErrMissingKey is recorded when the response object lacks the field key.
	ErrMissingKey = errors.New("model response missing field key")
)

// Candidate is the outcome of one field extraction. A nil Value with a nil
// Err means the model or the retriever found nothing.
type Candidate struct {
	Value    any
	Err      error
	Passages int
}

// Options tunes an Extractor.
type Options struct {
	// K is the number of passages retrieved per field (default 7).
	K      int
	Logger *zap.Logger
}

// Extractor runs retrieval-augmented extraction over a schema.
type Extractor struct {
	schema    *schema.Schema
	retriever index.Retriever
	model     llm.Model
	k         int
	logger    *zap.Logger
}

// New returns an Extractor. model is typically an *llm.TierPolicy so quota
// errors fall back to reduced-capability tiers.
func New(s *schema.Schema, retriever index.Retriever, model llm.Model, opts Options) *Extractor {
	k := opts.K
	if k <= 0 {
		k = defaultK
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{schema: s, retriever: retriever, model: model, k: k, logger: logger}
}

// Run prepopulates deterministic fields, then extracts every other field in
// schema order into rc.Extracted.
func (e *Extractor) Run(ctx context.Context, rc *types.RunContext) {
	locked := Prepopulate(rc)

	capability, _ := rc.Extracted[schema.FieldCapabilityName].(string)

	for _, f := range e.schema.Fields() {
		if locked[f.Name] {
			e.logger.Debug("field prepopulated", zap.String("field", f.Name))
			continue
		}

		cand := e.ExtractField(ctx, f, capability)
		if cand.Err != nil {
			rc.AddError(types.Diagnostic{
				Kind:    types.KindFieldExtraction,
				Stage:   stageName,
				Field:   f.Name,
				Message: cand.Err.Error(),
			})
			e.logger.Warn("field extraction failed", zap.String("field", f.Name), zap.Error(cand.Err))
		}

		if cand.Value == nil {
			// A seeded value survives a null or failed extraction.
			if rc.Extracted[f.Name] != nil {
				continue
			}
			rc.Extracted[f.Name] = nil
			continue
		}
		rc.Extracted[f.Name] = cand.Value
	}
}

// ExtractField extracts one field. It never panics.
func (e *Extractor) ExtractField(ctx context.Context, f schema.FieldSpec, capability string) (cand Candidate) {
	defer func() {
		if r := recover(); r != nil {
			cand = Candidate{Err: fmt.Errorf("extracting %s: panic: %v", f.Name, r)}
		}
	}()

	query := retrievalQuery(f.Name, capability)
	passages, err := e.retriever.Search(ctx, query, e.k)
	if err != nil {
		return Candidate{Err: fmt.Errorf("retrieving context: %w", err)}
	}
	if len(passages) == 0 {
		e.logger.Debug("no context retrieved, skipping model", zap.String("field", f.Name))
		return Candidate{}
	}

	prompt, err := renderPrompt(f, passages)
	if err != nil {
		return Candidate{Err: fmt.Errorf("rendering prompt: %w", err)}
	}

	res, err := e.model.Invoke(ctx, llm.Request{Prompt: prompt, Schema: responseSchema(f)})
	if err != nil {
		return Candidate{Err: fmt.Errorf("invoking model: %w", err), Passages: len(passages)}
	}

	if res.Object == nil {
		return Candidate{Err: ErrNotObject, Passages: len(passages)}
	}
	v, ok := res.Object[f.Name]
	if !ok {
		return Candidate{Err: fmt.Errorf("%w %q (got %s)", ErrMissingKey, f.Name, objectKeys(res.Object)), Passages: len(passages)}
	}

	e.logger.Debug("field extracted",
		zap.String("field", f.Name),
		zap.Int("passages", len(passages)),
		zap.Bool("null", v == nil))
	return Candidate{Value: v, Passages: len(passages)}
}

func retrievalQuery(field, capability string) string {
	if capability == "" {
		return fmt.Sprintf("Extract '%s' for this scientific software.", field)
	}
	return fmt.Sprintf("Extract '%s' for the scientific software %s.", field, capability)
}

func objectKeys(obj map[string]any) string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return "[" + strings.Join(keys, ", ") + "]"
}
