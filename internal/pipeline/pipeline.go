// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the model card state machine:
//
//	INGEST -> EXTRACT -> ENRICH -> VALIDATE -> {SUCCESS, FAILURE}
//
// Every collaborator is injected through Config. Each stage runs inside a
// recover boundary; a panic becomes an internal diagnostic and the run
// moves on as if the stage produced nothing.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/modelcard/internal/extract"
	"github.com/pdiddy/modelcard/internal/index"
	"github.com/pdiddy/modelcard/internal/ingest"
	"github.com/pdiddy/modelcard/internal/llm"
	"github.com/pdiddy/modelcard/internal/schema"
	"github.com/pdiddy/modelcard/internal/validate"
	"github.com/pdiddy/modelcard/pkg/types"
)

// IssueSynthesis is recorded when extraction produced no value at all.
const IssueSynthesis = "synthesis"

// Store is a built context index. *index.Index satisfies it.
type Store interface {
	index.Retriever
	Build(ctx context.Context, docs []types.Document) (index.BuildSummary, error)
	Close() error
}

// IndexOpener opens the persisted index for a stable name.
type IndexOpener func(name string) (Store, error)

// Enricher fills fields from sources outside the index.
type Enricher interface {
	Run(ctx context.Context, rc *types.RunContext)
}

// Config wires a Pipeline.
type Config struct {
	Schema    *schema.Schema
	Sources   []ingest.Source
	OpenIndex IndexOpener
	Model     llm.Model

	// Enricher is optional; a nil Enricher makes ENRICH a no-op.
	Enricher Enricher

	// K is the number of passages retrieved per field.
	K      int
	Logger *zap.Logger
}

// Pipeline executes runs. It holds no per-run state and may be reused.
type Pipeline struct {
	cfg    Config
	logger *zap.Logger
}

// New returns a Pipeline. A nil Schema uses schema.Default().
func New(cfg Config) *Pipeline {
	if cfg.Schema == nil {
		cfg.Schema = schema.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// run carries state scoped to one execution.
type run struct {
	rc    *types.RunContext
	store Store
}

// stageFunc executes one state and returns the next one.
type stageFunc func(ctx context.Context, r *run) types.RunState

// afterPanic is the state a stage hands over to when it panicked.
var afterPanic = map[types.RunState]types.RunState{
	types.StateIngest:   types.StateFailure,
	types.StateExtract:  types.StateEnrich,
	types.StateEnrich:   types.StateValidate,
	types.StateValidate: types.StateFailure,
}

// Run drives rc from its current state to a terminal state and returns it.
func (p *Pipeline) Run(ctx context.Context, rc *types.RunContext) *types.RunContext {
	if rc.State == "" {
		rc.State = types.StateIngest
	}
	if rc.Extracted == nil {
		rc.Extracted = map[string]any{}
	}
	if rc.Issues == nil {
		rc.Issues = map[string]string{}
	}

	r := &run{rc: rc}
	defer func() {
		if r.store != nil {
			if err := r.store.Close(); err != nil {
				p.logger.Warn("closing index", zap.Error(err))
			}
		}
	}()

	stages := map[types.RunState]stageFunc{
		types.StateIngest:   p.ingest,
		types.StateExtract:  p.extract,
		types.StateEnrich:   p.enrich,
		types.StateValidate: p.validate,
	}

	rc.Trace = append(rc.Trace, rc.State)
	for !rc.State.Terminal() {
		stage, ok := stages[rc.State]
		if !ok {
			rc.AddError(types.Diagnostic{Kind: types.KindInternal, Stage: "pipeline",
				Message: fmt.Sprintf("unknown state %q", rc.State)})
			rc.State = types.StateFailure
			rc.Trace = append(rc.Trace, rc.State)
			break
		}

		next := p.guard(ctx, rc.State, stage, r)
		p.logger.Info("state transition", zap.String("from", string(rc.State)), zap.String("to", string(next)))
		rc.State = next
		rc.Trace = append(rc.Trace, next)
	}

	p.logger.Info("run finished",
		zap.String("state", string(rc.State)),
		zap.Int("errors", len(rc.Errors)),
		zap.Int("issues", len(rc.Issues)))
	return rc
}

// guard runs stage and converts a panic into an internal diagnostic.
func (p *Pipeline) guard(ctx context.Context, state types.RunState, stage stageFunc, r *run) (next types.RunState) {
	defer func() {
		if v := recover(); v != nil {
			r.rc.AddError(types.Diagnostic{
				Kind:    types.KindInternal,
				Stage:   stageLabel(state),
				Message: fmt.Sprintf("panic: %v", v),
			})
			p.logger.Error("stage panicked", zap.String("state", string(state)), zap.Any("panic", v))
			next = afterPanic[state]
		}
	}()
	return stage(ctx, r)
}

func stageLabel(s types.RunState) string {
	switch s {
	case types.StateIngest:
		return "ingest"
	case types.StateExtract:
		return "extract"
	case types.StateEnrich:
		return "enrich"
	case types.StateValidate:
		return "validate"
	}
	return "pipeline"
}

func (p *Pipeline) ingest(ctx context.Context, r *run) types.RunState {
	rc := r.rc
	for _, src := range p.cfg.Sources {
		res, err := src.Fetch(ctx)
		if err != nil {
			soft := errors.Is(err, ingest.ErrNotConfigured)
			rc.AddError(types.Diagnostic{
				Kind:    types.KindIngestion,
				Stage:   "ingest",
				Message: fmt.Sprintf("%s: %v", src.Name(), err),
				Soft:    soft,
			})
			p.logger.Warn("source fetch failed", zap.String("source", src.Name()), zap.Bool("soft", soft), zap.Error(err))
			continue
		}
		rc.Documents = append(rc.Documents, res.Documents...)
		ingest.MergeProvenance(&rc.Provenance, res.Provenance)
	}

	if len(rc.Documents) == 0 {
		rc.AddError(types.Diagnostic{Kind: types.KindIndex, Stage: "ingest", Message: "no documents to index"})
		return types.StateFailure
	}
	p.logger.Info("ingested documents", zap.Int("documents", len(rc.Documents)))
	return types.StateExtract
}

func (p *Pipeline) extract(ctx context.Context, r *run) types.RunState {
	rc := r.rc
	if p.cfg.OpenIndex == nil {
		rc.AddError(types.Diagnostic{Kind: types.KindIndex, Stage: "extract", Message: "no index configured"})
		return types.StateFailure
	}

	store, err := p.cfg.OpenIndex(indexName(rc))
	if err != nil {
		rc.AddError(types.Diagnostic{Kind: types.KindIndex, Stage: "extract", Message: err.Error()})
		return types.StateFailure
	}
	r.store = store

	summary, err := store.Build(ctx, rc.Documents)
	if err != nil {
		rc.AddError(types.Diagnostic{Kind: types.KindIndex, Stage: "extract", Message: err.Error()})
		return types.StateFailure
	}
	p.logger.Info("context index ready", zap.Int("passages", summary.Passages), zap.Bool("reused", summary.Reused))

	extract.New(p.cfg.Schema, store, p.cfg.Model, extract.Options{K: p.cfg.K, Logger: p.logger}).Run(ctx, rc)
	return types.StateEnrich
}

func (p *Pipeline) enrich(ctx context.Context, r *run) types.RunState {
	if p.cfg.Enricher == nil {
		p.logger.Debug("enrichment disabled")
		return types.StateValidate
	}
	p.cfg.Enricher.Run(ctx, r.rc)
	return types.StateValidate
}

func (p *Pipeline) validate(_ context.Context, r *run) types.RunState {
	rc := r.rc
	rec, issues := validate.Validate(p.cfg.Schema, rc.Extracted)
	if allNull(rc.Extracted) {
		issues[IssueSynthesis] = "no information extracted"
	}
	rc.Issues = issues

	if msg, ok := issues[validate.IssueSchemaValidation]; ok {
		rc.AddError(types.Diagnostic{Kind: types.KindSchema, Stage: "validate", Message: msg})
	}
	rc.Card = rec.Card

	next := route(rc)
	if next == types.StateFailure {
		rc.Partial = rec.Fields
	}
	return next
}

// route applies the VALIDATE exit rule. Earlier, more fundamental failures
// are checked first.
func route(rc *types.RunContext) types.RunState {
	switch {
	case rc.HasError(types.KindIngestion):
		return types.StateFailure
	case rc.HasError(types.KindIndex):
		return types.StateFailure
	case len(rc.Issues) > 0:
		return types.StateFailure
	case rc.Card == nil:
		return types.StateFailure
	}
	return types.StateSuccess
}

// indexName is the stable name the index is persisted under.
func indexName(rc *types.RunContext) string {
	switch {
	case rc.Inputs.Name != "":
		return rc.Inputs.Name
	case rc.Provenance.SourceID != "":
		return rc.Provenance.SourceID
	}
	return "default"
}

func allNull(m map[string]any) bool {
	for _, v := range m {
		if v != nil {
			return false
		}
	}
	return true
}
