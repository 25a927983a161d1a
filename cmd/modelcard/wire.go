// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/modelcard/internal/enrich"
	"github.com/pdiddy/modelcard/internal/index"
	"github.com/pdiddy/modelcard/internal/ingest"
	"github.com/pdiddy/modelcard/internal/llm"
	"github.com/pdiddy/modelcard/internal/pipeline"
	"github.com/pdiddy/modelcard/internal/schema"
	"github.com/pdiddy/modelcard/internal/search"
	"github.com/pdiddy/modelcard/pkg/types"
)

// buildModels returns the configured tiers in order, primary first.
func buildModels(ctx context.Context, tiers []types.ModelTier) ([]llm.Model, error) {
	if len(tiers) == 0 {
		return nil, llm.ErrNoModel
	}
	models := make([]llm.Model, 0, len(tiers))
	for i, t := range tiers {
		if t.APIKey == "" {
			return nil, fmt.Errorf("model tier %d (%s %s): no API key; set it in config or .secrets/%s",
				i, t.Provider, t.Model, secretFor(t.Provider))
		}
		switch t.Provider {
		case types.ProviderClaude, "":
			models = append(models, &llm.ClaudeModel{
				APIKey:    t.APIKey,
				Model:     t.Model,
				MaxTokens: t.MaxTokens,
				Client:    &http.Client{},
			})
		case types.ProviderGemini:
			m, err := llm.NewGenAIModel(ctx, llm.GenAIOptions{APIKey: t.APIKey, Model: t.Model, MaxTokens: t.MaxTokens})
			if err != nil {
				return nil, fmt.Errorf("model tier %d: %w", i, err)
			}
			models = append(models, m)
		default:
			return nil, fmt.Errorf("model tier %d: unknown provider %q", i, t.Provider)
		}
	}
	return models, nil
}

// buildEmbedder returns nil when embeddings are disabled.
func buildEmbedder(ctx context.Context, cfg types.EmbeddingConfig) (index.Embedder, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case types.ProviderGemini:
		e, err := index.NewGenAIEmbedder(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("embedding: %w", err)
		}
		return e, nil
	}
	return nil, fmt.Errorf("embedding: provider %q does not support embeddings", cfg.Provider)
}

// searchBackends returns OpenAlex, plus Semantic Scholar when a key is set.
func searchBackends(cfg types.EnrichConfig) *search.Multi {
	client := &http.Client{Timeout: cfg.Timeout}
	m := &search.Multi{Backends: []search.Backend{
		&search.OpenAlexBackend{Client: client, Email: cfg.Email},
	}}
	if cfg.SemanticScholarAPIKey != "" {
		m.Backends = append(m.Backends, &search.SemanticScholarBackend{Client: client, APIKey: cfg.SemanticScholarAPIKey})
	}
	return m
}

// buildPipeline wires every collaborator for one run.
func buildPipeline(ctx context.Context, cfg types.Config, in types.RunInputs, withEnrich bool, logger *zap.Logger) (*pipeline.Pipeline, error) {
	models, err := buildModels(ctx, cfg.Models)
	if err != nil {
		return nil, err
	}
	policy := llm.NewTierPolicy(logger, models...)

	embedder, err := buildEmbedder(ctx, cfg.Embedding)
	if err != nil {
		return nil, err
	}

	openIndex := func(name string) (pipeline.Store, error) {
		ix, err := index.Open(cfg.Index, name, embedder, cfg.Embedding.BatchSize, logger)
		if err != nil {
			return nil, err
		}
		return ix, nil
	}

	pc := pipeline.Config{
		Schema: schema.Default(),
		Sources: []ingest.Source{
			ingest.NewRepoSource(in.GitHubURL, cfg.Ingest, nil, logger),
			ingest.NewDocsSource(in.DocsURL, cfg.Ingest, nil, logger),
		},
		OpenIndex: openIndex,
		Model:     policy,
		K:         cfg.Extraction.K,
		Logger:    logger,
	}
	if withEnrich && cfg.Enrich.Enabled {
		pc.Enricher = enrich.New(searchBackends(cfg.Enrich), policy, enrich.Options{
			MaxResults:     cfg.Enrich.MaxResults,
			PerResultChars: cfg.Enrich.PerResultChars,
			TotalChars:     cfg.Enrich.TotalChars,
			UserAgent:      cfg.Enrich.UserAgent,
			Logger:         logger,
		})
	}
	return pipeline.New(pc), nil
}
