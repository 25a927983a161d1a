// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// GenAIModel calls a Gemini model through the Google GenAI SDK.
type GenAIModel struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// GenAIOptions configures NewGenAIModel. BaseURL and HTTPClient are only
// set by tests.
type GenAIOptions struct {
	APIKey     string
	Model      string
	MaxTokens  int
	BaseURL    string
	HTTPClient *http.Client
}

// NewGenAIModel creates a Gemini-backed model.
func NewGenAIModel(ctx context.Context, opts GenAIOptions) (*GenAIModel, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}
	return &GenAIModel{client: client, model: opts.Model, maxTokens: int32(maxTokens)}, nil
}

// Name returns the model identifier.
func (g *GenAIModel) Name() string { return "gemini:" + g.model }

// Invoke calls GenerateContent. A schema request sets the JSON response
// MIME type and passes the schema through unchanged.
func (g *GenAIModel) Invoke(ctx context.Context, req Request) (Result, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.1),
		MaxOutputTokens: g.maxTokens,
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseJsonSchema = req.Schema
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		if code, ok := genAIQuotaCode(err); ok {
			return Result{}, &QuotaError{Model: g.Name(), StatusCode: code, Err: err}
		}
		return Result{}, fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return Result{}, fmt.Errorf("GenAI returned no text")
	}
	return newResult(text, req.Schema != nil), nil
}

// genAIQuotaCode reports whether err is a capacity refusal from the API and
// returns its HTTP status code.
func genAIQuotaCode(err error) (int, bool) {
	var ae genai.APIError
	if !errors.As(err, &ae) {
		return 0, false
	}
	if ae.Code == http.StatusTooManyRequests || ae.Code == http.StatusServiceUnavailable ||
		ae.Status == "RESOURCE_EXHAUSTED" {
		return ae.Code, true
	}
	return 0, false
}
