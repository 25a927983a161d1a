// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich fills the key publication of a model card from scholarly
// search results when extraction left it empty, and backfills the DOI
// from the chosen citation.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/pdiddy/modelcard/internal/llm"
	"github.com/pdiddy/modelcard/internal/schema"
	"github.com/pdiddy/modelcard/internal/search"
	"github.com/pdiddy/modelcard/pkg/types"
)

const stageName = "enrich"

// NoPublication is the model's answer when no snippet describes the software.
const NoPublication = "No key publication identified."

var doiPattern = regexp.MustCompile(`(?i)(10\.\d{4,9}/[-._;()/:A-Z0-9]+)`)

var citationTmpl = template.Must(template.New("citation").Parse(`You are an expert academic researcher identifying key software publications.
Based on the following software name and search results, identify the single most important publication describing the software itself.
Prioritize papers published in software journals (like JOSS) or papers explicitly introducing the model or software. Look for a clear title, authors, journal or venue, year, and DOI.

Format the output as a single citation string, for example: "Title. Authors. Journal Vol(Issue), Pages, Year. DOI: XXXXX".
If multiple versions or papers exist, prefer the primary software description paper.
If no single key publication clearly describes the software based only on the provided snippets, output the exact phrase "{{.Sentinel}}".

Software name: {{.Name}}

Search results:
-------
{{.Results}}
-------

Key publication:`))

// Options tunes an Enricher.
type Options struct {
	// MaxResults is the number of hits requested per query (default 5).
	MaxResults int

	// PerResultChars truncates the results text of each query (default 2000).
	PerResultChars int

	// TotalChars bounds the search text passed to the model (default 16000).
	TotalChars int

	UserAgent string
	Logger    *zap.Logger
}

// Enricher looks up the key publication for a capability.
type Enricher struct {
	searcher search.Backend
	model    llm.Model
	opts     Options
	logger   *zap.Logger
}

// New returns an Enricher. model is typically the same *llm.TierPolicy the
// extraction stage uses.
func New(searcher search.Backend, model llm.Model, opts Options) *Enricher {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	if opts.PerResultChars <= 0 {
		opts.PerResultChars = 2000
	}
	if opts.TotalChars <= 0 {
		opts.TotalChars = 16000
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{searcher: searcher, model: model, opts: opts, logger: logger}
}

// Queries returns the search queries issued for a capability name.
func Queries(name string) []string {
	return []string{
		fmt.Sprintf("most important publication describing %s software", name),
		fmt.Sprintf("%q %s", "Journal of Open Source Software", name),
		fmt.Sprintf("citation OR paper %s model", name),
	}
}

// Run sets key_publications, and doi when it is empty, on rc.Extracted. It
// does nothing when key_publications already holds a value. Failures are
// recorded as enrichment diagnostics and never stop the run.
func (e *Enricher) Run(ctx context.Context, rc *types.RunContext) {
	if rc.Extracted[schema.FieldKeyPublications] != nil {
		e.logger.Debug("key publication already extracted, skipping search")
		return
	}
	name, _ := rc.Extracted[schema.FieldCapabilityName].(string)
	if strings.TrimSpace(name) == "" {
		e.logger.Info("skipping publication search: capability name not available")
		return
	}

	results := e.gather(ctx, rc, name)
	if results == "" {
		e.logger.Warn("no search results obtained", zap.String("capability", name))
		return
	}

	prompt, err := renderPrompt(name, truncate(results, e.opts.TotalChars))
	if err != nil {
		e.fail(rc, fmt.Errorf("rendering prompt: %w", err))
		return
	}
	res, err := e.model.Invoke(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		e.fail(rc, fmt.Errorf("identifying key publication: %w", err))
		return
	}

	citation := strings.TrimSpace(res.Text)
	if citation == "" || strings.Contains(citation, NoPublication) {
		e.logger.Info("no key publication identified", zap.String("capability", name))
		return
	}
	rc.Extracted[schema.FieldKeyPublications] = []string{citation}
	e.logger.Info("key publication identified", zap.String("citation", citation))

	if doi := FindDOI(citation); doi != "" && isEmpty(rc.Extracted[schema.FieldDOI]) {
		rc.Extracted[schema.FieldDOI] = doi
		e.logger.Info("doi backfilled from citation", zap.String("doi", doi))
	}
}

// gather runs every query and returns the combined snippet text, or "" when
// no query produced results.
func (e *Enricher) gather(ctx context.Context, rc *types.RunContext, name string) string {
	var b strings.Builder
	found := false
	fmt.Fprintf(&b, "Search results for '%s':\n\n", name)

	for _, q := range Queries(name) {
		hits, err := e.searcher.Search(ctx, q, search.Options{MaxResults: e.opts.MaxResults, UserAgent: e.opts.UserAgent})
		if err != nil {
			e.fail(rc, fmt.Errorf("search query %q failed: %w", q, err))
			continue
		}
		if len(hits) == 0 {
			continue
		}
		found = true

		var snippets strings.Builder
		for _, h := range hits {
			snippets.WriteString(search.FormatSnippet(h))
			snippets.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- Results for query: %s ---\n%s\n\n", q, truncate(snippets.String(), e.opts.PerResultChars))
	}

	if !found {
		return ""
	}
	return b.String()
}

func (e *Enricher) fail(rc *types.RunContext, err error) {
	rc.AddError(types.Diagnostic{
		Kind:    types.KindEnrichment,
		Stage:   stageName,
		Field:   schema.FieldKeyPublications,
		Message: err.Error(),
	})
	e.logger.Warn("enrichment failed", zap.Error(err))
}

// FindDOI returns the first DOI in s without trailing punctuation.
func FindDOI(s string) string {
	m := doiPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimRight(m[1], ".;,")
}

func renderPrompt(name, results string) (string, error) {
	var buf bytes.Buffer
	err := citationTmpl.Execute(&buf, struct {
		Name, Results, Sentinel string
	}{name, results, NoPublication})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
