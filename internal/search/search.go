// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries scholarly APIs for publications describing a
// software package. Results from several backends are merged and
// deduplicated by DOI and normalized title.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/pdiddy/modelcard/pkg/types"
)

// Backend searches a single scholarly API.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) ([]types.SearchResult, error)
}

// Options bounds a search request.
type Options struct {
	// MaxResults is the number of hits requested per backend (default 5).
	MaxResults int
	UserAgent  string
}

func (o Options) maxResults() int {
	if o.MaxResults <= 0 {
		return 5
	}
	return o.MaxResults
}

// Output holds merged results and per-backend failures.
type Output struct {
	Results       []types.SearchResult
	BackendErrors []string
}

// Multi fans a query out to several backends concurrently.
type Multi struct {
	Backends []Backend
}

// Name lists the member backends.
func (m *Multi) Name() string {
	names := make([]string, len(m.Backends))
	for i, b := range m.Backends {
		names[i] = b.Name()
	}
	return strings.Join(names, "+")
}

// Search merges results from every backend in backend order. It fails only
// when every backend fails.
func (m *Multi) Search(ctx context.Context, query string, opts Options) ([]types.SearchResult, error) {
	out := m.SearchAll(ctx, query, opts)
	if len(out.Results) == 0 && len(out.BackendErrors) == len(m.Backends) && len(m.Backends) > 0 {
		return nil, fmt.Errorf("all search backends failed: %s", strings.Join(out.BackendErrors, "; "))
	}
	return out.Results, nil
}

// SearchAll is Search with backend errors reported alongside results.
func (m *Multi) SearchAll(ctx context.Context, query string, opts Options) Output {
	type backendResult struct {
		results []types.SearchResult
		err     error
	}

	slots := make([]backendResult, len(m.Backends))
	var wg sync.WaitGroup
	for i, b := range m.Backends {
		wg.Add(1)
		go func(i int, b Backend) {
			defer wg.Done()
			results, err := b.Search(ctx, query, opts)
			slots[i] = backendResult{results: results, err: err}
		}(i, b)
	}
	wg.Wait()

	var out Output
	var all []types.SearchResult
	for i, br := range slots {
		if br.err != nil {
			out.BackendErrors = append(out.BackendErrors, fmt.Sprintf("%s: %v", m.Backends[i].Name(), br.err))
			continue
		}
		all = append(all, br.results...)
	}
	out.Results = deduplicate(all)
	return out
}

// deduplicate keeps the first result per DOI or normalized title and fills
// its empty fields from later duplicates.
func deduplicate(results []types.SearchResult) []types.SearchResult {
	seen := make(map[string]int)
	var deduped []types.SearchResult

	for _, r := range results {
		keys := dedupKeys(r)
		idx, dup := -1, false
		for _, k := range keys {
			if i, ok := seen[k]; ok {
				idx, dup = i, true
				break
			}
		}
		if dup {
			mergeInto(&deduped[idx], r)
		} else {
			idx = len(deduped)
			deduped = append(deduped, r)
		}
		for _, k := range keys {
			seen[k] = idx
		}
	}
	return deduped
}

func dedupKeys(r types.SearchResult) []string {
	var keys []string
	if r.DOI != "" {
		keys = append(keys, "doi:"+strings.ToLower(r.DOI))
	}
	if t := normalizeTitle(r.Title); t != "" {
		keys = append(keys, "title:"+t)
	}
	return keys
}

func mergeInto(dst *types.SearchResult, src types.SearchResult) {
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if dst.Venue == "" {
		dst.Venue = src.Venue
	}
	if dst.Date.IsZero() {
		dst.Date = src.Date
	}
	if !strings.Contains(dst.Source, src.Source) {
		dst.Source = dst.Source + "," + src.Source
	}
}

// normalizeTitle returns a lowercased, punctuation-stripped title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FormatSnippet renders a result as plain text for a language model prompt.
func FormatSnippet(r types.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", r.Title)
	if len(r.Authors) > 0 {
		fmt.Fprintf(&b, "Authors: %s\n", strings.Join(r.Authors, ", "))
	}
	if !r.Date.IsZero() {
		fmt.Fprintf(&b, "Year: %d\n", r.Date.Year())
	}
	if r.Venue != "" {
		fmt.Fprintf(&b, "Venue: %s\n", r.Venue)
	}
	if r.DOI != "" {
		fmt.Fprintf(&b, "DOI: %s\n", r.DOI)
	}
	if r.Abstract != "" {
		fmt.Fprintf(&b, "Abstract: %s\n", r.Abstract)
	}
	return b.String()
}
