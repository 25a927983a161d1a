// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest turns a code repository and a documentation site into
// bounded-size passages for the context index.
//
// Each Source returns its passages together with provenance metadata. A
// source without a configured URL returns ErrNotConfigured; callers record
// that as a soft diagnostic and continue with the other sources.
package ingest

import (
	"context"
	"errors"

	"github.com/pdiddy/modelcard/pkg/types"
)

// ErrNotConfigured is returned by a Source whose location was not given.
var ErrNotConfigured = errors.New("source not configured")

// Result is the output of one source fetch.
type Result struct {
	Documents  []types.Document
	Provenance types.Provenance
}

// Source produces chunked documents from one external location.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Result, error)
}

// MergeProvenance fills empty fields of dst from src. Earlier sources win.
func MergeProvenance(dst *types.Provenance, src types.Provenance) {
	if dst.SourceID == "" {
		dst.SourceID = src.SourceID
	}
	if len(dst.Contributors) == 0 {
		dst.Contributors = src.Contributors
	}
	if dst.License == "" {
		dst.License = src.License
	}
}
