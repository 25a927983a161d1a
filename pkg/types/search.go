// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SearchResult represents a publication returned by a scholarly search
// backend during enrichment.
type SearchResult struct {
	// Identifier is the canonical ID from the source (DOI, arXiv ID, or URL).
	Identifier string `json:"identifier" yaml:"identifier"`

	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the publication abstract or summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Venue is the journal or conference name, if known.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	Date time.Time `json:"date" yaml:"date"`

	// DOI is the bare DOI without the https://doi.org/ prefix.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Source identifies which backend found this result (e.g. "openalex").
	Source string `json:"source" yaml:"source"`
}
