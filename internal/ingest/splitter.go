// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/modelcard/pkg/types"
)

// defaultSeparators are tried in order; the empty separator splits runes.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text into chunks of at most Size runes. Consecutive chunks
// share up to Overlap runes of trailing context.
type Splitter struct {
	Size    int
	Overlap int
}

// NewSplitter returns a Splitter with out-of-range values replaced by
// defaults (1000 runes, no overlap beyond Size-1).
func NewSplitter(size, overlap int) Splitter {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return Splitter{Size: size, Overlap: overlap}
}

// Documents splits text and tags every chunk with source.
func (s Splitter) Documents(text, source string) []types.Document {
	chunks := s.Split(text)
	docs := make([]types.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = types.Document{Text: c, Source: source}
	}
	return docs
}

// Split returns the chunks of text. Whitespace-only chunks are dropped.
func (s Splitter) Split(text string) []string {
	s = NewSplitter(s.Size, s.Overlap)
	return s.split(text, defaultSeparators)
}

func (s Splitter) split(text string, separators []string) []string {
	sep, rest := "", []string(nil)
	for i, c := range separators {
		if c == "" || strings.Contains(text, c) {
			sep, rest = c, separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, sep)
	}

	var chunks, small []string
	for _, p := range pieces {
		if utf8.RuneCountInString(p) <= s.Size {
			small = append(small, p)
			continue
		}
		if len(small) > 0 {
			chunks = append(chunks, s.merge(small, sep)...)
			small = nil
		}
		chunks = append(chunks, s.split(p, rest)...)
	}
	if len(small) > 0 {
		chunks = append(chunks, s.merge(small, sep)...)
	}
	return chunks
}

// merge packs pieces into chunks no longer than Size, carrying the tail of
// each chunk into the next one up to Overlap.
func (s Splitter) merge(pieces []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)
	joinedLen := func(n int) int {
		if n > 0 {
			return sepLen
		}
		return 0
	}

	var chunks, window []string
	total := 0
	for _, p := range pieces {
		n := utf8.RuneCountInString(p)
		if len(window) > 0 && total+n+sepLen > s.Size {
			if c := strings.TrimSpace(strings.Join(window, sep)); c != "" {
				chunks = append(chunks, c)
			}
			for len(window) > 0 && (total > s.Overlap || total+n+joinedLen(len(window)) > s.Size) {
				total -= utf8.RuneCountInString(window[0]) + joinedLen(len(window)-1)
				window = window[1:]
			}
		}
		total += n + joinedLen(len(window))
		window = append(window, p)
	}
	if c := strings.TrimSpace(strings.Join(window, sep)); c != "" {
		chunks = append(chunks, c)
	}
	return chunks
}
