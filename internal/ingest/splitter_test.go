// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextIsOneChunk(t *testing.T) {
	s := NewSplitter(100, 10)
	assert.Equal(t, []string{"hello world"}, s.Split("  hello world \n"))
	assert.Empty(t, s.Split("   \n\n  "))
}

func TestSplitPrefersParagraphs(t *testing.T) {
	s := NewSplitter(20, 0)
	got := s.Split("first paragraph\n\nsecond paragraph\n\nthird")
	assert.Equal(t, []string{"first paragraph", "second paragraph", "third"}, got)
}

func TestSplitRespectsSize(t *testing.T) {
	text := strings.Repeat("River routing models move water through channels. ", 80)
	s := NewSplitter(120, 30)
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 10)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 120)
	}
}

func TestSplitOverlapsConsecutiveChunks(t *testing.T) {
	words := make([]string, 60)
	for i := range words {
		words[i] = fmt.Sprintf("w%02d", i)
	}
	s := NewSplitter(40, 15)
	chunks := s.Split(strings.Join(words, " "))
	require.Greater(t, len(chunks), 2)

	// The first word of each later chunk is carried over from the previous one.
	for i := 1; i < len(chunks); i++ {
		first := strings.Fields(chunks[i])[0]
		assert.Contains(t, strings.Fields(chunks[i-1]), first, "chunk %d", i)
	}
}

func TestSplitLongWordFallsBackToRunes(t *testing.T) {
	s := NewSplitter(4, 0)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, s.Split("abcdefghij"))
}

func TestSplitMultibyte(t *testing.T) {
	s := NewSplitter(3, 0)
	assert.Equal(t, []string{"εύρ", "ος"}, s.Split("εύρος"))
}

func TestNewSplitterDefaults(t *testing.T) {
	assert.Equal(t, Splitter{Size: 1000, Overlap: 0}, NewSplitter(0, -1))
	assert.Equal(t, Splitter{Size: 10, Overlap: 0}, NewSplitter(10, 10))
	assert.Equal(t, Splitter{Size: 10, Overlap: 3}, NewSplitter(10, 3))
}

func TestDocumentsTagSource(t *testing.T) {
	docs := NewSplitter(10, 0).Documents("alpha beta gamma", "repo/README.md")
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, "repo/README.md", d.Source)
	}
}
