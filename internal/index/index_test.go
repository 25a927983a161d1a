// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/modelcard/pkg/types"
)

// keywordEmbedder maps text onto a fixed keyword basis so similarity is
// predictable.
type keywordEmbedder struct {
	basis    []string
	docCalls int
}

func (k *keywordEmbedder) Name() string { return "keyword" }

func (k *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(k.basis))
	for i, w := range k.basis {
		v[i] = float32(strings.Count(lower, w))
	}
	return v
}

func (k *keywordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	k.docCalls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = k.vector(t)
	}
	return out, nil
}

func (k *keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return k.vector(text), nil
}

func sampleDocs() []types.Document {
	return []types.Document{
		{Text: "mosartwmpy is a river routing model written in Python.", Source: "README.md"},
		{Text: "The software is released under the BSD license.", Source: "LICENSE"},
		{Text: "Cite this work with DOI 10.5281/zenodo.1234 in publications.", Source: "CITATION.cff"},
		{Text: "Install with pip and run on a laptop or HPC cluster.", Source: "docs/install.md"},
	}
}

func openTest(t *testing.T, dir string, emb Embedder) *Index {
	t.Helper()
	ix, err := Open(types.IndexConfig{CacheDir: dir}, "test", emb, 2, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestBuildEmpty(t *testing.T) {
	ix := openTest(t, t.TempDir(), nil)
	_, err := ix.Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestFTSSearch(t *testing.T) {
	ix := openTest(t, t.TempDir(), nil)
	ctx := context.Background()

	sum, err := ix.Build(ctx, sampleDocs())
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Passages)
	assert.False(t, sum.Reused)

	got, err := ix.Search(ctx, "Extract 'license' for this scientific software.", 2)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "LICENSE", got[0].Source)
	assert.LessOrEqual(t, len(got), 2)
}

func TestFTSSearchNoTerms(t *testing.T) {
	ix := openTest(t, t.TempDir(), nil)
	ctx := context.Background()
	_, err := ix.Build(ctx, sampleDocs())
	require.NoError(t, err)

	got, err := ix.Search(ctx, "the of and", 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ix.Search(ctx, "license", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReuseUnchangedDocumentSet(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	emb := &keywordEmbedder{basis: []string{"license", "doi", "laptop"}}

	first, err := Open(types.IndexConfig{CacheDir: dir}, "reuse", emb, 2, nil)
	require.NoError(t, err)
	_, err = first.Build(ctx, sampleDocs())
	require.NoError(t, err)
	require.NoError(t, first.Close())
	assert.Equal(t, 2, emb.docCalls, "4 docs in batches of 2")

	second, err := Open(types.IndexConfig{CacheDir: dir}, "reuse", emb, 2, nil)
	require.NoError(t, err)
	defer second.Close()

	sum, err := second.Build(ctx, sampleDocs())
	require.NoError(t, err)
	assert.True(t, sum.Reused)
	assert.Equal(t, 4, sum.Passages)
	assert.Equal(t, 2, emb.docCalls, "reuse must not re-embed")

	changed := append(sampleDocs(), types.Document{Text: "new page", Source: "docs/new.md"})
	sum, err = second.Build(ctx, changed)
	require.NoError(t, err)
	assert.False(t, sum.Reused)
	assert.Equal(t, 5, sum.Passages)
}

func TestVectorSearch(t *testing.T) {
	emb := &keywordEmbedder{basis: []string{"license", "doi", "laptop"}}
	ix := openTest(t, t.TempDir(), emb)
	ctx := context.Background()
	_, err := ix.Build(ctx, sampleDocs())
	require.NoError(t, err)

	got, err := ix.Search(ctx, "doi", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CITATION.cff", got[0].Source)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
}

func TestOpenNameOverrideAndSanitize(t *testing.T) {
	dir := t.TempDir()
	ix, err := Open(types.IndexConfig{CacheDir: dir}, "my repo/name", nil, 0, nil)
	require.NoError(t, err)
	defer ix.Close()
	assert.True(t, strings.HasSuffix(ix.Path(), "index_my_repo_name.db"), ix.Path())

	ix2, err := Open(types.IndexConfig{CacheDir: dir, Name: "fixed"}, "ignored", nil, 0, nil)
	require.NoError(t, err)
	defer ix2.Close()
	assert.True(t, strings.HasSuffix(ix2.Path(), "index_fixed.db"), ix2.Path())
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(sampleDocs(), "")
	assert.Equal(t, a, Fingerprint(sampleDocs(), ""))
	assert.NotEqual(t, a, Fingerprint(sampleDocs(), "genai:x"))
	assert.NotEqual(t, a, Fingerprint(sampleDocs()[:3], ""))
}

func TestFTSQuery(t *testing.T) {
	assert.Equal(t, `"computational" OR "requirements" OR "scientific" OR "software"`,
		ftsQuery("Extract 'computational_requirements' for this scientific software."))
	assert.Equal(t, "", ftsQuery("the and"))
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, cosine([]float32{1}, []float32{1, 1}))
	assert.Equal(t, []float32{1.5, -2}, decodeVector(encodeVector([]float32{1.5, -2})))
}
