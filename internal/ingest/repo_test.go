// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/modelcard/pkg/types"
)

// fakeGit writes a fixed file tree into the clone directory on Sync.
type fakeGit struct {
	files   map[string]string
	authors []string
	syncErr error
	synced  []string
}

func (f *fakeGit) Sync(_ context.Context, url, dir string) error {
	f.synced = append(f.synced, url+" -> "+dir)
	if f.syncErr != nil {
		return f.syncErr
	}
	for name, content := range f.files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeGit) Authors(context.Context, string) ([]string, error) {
	return f.authors, nil
}

func testIngestConfig(t *testing.T) types.IngestConfig {
	cfg := types.DefaultConfig().Ingest
	cfg.CloneDir = t.TempDir()
	return cfg
}

func TestRepoSourceFetch(t *testing.T) {
	git := &fakeGit{
		files: map[string]string{
			"README.md":          "# mosartwmpy\n\nA Python river routing model.",
			"LICENSE":            "\n  BSD 2-Clause License\n\nCopyright (c) 2021",
			"mosartwmpy/main.py": "def run():\n    pass\n",
			"docs/Guide.RST":     "Guide\n=====",
			"data/grid.nc":       "binary-ish but wrong extension",
			"logo.png":           "\x89PNG\x00\x00",
			".git/config":        "[core]",
			".git/notes.md":      "should never be read",
		},
		authors: []string{"Travis Thurber", "Chris Vernon"},
	}
	cfg := testIngestConfig(t)
	src := NewRepoSource("https://github.com/IMMM-SFA/mosartwmpy.git", cfg, git, zaptest.NewLogger(t))

	res, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "mosartwmpy", res.Provenance.SourceID)
	assert.Equal(t, []string{"Travis Thurber", "Chris Vernon"}, res.Provenance.Contributors)
	assert.Equal(t, "BSD 2-Clause License", res.Provenance.License)
	require.Len(t, git.synced, 1)
	assert.Contains(t, git.synced[0], filepath.Join(cfg.CloneDir, "mosartwmpy"))

	var sources []string
	for _, d := range res.Documents {
		sources = append(sources, d.Source)
	}
	sort.Strings(sources)
	assert.Equal(t, []string{
		"mosartwmpy/README.md",
		"mosartwmpy/docs/Guide.RST",
		"mosartwmpy/mosartwmpy/main.py",
	}, sources)
}

func TestRepoSourceNotConfigured(t *testing.T) {
	src := NewRepoSource("  ", testIngestConfig(t), &fakeGit{}, nil)
	_, err := src.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorContains(t, err, "missing GitHub URL")
}

func TestRepoSourceSyncFailure(t *testing.T) {
	git := &fakeGit{syncErr: errors.New("authentication required")}
	src := NewRepoSource("https://github.com/org/private", testIngestConfig(t), git, nil)

	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
	assert.ErrorContains(t, err, "repository fetch failed")
}

func TestRepoID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://github.com/IMMM-SFA/mosartwmpy", "mosartwmpy"},
		{"https://github.com/IMMM-SFA/mosartwmpy.git", "mosartwmpy"},
		{"https://github.com/IMMM-SFA/mosartwmpy/", "mosartwmpy"},
		{"git@github.com:IMMM-SFA/tell.git", "tell"},
		{"git@host:repo.git", "repo"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RepoID(tt.in), tt.in)
	}
}

func TestIncludePattern(t *testing.T) {
	assert.Equal(t, "**/*{.md,.py}", includePattern([]string{".MD", "py", " "}))
}

func TestMergeProvenance(t *testing.T) {
	dst := types.Provenance{SourceID: "a"}
	MergeProvenance(&dst, types.Provenance{SourceID: "b", Contributors: []string{"x"}, License: "MIT"})
	assert.Equal(t, types.Provenance{SourceID: "a", Contributors: []string{"x"}, License: "MIT"}, dst)
}
