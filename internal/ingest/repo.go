// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/pdiddy/modelcard/internal/gitexec"
	"github.com/pdiddy/modelcard/pkg/types"
)

// maxRepoFileBytes skips generated or vendored blobs.
const maxRepoFileBytes = 2 << 20

// repoExcludes are never ingested regardless of extension.
var repoExcludes = []string{".git/**", "**/.git/**", "**/node_modules/**", "**/__pycache__/**"}

// RepoSource clones a git repository and chunks its text files.
type RepoSource struct {
	URL        string
	CloneDir   string
	Extensions []string
	Splitter   Splitter
	Git        gitexec.Repo
	Logger     *zap.Logger
}

// NewRepoSource builds a RepoSource from ingest settings. A nil git uses the
// git binary on PATH, resolved at fetch time.
func NewRepoSource(url string, cfg types.IngestConfig, git gitexec.Repo, logger *zap.Logger) *RepoSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = types.DefaultExtensions
	}
	return &RepoSource{
		URL:        url,
		CloneDir:   cfg.CloneDir,
		Extensions: exts,
		Splitter:   NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		Git:        git,
		Logger:     logger,
	}
}

// Name returns the source identifier.
func (r *RepoSource) Name() string { return "github" }

// Fetch syncs the clone and returns its chunked files with provenance.
func (r *RepoSource) Fetch(ctx context.Context) (Result, error) {
	if strings.TrimSpace(r.URL) == "" {
		return Result{}, fmt.Errorf("%w: missing GitHub URL", ErrNotConfigured)
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	git := r.Git
	if git == nil {
		g, err := gitexec.New()
		if err != nil {
			return Result{}, fmt.Errorf("repository fetch failed: %w", err)
		}
		git = g
	}

	id := RepoID(r.URL)
	dir := filepath.Join(r.CloneDir, id)
	if err := git.Sync(ctx, r.URL, dir); err != nil {
		return Result{}, fmt.Errorf("repository fetch failed: %w", err)
	}

	res := Result{Provenance: types.Provenance{SourceID: id}}
	authors, err := git.Authors(ctx, dir)
	if err != nil {
		logger.Warn("could not list contributors", zap.String("repo", id), zap.Error(err))
	}
	res.Provenance.Contributors = authors

	include := includePattern(r.Extensions)
	files := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if excluded(rel) {
			return nil
		}

		lower := strings.ToLower(rel)
		if res.Provenance.License == "" && !strings.Contains(lower, "/") && strings.HasPrefix(lower, "license") {
			res.Provenance.License = firstLine(path)
		}
		if ok, _ := doublestar.Match(include, lower); !ok {
			return nil
		}

		text, ok := readText(path)
		if !ok {
			return nil
		}
		files++
		res.Documents = append(res.Documents, r.Splitter.Documents(text, id+"/"+rel)...)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("repository fetch failed: walking %s: %w", dir, err)
	}

	logger.Info("ingested repository",
		zap.String("repo", id),
		zap.Int("files", files),
		zap.Int("passages", len(res.Documents)),
		zap.Int("contributors", len(authors)))
	return res, nil
}

// RepoID returns the repository name from a clone URL, without ".git".
func RepoID(url string) string {
	u := strings.TrimRight(strings.TrimSpace(url), "/")
	u = strings.TrimSuffix(u, ".git")
	if i := strings.LastIndexAny(u, "/:"); i >= 0 {
		u = u[i+1:]
	}
	return u
}

// includePattern builds one brace pattern matching any extension.
func includePattern(exts []string) string {
	alts := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		alts = append(alts, e)
	}
	return "**/*{" + strings.Join(alts, ",") + "}"
}

func excluded(rel string) bool {
	for _, p := range repoExcludes {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// readText returns file contents when they look like UTF-8 text.
func readText(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxRepoFileBytes {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil || bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

func firstLine(path string) string {
	text, ok := readText(path)
	if !ok {
		return ""
	}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
