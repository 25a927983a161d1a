// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gitexec runs the git operations the ingest stage needs: shallow
// clone, refresh of an existing clone, and author listing.
package gitexec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const binGit = "git"

// Repo provides the git operations used against a single working copy.
type Repo interface {
	// Sync clones url into dir, or fetches and hard-resets when dir already
	// holds a clone.
	Sync(ctx context.Context, url, dir string) error

	// Authors returns commit author names for the working copy at dir,
	// deduplicated in first-seen order (newest commit first).
	Authors(ctx context.Context, dir string) ([]string, error)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return out, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

type repo struct {
	exec executor
}

// New returns a Repo backed by the git binary on PATH.
func New() (Repo, error) {
	return newRepo(&osExecutor{})
}

func newRepo(exec executor) (*repo, error) {
	if _, err := exec.LookPath(binGit); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binGit, err)
	}
	return &repo{exec: exec}, nil
}

func (r *repo) Sync(ctx context.Context, url, dir string) error {
	if isClone(dir) {
		if _, err := r.exec.Run(ctx, dir, binGit, "fetch", "--depth", "1000", "origin"); err != nil {
			return fmt.Errorf("fetching %s: %w", url, err)
		}
		if _, err := r.exec.Run(ctx, dir, binGit, "reset", "--hard", "FETCH_HEAD"); err != nil {
			return fmt.Errorf("resetting %s: %w", dir, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return fmt.Errorf("creating clone parent: %w", err)
	}
	if _, err := r.exec.Run(ctx, "", binGit, "clone", "--depth", "1000", url, dir); err != nil {
		return fmt.Errorf("cloning %s: %w", url, err)
	}
	return nil
}

func (r *repo) Authors(ctx context.Context, dir string) ([]string, error) {
	out, err := r.exec.Run(ctx, dir, binGit, "log", "--format=%an")
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	return uniqueLines(string(out)), nil
}

func isClone(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

func uniqueLines(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}
