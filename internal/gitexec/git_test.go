// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gitexec

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	onPath  bool
	outputs map[string]string // "arg1 arg2" -> stdout
	fail    map[string]bool   // "arg1 arg2" -> return error
	calls   []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.onPath {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")
	m.calls = append(m.calls, key)
	if m.fail[key] {
		return nil, errors.New("command failed: " + name + " " + key)
	}
	return []byte(m.outputs[key]), nil
}

func TestNewRequiresGit(t *testing.T) {
	if _, err := newRepo(&mockExecutor{}); err == nil {
		t.Fatal("expected error when git is not on PATH")
	}
	if _, err := newRepo(&mockExecutor{onPath: true}); err != nil {
		t.Fatalf("newRepo() error = %v", err)
	}
}

func TestSyncClonesFreshDirectory(t *testing.T) {
	m := &mockExecutor{onPath: true}
	r, _ := newRepo(m)
	dir := filepath.Join(t.TempDir(), "repos", "mosartwmpy")

	if err := r.Sync(context.Background(), "https://github.com/IMMM-SFA/mosartwmpy", dir); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	want := "clone --depth 1000 https://github.com/IMMM-SFA/mosartwmpy " + dir
	if len(m.calls) != 1 || m.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", m.calls, want)
	}
}

func TestSyncRefreshesExistingClone(t *testing.T) {
	m := &mockExecutor{onPath: true}
	r, _ := newRepo(m)
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := r.Sync(context.Background(), "https://example.org/x.git", dir); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if len(m.calls) != 2 || !strings.HasPrefix(m.calls[0], "fetch") || m.calls[1] != "reset --hard FETCH_HEAD" {
		t.Errorf("calls = %v", m.calls)
	}
}

func TestSyncCloneFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "x")
	m := &mockExecutor{onPath: true, fail: map[string]bool{
		"clone --depth 1000 https://example.org/x.git " + dir: true,
	}}
	r, _ := newRepo(m)

	err := r.Sync(context.Background(), "https://example.org/x.git", dir)
	if err == nil || !strings.Contains(err.Error(), "cloning") {
		t.Errorf("Sync() error = %v, want cloning error", err)
	}
}

func TestAuthorsDeduplicatesInOrder(t *testing.T) {
	m := &mockExecutor{onPath: true, outputs: map[string]string{
		"log --format=%an": "Travis Thurber\nChris Vernon\nTravis Thurber\n\nNingpeng Sun\n",
	}}
	r, _ := newRepo(m)

	got, err := r.Authors(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Authors() error = %v", err)
	}
	want := []string{"Travis Thurber", "Chris Vernon", "Ningpeng Sun"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Authors() = %v, want %v", got, want)
	}
}
