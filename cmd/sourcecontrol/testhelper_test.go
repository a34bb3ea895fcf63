package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
	"github.com/scmkit/sourcecontrol/pkg/repository/sourcerepo"
)

// TestHelper bundles the temp-directory-plus-repository setup every
// cmd_*_test.go file needs, so each test doesn't hand-roll its own
// MkdirTemp/Initialize/Chdir dance.
type TestHelper struct {
	t    *testing.T
	dir  string
	repo *sourcerepo.SourceRepository
}

// NewTestHelper creates a fresh temporary directory for the test, removed
// automatically via t.Cleanup.
func NewTestHelper(t *testing.T) *TestHelper {
	t.Helper()

	dir, err := os.MkdirTemp("", "sourcecontrol-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	return &TestHelper{t: t, dir: dir}
}

// InitRepo initializes a repository rooted at the helper's temp directory.
func (h *TestHelper) InitRepo() *sourcerepo.SourceRepository {
	h.t.Helper()

	repo := sourcerepo.NewSourceRepository()
	if err := repo.Initialize(scpath.RepositoryPath(h.dir)); err != nil {
		h.t.Fatalf("failed to initialize repository: %v", err)
	}
	h.repo = repo
	return repo
}

// Repo returns the repository created by InitRepo.
func (h *TestHelper) Repo() *sourcerepo.SourceRepository {
	return h.repo
}

// Chdir switches the process working directory to the helper's temp
// directory, so commands relying on os.Getwd() discovery behave as if run
// from inside the repository.
func (h *TestHelper) Chdir() {
	h.t.Helper()
	if err := os.Chdir(h.dir); err != nil {
		h.t.Fatalf("failed to chdir to %s: %v", h.dir, err)
	}
}

// WriteFile writes a text file relative to the repository root, creating
// any parent directories it needs.
func (h *TestHelper) WriteFile(name, content string) {
	h.t.Helper()
	h.WriteBinaryFile(name, []byte(content))
}

// WriteBinaryFile writes raw bytes to a file relative to the repository
// root, creating any parent directories it needs.
func (h *TestHelper) WriteBinaryFile(name string, content []byte) {
	h.t.Helper()

	path := filepath.Join(h.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create parent directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		h.t.Fatalf("failed to write %s: %v", name, err)
	}
}
