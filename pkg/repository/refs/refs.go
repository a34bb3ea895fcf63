// Package refs resolves ref-like strings (HEAD, branch names, tag names,
// raw SHAs) to object hashes, and reads/writes the ref files backing them.
package refs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scmkit/sourcecontrol/pkg/objects"
	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
)

// RefPath names a ref, either symbolically ("HEAD", "main") or as a full
// path ("refs/heads/main").
type RefPath string

// repository is the minimal surface RefManager needs from a repository.
type repository interface {
	SourceDirectory() scpath.SourcePath
	WorkingDirectory() scpath.AbsolutePath
}

// RefManager resolves and updates refs for a single repository.
type RefManager struct {
	sourceDir scpath.SourcePath
}

// NewRefManager creates a RefManager rooted at repo's control directory.
func NewRefManager(repo repository) *RefManager {
	return &RefManager{sourceDir: repo.SourceDirectory()}
}

// ResolveToSHA resolves ref to a commit hash, following HEAD's symbolic
// indirection and falling back to a raw SHA if ref isn't a known ref name.
func (rm *RefManager) ResolveToSHA(ref RefPath) (objects.ObjectHash, error) {
	name := string(ref)

	if name == "HEAD" {
		return rm.resolveHead()
	}

	if path, ok := rm.candidatePath(name); ok {
		if sha, err := rm.readRefFile(path); err == nil {
			return sha, nil
		}
	}

	return objects.NewObjectHashFromString(name)
}

// candidatePath maps a short or full ref name to a path under the control
// directory, trying refs/heads then refs/tags when given a bare name.
func (rm *RefManager) candidatePath(name string) (string, bool) {
	if strings.HasPrefix(name, "refs/") {
		return rm.sourceDir.Sub(name).ToAbsolutePath().String(), true
	}

	headsPath := rm.sourceDir.HeadsPath().Sub(name).ToAbsolutePath().String()
	if _, err := os.Stat(headsPath); err == nil {
		return headsPath, true
	}

	tagsPath := rm.sourceDir.TagsPath().Sub(name).ToAbsolutePath().String()
	if _, err := os.Stat(tagsPath); err == nil {
		return tagsPath, true
	}

	return "", false
}

func (rm *RefManager) readRefFile(path string) (objects.ObjectHash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return objects.NewObjectHashFromString(strings.TrimSpace(string(data)))
}

func (rm *RefManager) resolveHead() (objects.ObjectHash, error) {
	headPath := rm.sourceDir.Sub("HEAD").ToAbsolutePath().String()
	data, err := os.ReadFile(headPath)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if strings.HasPrefix(content, "ref: ") {
		target := strings.TrimPrefix(content, "ref: ")
		sha, err := rm.readRefFile(rm.sourceDir.Sub(target).ToAbsolutePath().String())
		if err != nil {
			return "", fmt.Errorf("failed to resolve HEAD -> %s: %w", target, err)
		}
		return sha, nil
	}

	return objects.NewObjectHashFromString(content)
}

// CurrentBranchName reads HEAD's symbolic target, returning "" if detached.
func (rm *RefManager) CurrentBranchName() (string, error) {
	headPath := rm.sourceDir.Sub("HEAD").ToAbsolutePath().String()
	data, err := os.ReadFile(headPath)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if !strings.HasPrefix(content, "ref: refs/heads/") {
		return "", nil
	}
	return strings.TrimPrefix(content, "ref: refs/heads/"), nil
}

// UpdateRef writes sha as the target of a "refs/heads/<name>"-style ref.
func (rm *RefManager) UpdateRef(ref RefPath, sha objects.ObjectHash) error {
	path := rm.sourceDir.Sub(string(ref)).ToAbsolutePath().String()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create ref directory: %w", err)
	}
	return os.WriteFile(path, []byte(sha.String()+"\n"), 0644)
}

// SetHeadToBranch points HEAD at refs/heads/<branch> symbolically.
func (rm *RefManager) SetHeadToBranch(branch string) error {
	headPath := rm.sourceDir.Sub("HEAD").ToAbsolutePath().String()
	content := fmt.Sprintf("ref: refs/heads/%s\n", branch)
	return os.WriteFile(headPath, []byte(content), 0644)
}
