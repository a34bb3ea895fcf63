package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/scmkit/sourcecontrol/pkg/commitmanager"
	"github.com/scmkit/sourcecontrol/pkg/index"
	"github.com/scmkit/sourcecontrol/pkg/objects/blob"
	"github.com/scmkit/sourcecontrol/pkg/store"
)

func TestDiffCommand(t *testing.T) {
	// Save and restore current directory
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	defer os.Chdir(origDir)

	// Set up git config for commits
	os.Setenv("GIT_AUTHOR_NAME", "Test User")
	os.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	defer os.Unsetenv("GIT_AUTHOR_NAME")
	defer os.Unsetenv("GIT_AUTHOR_EMAIL")

	t.Run("diff with no changes", func(t *testing.T) {
		h := NewTestHelper(t)
		repo := h.InitRepo()
		h.Chdir()
		defer os.Chdir(origDir)

		// Create initial commit
		h.WriteFile("test.txt", "initial content")
		objectStore := store.NewFileObjectStore()
		objectStore.Initialize(repo.WorkingDirectory())

		indexMgr := index.NewManager(repo.WorkingDirectory())
		indexMgr.Initialize()
		indexMgr.Add([]string{"test.txt"}, objectStore)

		ctx := context.Background()
		commitMgr := commitmanager.NewManager(repo)
		commitMgr.Initialize(ctx)
		commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "Initial commit",
		})

		// Run diff command
		cmd := newDiffCmd()
		cmd.SetArgs([]string{})

		// Capture output
		var buf bytes.Buffer
		cmd.SetOut(&buf)

		if err := cmd.Execute(); err != nil {
			t.Fatalf("diff command failed: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No changes") && output != "" {
			t.Logf("Unexpected output for no changes: %s", output)
		}
	})

	t.Run("diff working tree vs index - modified file", func(t *testing.T) {
		h := NewTestHelper(t)
		repo := h.InitRepo()
		h.Chdir()
		defer os.Chdir(origDir)

		// Create initial commit
		h.WriteFile("test.txt", "line 1\nline 2\nline 3\n")
		objectStore := store.NewFileObjectStore()
		objectStore.Initialize(repo.WorkingDirectory())

		indexMgr := index.NewManager(repo.WorkingDirectory())
		indexMgr.Initialize()
		indexMgr.Add([]string{"test.txt"}, objectStore)

		ctx := context.Background()
		commitMgr := commitmanager.NewManager(repo)
		commitMgr.Initialize(ctx)
		commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "Initial commit",
		})

		// Modify file in working tree
		h.WriteFile("test.txt", "line 1\nmodified line 2\nline 3\n")

		// Run diff command
		cmd := newDiffCmd()
		cmd.SetArgs([]string{})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("diff command failed: %v", err)
		}
	})

	t.Run("diff cached - staged changes", func(t *testing.T) {
		h := NewTestHelper(t)
		repo := h.InitRepo()
		h.Chdir()
		defer os.Chdir(origDir)

		// Create initial commit
		h.WriteFile("test.txt", "initial content\n")
		objectStore := store.NewFileObjectStore()
		objectStore.Initialize(repo.WorkingDirectory())

		indexMgr := index.NewManager(repo.WorkingDirectory())
		indexMgr.Initialize()
		indexMgr.Add([]string{"test.txt"}, objectStore)

		ctx := context.Background()
		commitMgr := commitmanager.NewManager(repo)
		commitMgr.Initialize(ctx)
		commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "Initial commit",
		})

		// Modify and stage file
		h.WriteFile("test.txt", "modified content\n")
		indexMgr.Add([]string{"test.txt"}, objectStore)

		// Run diff --cached
		cmd := newDiffCmd()
		cmd.SetArgs([]string{"--cached"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("diff --cached command failed: %v", err)
		}
	})

	t.Run("diff between two commits", func(t *testing.T) {
		h := NewTestHelper(t)
		repo := h.InitRepo()
		h.Chdir()
		defer os.Chdir(origDir)

		objectStore := store.NewFileObjectStore()
		objectStore.Initialize(repo.WorkingDirectory())

		indexMgr := index.NewManager(repo.WorkingDirectory())
		indexMgr.Initialize()

		ctx := context.Background()
		commitMgr := commitmanager.NewManager(repo)
		commitMgr.Initialize(ctx)

		// Create first commit
		h.WriteFile("test.txt", "version 1\n")
		indexMgr.Add([]string{"test.txt"}, objectStore)
		commit1, err := commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "First commit",
		})
		if err != nil {
			t.Fatalf("failed to create first commit: %v", err)
		}

		// Create second commit
		h.WriteFile("test.txt", "version 2\n")
		indexMgr.Add([]string{"test.txt"}, objectStore)
		commit2, err := commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "Second commit",
		})
		if err != nil {
			t.Fatalf("failed to create second commit: %v", err)
		}

		commit1Hash, _ := commit1.Hash()
		commit2Hash, _ := commit2.Hash()

		// Run diff between commits
		cmd := newDiffCmd()
		cmd.SetArgs([]string{commit1Hash.String(), commit2Hash.String()})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("diff command failed: %v", err)
		}
	})

	t.Run("diff --name-only", func(t *testing.T) {
		h := NewTestHelper(t)
		repo := h.InitRepo()
		h.Chdir()
		defer os.Chdir(origDir)

		objectStore := store.NewFileObjectStore()
		objectStore.Initialize(repo.WorkingDirectory())

		indexMgr := index.NewManager(repo.WorkingDirectory())
		indexMgr.Initialize()

		ctx := context.Background()
		commitMgr := commitmanager.NewManager(repo)
		commitMgr.Initialize(ctx)

		// Create first commit
		h.WriteFile("file1.txt", "content 1\n")
		h.WriteFile("file2.txt", "content 2\n")
		indexMgr.Add([]string{"file1.txt", "file2.txt"}, objectStore)
		commit1, _ := commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "First commit",
		})

		// Create second commit with changes
		h.WriteFile("file1.txt", "modified content 1\n")
		h.WriteFile("file3.txt", "content 3\n")
		indexMgr.Add([]string{"file1.txt", "file3.txt"}, objectStore)
		commit2, _ := commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "Second commit",
		})

		commit1Hash, _ := commit1.Hash()
		commit2Hash, _ := commit2.Hash()

		// Run diff --name-only
		cmd := newDiffCmd()
		cmd.SetArgs([]string{"--name-only", commit1Hash.String(), commit2Hash.String()})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("diff --name-only failed: %v", err)
		}

		// Note: Output goes to stdout, so we can't easily capture it in tests
		// The command execution succeeding is sufficient validation
	})

	t.Run("diff --stat", func(t *testing.T) {
		h := NewTestHelper(t)
		repo := h.InitRepo()
		h.Chdir()
		defer os.Chdir(origDir)

		objectStore := store.NewFileObjectStore()
		objectStore.Initialize(repo.WorkingDirectory())

		indexMgr := index.NewManager(repo.WorkingDirectory())
		indexMgr.Initialize()

		ctx := context.Background()
		commitMgr := commitmanager.NewManager(repo)
		commitMgr.Initialize(ctx)

		// Create first commit
		h.WriteFile("test.txt", "line 1\nline 2\n")
		indexMgr.Add([]string{"test.txt"}, objectStore)
		commit1, _ := commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "First commit",
		})

		// Create second commit
		h.WriteFile("test.txt", "line 1\nmodified line 2\nline 3\n")
		indexMgr.Add([]string{"test.txt"}, objectStore)
		commit2, _ := commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "Second commit",
		})

		commit1Hash, _ := commit1.Hash()
		commit2Hash, _ := commit2.Hash()

		// Run diff --stat
		cmd := newDiffCmd()
		cmd.SetArgs([]string{"--stat", commit1Hash.String(), commit2Hash.String()})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("diff --stat failed: %v", err)
		}
	})

	t.Run("diff with specific path", func(t *testing.T) {
		h := NewTestHelper(t)
		repo := h.InitRepo()
		h.Chdir()
		defer os.Chdir(origDir)

		objectStore := store.NewFileObjectStore()
		objectStore.Initialize(repo.WorkingDirectory())

		indexMgr := index.NewManager(repo.WorkingDirectory())
		indexMgr.Initialize()

		ctx := context.Background()
		commitMgr := commitmanager.NewManager(repo)
		commitMgr.Initialize(ctx)

		// Create first commit with multiple files
		h.WriteFile("file1.txt", "content 1\n")
		h.WriteFile("file2.txt", "content 2\n")
		indexMgr.Add([]string{"file1.txt", "file2.txt"}, objectStore)
		commit1, _ := commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "First commit",
		})

		// Create second commit with changes to both files
		h.WriteFile("file1.txt", "modified 1\n")
		h.WriteFile("file2.txt", "modified 2\n")
		indexMgr.Add([]string{"file1.txt", "file2.txt"}, objectStore)
		commit2, _ := commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "Second commit",
		})

		commit1Hash, _ := commit1.Hash()
		commit2Hash, _ := commit2.Hash()

		// Run diff with specific path
		cmd := newDiffCmd()
		cmd.SetArgs([]string{commit1Hash.String(), commit2Hash.String(), "--", "file1.txt"})

		var buf bytes.Buffer
		cmd.SetOut(&buf)

		if err := cmd.Execute(); err != nil {
			t.Fatalf("diff with path failed: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "file2.txt") {
			t.Errorf("output should not contain file2.txt when filtering for file1.txt")
		}
	})
}

func TestBinaryFileDiff(t *testing.T) {
	t.Run("detect binary files", func(t *testing.T) {
		// Test binary detection
		textContent := []byte("This is text content\n")
		binaryContent := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE}

		if isBinary(textContent) {
			t.Error("text content incorrectly detected as binary")
		}

		if !isBinary(binaryContent) {
			t.Error("binary content not detected as binary")
		}
	})

	t.Run("diff binary files", func(t *testing.T) {
		origDir, _ := os.Getwd()
		defer os.Chdir(origDir)

		os.Setenv("GIT_AUTHOR_NAME", "Test User")
		os.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
		defer os.Unsetenv("GIT_AUTHOR_NAME")
		defer os.Unsetenv("GIT_AUTHOR_EMAIL")

		h := NewTestHelper(t)
		repo := h.InitRepo()
		h.Chdir()
		defer os.Chdir(origDir)

		objectStore := store.NewFileObjectStore()
		objectStore.Initialize(repo.WorkingDirectory())

		indexMgr := index.NewManager(repo.WorkingDirectory())
		indexMgr.Initialize()

		ctx := context.Background()
		commitMgr := commitmanager.NewManager(repo)
		commitMgr.Initialize(ctx)

		// Create binary file
		binaryContent := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD}
		h.WriteBinaryFile("binary.dat", binaryContent)

		indexMgr.Add([]string{"binary.dat"}, objectStore)
		commit1, _ := commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "Add binary file",
		})

		// Modify binary file
		modifiedBinary := []byte{0x00, 0x01, 0x03, 0xFF, 0xFE, 0xFD}
		h.WriteBinaryFile("binary.dat", modifiedBinary)
		indexMgr.Add([]string{"binary.dat"}, objectStore)
		commit2, _ := commitMgr.CreateCommit(ctx, commitmanager.CommitOptions{
			Message: "Modify binary file",
		})

		commit1Hash, _ := commit1.Hash()
		commit2Hash, _ := commit2.Hash()

		// Run diff
		cmd := newDiffCmd()
		cmd.SetArgs([]string{commit1Hash.String(), commit2Hash.String()})

		var buf bytes.Buffer
		cmd.SetOut(&buf)

		if err := cmd.Execute(); err != nil {
			t.Fatalf("diff failed: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Binary") && !strings.Contains(output, "binary") {
			t.Logf("Expected binary file indicator in output: %s", output)
		}
	})
}

func TestDiffHunkGeneration(t *testing.T) {
	t.Run("generate hunks for simple diff", func(t *testing.T) {
		oldContent := []byte("line 1\nline 2\nline 3\n")
		newContent := []byte("line 1\nmodified line 2\nline 3\n")

		hunks := generateHunks(oldContent, newContent, 3)

		if len(hunks) == 0 {
			t.Error("expected at least one hunk")
		}
	})

	t.Run("generate hunks for added content", func(t *testing.T) {
		oldContent := []byte("")
		newContent := []byte("new line 1\nnew line 2\n")

		hunks := generateHunks(oldContent, newContent, 3)

		if len(hunks) == 0 {
			t.Error("expected at least one hunk for added content")
		}
	})

	t.Run("generate hunks for deleted content", func(t *testing.T) {
		oldContent := []byte("line 1\nline 2\nline 3\n")
		newContent := []byte("")

		hunks := generateHunks(oldContent, newContent, 3)

		if len(hunks) == 0 {
			t.Error("expected at least one hunk for deleted content")
		}
	})

	t.Run("no hunks for identical content", func(t *testing.T) {
		content := []byte("line 1\nline 2\nline 3\n")

		hunks := generateHunks(content, content, 3)

		// Identical content produces no hunks
		if len(hunks) != 0 {
			t.Errorf("expected no hunks for identical content, got %d", len(hunks))
		}
	})
}

func TestDiffOptions(t *testing.T) {
	t.Run("context lines configuration", func(t *testing.T) {
		opts := DiffOptions{
			ContextLines: 5,
			NoColor:      false,
		}

		if opts.ContextLines != 5 {
			t.Errorf("expected context lines to be 5, got %d", opts.ContextLines)
		}
	})

	t.Run("no color option", func(t *testing.T) {
		opts := DiffOptions{
			NoColor: true,
		}

		if !opts.NoColor {
			t.Error("expected NoColor to be true")
		}
	})
}

func TestSplitLines(t *testing.T) {
	t.Run("split simple content", func(t *testing.T) {
		content := []byte("line 1\nline 2\nline 3")
		lines := splitLines(content)

		if len(lines) != 3 {
			t.Errorf("expected 3 lines, got %d", len(lines))
		}

		if lines[0] != "line 1" {
			t.Errorf("expected first line to be 'line 1', got '%s'", lines[0])
		}
	})

	t.Run("split empty content", func(t *testing.T) {
		content := []byte("")
		lines := splitLines(content)

		if len(lines) != 0 {
			t.Errorf("expected 0 lines for empty content, got %d", len(lines))
		}
	})

	t.Run("split content with trailing newline", func(t *testing.T) {
		content := []byte("line 1\nline 2\n")
		lines := splitLines(content)

		if len(lines) != 2 {
			t.Errorf("expected 2 lines, got %d", len(lines))
		}
	})
}

func TestMatchesPath(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		if !matchesPath("file.txt", []string{"file.txt"}) {
			t.Error("expected exact match to succeed")
		}
	})

	t.Run("no match", func(t *testing.T) {
		if matchesPath("file.txt", []string{"other.txt"}) {
			t.Error("expected no match")
		}
	})

	t.Run("directory prefix match", func(t *testing.T) {
		if !matchesPath("dir/file.txt", []string{"dir"}) {
			t.Error("expected directory prefix match to succeed")
		}
	})

	t.Run("empty filter matches nothing", func(t *testing.T) {
		// Callers only filter when paths were given; an empty list matches nothing
		if matchesPath("file.txt", []string{}) {
			t.Error("expected empty filter to match nothing")
		}
	})
}

func TestReadBlobContent(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	h := NewTestHelper(t)
	repo := h.InitRepo()
	h.Chdir()
	defer os.Chdir(origDir)

	objectStore := store.NewFileObjectStore()
	objectStore.Initialize(repo.WorkingDirectory())

	t.Run("read valid blob", func(t *testing.T) {
		content := []byte("test content")
		b := blob.NewBlob(content)

		// Write blob to store
		_, err := objectStore.WriteObject(b)
		if err != nil {
			t.Fatalf("failed to write blob: %v", err)
		}

		hash, _ := b.Hash()

		// Read blob content
		readContent, err := readBlobContent(objectStore, hash)
		if err != nil {
			t.Fatalf("failed to read blob content: %v", err)
		}

		if !bytes.Equal(readContent, content) {
			t.Errorf("expected content %s, got %s", content, readContent)
		}
	})

	t.Run("read empty hash", func(t *testing.T) {
		content, err := readBlobContent(objectStore, "")
		if err != nil {
			t.Errorf("expected no error for empty hash, got %v", err)
		}
		if content != nil {
			t.Error("expected nil content for empty hash")
		}
	})
}
