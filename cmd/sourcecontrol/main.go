package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/scmkit/sourcecontrol/pkg/common/logger"
	"github.com/scmkit/sourcecontrol/pkg/repository/scpath"
	"github.com/scmkit/sourcecontrol/pkg/repository/sourcerepo"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "sourcecontrol",
		Short: "A content-addressable version control system",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetVerbose(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(
		newInitCmd(),
		newCommitCmd(),
		newLogCmd(),
		newMergeCmd(),
		newTagCmd(),
		newStashCmd(),
		newShowCmd(),
		newDiffCmd(),
		newResetCmd(),
		newRevertCmd(),
		newBlameCmd(),
		newAnnotateCmd(),
		newDescribeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Create an empty repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				dir = args[0]
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create %s: %w", dir, err)
				}
			}

			repo := sourcerepo.NewSourceRepository()
			if err := repo.Initialize(scpath.RepositoryPath(dir)); err != nil {
				return fmt.Errorf("failed to initialize repository: %w", err)
			}

			fmt.Printf("Initialized empty repository in %s/%s\n", dir, scpath.SourceDir)
			return nil
		},
	}
}

// findRepository locates the repository rooted at or above the current
// working directory, the same upward-search behavior git uses to find
// .git, stopping at the first ancestor containing a control directory.
func findRepository() (*sourcerepo.SourceRepository, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		candidate := scpath.AbsolutePath(dir).Join(scpath.SourceDir).String()
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			repo := sourcerepo.NewSourceRepository()
			if err := repo.Open(scpath.AbsolutePath(dir)); err != nil {
				return nil, err
			}
			return repo, nil
		}

		parent := parentDir(dir)
		if parent == dir {
			return nil, fmt.Errorf("not a sourcecontrol repository (or any parent directory)")
		}
		dir = parent
	}
}

func parentDir(dir string) string {
	for i := len(dir) - 1; i > 0; i-- {
		if dir[i] == '/' {
			return dir[:i]
		}
	}
	return dir
}
