// Package gitvc adapts a local git repository as the version-control
// collaborator. It only reads history and status to enrich analysis
// context; a missing or unreadable repository yields empty context,
// not an error.
package gitvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/example/mender/internal/ports/secondary"
)

// DefaultHistoryDepth bounds how many commits RecentHistory summarizes.
const DefaultHistoryDepth = 10

// Collaborator implements secondary.VersionControl over go-git.
type Collaborator struct {
	path  string
	depth int
}

// New creates a collaborator rooted at path.
func New(path string) *Collaborator {
	return &Collaborator{path: path, depth: DefaultHistoryDepth}
}

// RecentHistory returns a one-line-per-commit summary of the most
// recent commits on HEAD.
func (c *Collaborator) RecentHistory(ctx context.Context) (string, error) {
	repo, err := git.PlainOpen(c.path)
	if err != nil {
		// Not a git repository or can't open - empty context, not an error
		return "", nil
	}

	head, err := repo.Head()
	if err != nil {
		// Detached or unborn HEAD - nothing to summarize
		return "", nil
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return "", nil
	}
	defer iter.Close()

	var b strings.Builder
	count := 0
	err = iter.ForEach(func(commit *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if count >= c.depth {
			return storer.ErrStop
		}
		subject := strings.SplitN(commit.Message, "\n", 2)[0]
		fmt.Fprintf(&b, "%s %s\n", commit.Hash.String()[:7], subject)
		count++
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return "", fmt.Errorf("failed to walk commit log: %w", err)
	}

	return b.String(), nil
}

// WorkingTreeStatus returns the porcelain-style status of the working tree.
func (c *Collaborator) WorkingTreeStatus(ctx context.Context) (string, error) {
	repo, err := git.PlainOpen(c.path)
	if err != nil {
		return "", nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", nil
	}

	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("failed to read working tree status: %w", err)
	}

	return status.String(), nil
}

// Ensure Collaborator implements the interface
var _ secondary.VersionControl = (*Collaborator)(nil)
