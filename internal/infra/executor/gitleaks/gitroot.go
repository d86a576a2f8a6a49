package gitleaks

import (
	"github.com/go-git/go-git/v5"
)

// RepositoryRoot walks up from dir to the enclosing git worktree root. It
// returns dir itself when no repository is found.
func RepositoryRoot(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return dir
	}
	wt, err := repo.Worktree()
	if err != nil {
		return dir
	}
	return wt.Filesystem.Root()
}
