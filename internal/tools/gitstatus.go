package tools

import (
	"context"
	"errors"
	"sort"

	"github.com/go-git/go-git/v5"
)

type gitStatusRequest struct {
	Path string `mapstructure:"path"`
}

// gitStatus summarizes the worktree state of the repository containing the
// given path.
func gitStatus(_ context.Context, args map[string]any) map[string]any {
	var req gitStatusRequest
	if err := decodeArgs(args, &req); err != nil {
		return fail("invalid arguments: %v", err)
	}
	if req.Path == "" {
		req.Path = "."
	}

	repo, err := git.PlainOpenWithOptions(req.Path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return fail("no git repository found at %s", req.Path)
		}
		return fail("open repository: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fail("worktree: %v", err)
	}
	status, err := wt.Status()
	if err != nil {
		return fail("status: %v", err)
	}

	branch := "HEAD (detached)"
	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		branch = head.Name().Short()
	}

	staged := make([]string, 0)
	unstaged := make([]string, 0)
	untracked := make([]string, 0)
	for path, st := range status {
		switch {
		case st.Worktree == git.Untracked:
			untracked = append(untracked, path)
		case st.Staging != git.Unmodified:
			staged = append(staged, path)
		case st.Worktree != git.Unmodified:
			unstaged = append(unstaged, path)
		}
	}
	sort.Strings(staged)
	sort.Strings(unstaged)
	sort.Strings(untracked)

	return ok(map[string]any{
		"branch":    branch,
		"clean":     status.IsClean(),
		"staged":    staged,
		"unstaged":  unstaged,
		"untracked": untracked,
	})
}
