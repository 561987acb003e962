package common

import (
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// GetCommitHash returns the short HEAD hash of the repository containing the
// working directory or the executable, or "unknown".
func GetCommitHash() string {
	if cwd, err := os.Getwd(); err == nil {
		if hash := CommitHashAt(cwd); hash != "" {
			return hash
		}
	}

	if exePath, err := os.Executable(); err == nil {
		if hash := CommitHashAt(filepath.Dir(exePath)); hash != "" {
			return hash
		}
	}

	return "unknown"
}

// CommitHashAt returns the short HEAD hash of the repository at or above
// path, or "" when there is none.
func CommitHashAt(path string) string {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	hash := head.Hash().String()
	if len(hash) >= 8 {
		return hash[:8]
	}
	return hash
}
