package git

import (
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
)

// RepoInfo contains git repository information shown in the report header
type RepoInfo struct {
	Branch    string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
	RemoteURL string `json:"remoteUrl,omitempty" yaml:"remoteUrl,omitempty"`
	Root      string `json:"root,omitempty" yaml:"root,omitempty"`
}

// GetRepoInfo retrieves repository information for the given path.
// Returns nil when the path is not inside a git repository.
// Worktree status is not computed: the report itself dirties the tree.
func GetRepoInfo(path string) *RepoInfo {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}

	info := &RepoInfo{}

	if worktree, err := repo.Worktree(); err == nil {
		info.Root = worktree.Filesystem.Root()
	}

	head, err := repo.Head()
	if err == nil {
		// Use short hash (first 7 characters)
		info.Commit = head.Hash().String()[:7]
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		} else {
			info.Branch = "HEAD" // Detached HEAD
		}
	}

	if cfg, err := repo.Config(); err == nil {
		if origin := cfg.Remotes["origin"]; origin != nil && len(origin.URLs) > 0 {
			info.RemoteURL = sanitizeRemoteURL(origin.URLs[0])
		}
	}

	return info
}

// DisplayName returns a short label such as github.com/org/repo@main (abc1234)
func (r *RepoInfo) DisplayName() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	if r.RemoteURL != "" {
		sb.WriteString(normalizeRemoteURL(r.RemoteURL))
	}
	if r.Branch != "" {
		if sb.Len() > 0 {
			sb.WriteString("@")
		}
		sb.WriteString(r.Branch)
	}
	if r.Commit != "" {
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString("(" + r.Commit + ")")
	}
	return sb.String()
}

// sanitizeRemoteURL strips credentials from http(s) remote URLs.
// SCP-like SSH remotes are returned unchanged.
func sanitizeRemoteURL(remote string) string {
	if remote == "" || !strings.Contains(remote, "://") {
		return remote
	}
	u, err := url.Parse(remote)
	if err != nil || u.User == nil {
		return remote
	}
	u.User = nil
	return u.String()
}

// normalizeRemoteURL converts various git URL formats to a consistent format
func normalizeRemoteURL(remote string) string {
	remote = strings.TrimPrefix(remote, "https://")
	remote = strings.TrimPrefix(remote, "http://")
	remote = strings.TrimPrefix(remote, "git@")
	remote = strings.TrimPrefix(remote, "git://")
	remote = strings.TrimSuffix(remote, "/")
	remote = strings.TrimSuffix(remote, ".git")
	return remote
}
