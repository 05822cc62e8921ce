package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/rs/zerolog"
)

// Checkout is a pinned working copy produced by GitFetcher.
type Checkout struct {
	Dir     string
	Commit  string
	Version string
	// Entry is the absolute path of the entry program inside Dir.
	Entry string
}

// GitFetcher clones program sources into a local cache, one directory per pinned revision.
type GitFetcher struct {
	CacheDir string
	Logger   zerolog.Logger
}

// DefaultCacheDir honours PSEUDO_HOME, falling back to ~/.pseudo.
func DefaultCacheDir() (string, error) {
	if home := strings.TrimSpace(os.Getenv("PSEUDO_HOME")); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(userHome, ".pseudo"), nil
}

// NewGitFetcher returns a fetcher rooted at cacheDir.
func NewGitFetcher(cacheDir string, logger zerolog.Logger) *GitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &GitFetcher{CacheDir: cacheDir, Logger: logger}
}

// Fetch makes sure the revision named by spec is checked out and returns its location.
func (g *GitFetcher) Fetch(spec *GitSpec) (*Checkout, error) {
	if g == nil {
		return nil, errors.New("git fetcher unavailable")
	}
	if spec == nil || strings.TrimSpace(spec.URL) == "" {
		return nil, errors.New("git source: url required")
	}
	url := strings.TrimSpace(spec.URL)
	baseDir := filepath.Join(g.CacheDir, "src", sanitizePathSegment(url))
	version, commit, err := g.ensureCheckout(baseDir, url, spec)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(baseDir, sanitizePathSegment(version))
	entry := spec.Path
	if entry == "" {
		entry = "main.pseudo"
	}
	return &Checkout{
		Dir:     dir,
		Commit:  commit,
		Version: version,
		Entry:   filepath.Join(dir, filepath.FromSlash(entry)),
	}, nil
}

func (g *GitFetcher) ensureCheckout(baseDir, url string, spec *GitSpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		if version, commit, ok := cachedRevision(baseDir, rev); ok {
			g.Logger.Debug().Str("url", url).Str("rev", rev).Str("commit", commit).Msg("reusing checkout")
			return version, commit, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	g.Logger.Debug().Str("url", url).Str("revision", string(revision)).Msg("cloning")
	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:  url,
		Tags: git.AllTags,
	})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("resolve revision %s: %w", descriptor, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{
		Hash:  *hash,
		Force: true,
	}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", fmt.Errorf("git checkout %s: %w", descriptor, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

// cachedRevision finds an earlier checkout of rev under baseDir. Only commit ids qualify: a full
// hash is stored under its own name, an abbreviated one as "<rev>@<commit>".
func cachedRevision(baseDir, rev string) (string, string, bool) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return "", "", false
	}
	name := sanitizePathSegment(rev)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if entry.Name() == name && plumbing.IsHash(rev) {
			return rev, rev, true
		}
		commit, ok := strings.CutPrefix(entry.Name(), name+"_")
		if ok && plumbing.IsHash(commit) && strings.HasPrefix(commit, rev) {
			return gitPinnedVersion(rev, commit), commit, true
		}
	}
	return "", "", false
}

func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

// gitRevisionFromSpec maps a pin to a revision resolvable in a fresh clone. Branches are read
// from the remote-tracking refs since only the default branch exists locally after cloning.
func gitRevisionFromSpec(spec *GitSpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/remotes/origin/" + branch), branch, nil
	}
	return "", "", fmt.Errorf("git sources require rev, tag, or branch")
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	result := b.String()
	if result == "" {
		return "head"
	}
	return result
}
