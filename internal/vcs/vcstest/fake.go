// Package vcstest provides an in-memory vcs.Client for tests.
package vcstest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/company/gopm/internal/filemanager"
	"github.com/company/gopm/internal/manifest"
	"github.com/company/gopm/internal/vcs"
)

// Repo is a fake remote. Dir is copied on clone; Revisions optionally maps a
// revision to a directory whose contents replace the working tree on checkout.
// Checking out Branch leaves the clone at Head.
type Repo struct {
	Dir       string
	Head      string
	Branch    string
	Revisions map[string]string
}

// Checkout records a Checkout call.
type Checkout struct {
	URI      string
	Revision string
}

// Fake implements vcs.Client on top of local fixture directories.
type Fake struct {
	Repos     map[string]*Repo
	Clones    []string
	Checkouts []Checkout

	clonedFrom map[string]string
	current    map[string]string
}

var _ vcs.Client = (*Fake)(nil)

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Repos:      make(map[string]*Repo),
		clonedFrom: make(map[string]string),
		current:    make(map[string]string),
	}
}

// Add registers a fake remote.
func (f *Fake) Add(uri, dir, head string) *Repo {
	r := &Repo{Dir: dir, Head: head}
	f.Repos[uri] = r
	return r
}

func fail(args []string, dir, msg string) error {
	return &vcs.Error{Args: args, Dir: dir, ExitCode: 128, Stderr: msg}
}

// Clone implements vcs.Client.
func (f *Fake) Clone(ctx context.Context, uri, destDir string) (string, error) {
	args := []string{"clone", "--quiet", "--", uri}
	if err := ctx.Err(); err != nil {
		return "", &vcs.Error{Args: args, Dir: destDir, ExitCode: -1, Err: err}
	}
	f.Clones = append(f.Clones, uri)

	repo, ok := f.Repos[uri]
	if !ok {
		return "", fail(args, destDir, fmt.Sprintf("fatal: repository '%s' does not exist", uri))
	}

	target := filepath.Join(destDir, manifest.NameFromURI(uri))
	if entries, err := os.ReadDir(target); err == nil && len(entries) > 0 {
		return "", fail(args, destDir, fmt.Sprintf("fatal: destination path '%s' already exists and is not an empty directory.", target))
	}
	if err := filemanager.CopyTree(repo.Dir, target); err != nil {
		os.RemoveAll(target)
		return "", err
	}

	f.clonedFrom[target] = uri
	f.current[target] = repo.Head
	return target, nil
}

// Checkout implements vcs.Client.
func (f *Fake) Checkout(ctx context.Context, repoDir, revision string) error {
	uri := f.clonedFrom[repoDir]
	f.Checkouts = append(f.Checkouts, Checkout{URI: uri, Revision: revision})

	repo, ok := f.Repos[uri]
	if !ok {
		return fail([]string{"checkout", revision}, repoDir, "fatal: not a git repository")
	}
	if repo.Branch != "" && revision == repo.Branch {
		return nil
	}
	if repo.Revisions == nil {
		f.current[repoDir] = revision
		return nil
	}

	src, ok := repo.Revisions[revision]
	if !ok {
		return fail([]string{"checkout", "--quiet", "--detach", revision}, repoDir,
			fmt.Sprintf("error: pathspec '%s' did not match any file(s) known to git", revision))
	}
	if err := os.RemoveAll(repoDir); err != nil {
		return err
	}
	if err := filemanager.CopyTree(src, repoDir); err != nil {
		return err
	}
	f.current[repoDir] = revision
	return nil
}

// LatestCommit implements vcs.Client.
func (f *Fake) LatestCommit(ctx context.Context, repoDir string) (string, error) {
	rev, ok := f.current[repoDir]
	if !ok {
		return "", fail([]string{"rev-parse", "HEAD"}, repoDir, "fatal: not a git repository")
	}
	return rev, nil
}

// CloneCount returns how many times uri was cloned.
func (f *Fake) CloneCount(uri string) int {
	n := 0
	for _, u := range f.Clones {
		if u == uri {
			n++
		}
	}
	return n
}
