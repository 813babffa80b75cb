// Package project implements the package manager operations on a project
// directory holding a godotmodules.txt manifest.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/company/gopm/internal/filemanager"
	"github.com/company/gopm/internal/logging"
	"github.com/company/gopm/internal/manifest"
	"github.com/company/gopm/internal/resolver"
	"github.com/company/gopm/internal/search"
	"github.com/company/gopm/internal/vcs"
)

// Prompter asks the user to make choices.
type Prompter interface {
	// SelectResult returns the index of the chosen result, or ErrNoSelection.
	SelectResult(results []search.Result) (int, error)
	Confirm(title string) (bool, error)
}

// InstallResult is the outcome of Install.
type InstallResult struct {
	Dependency manifest.Dependency
	Tree       *resolver.Node
}

// UpgradeResult reports the tip check of one dependency and, when it was
// upgraded, the resolution tree.
type UpgradeResult struct {
	Dependency manifest.Dependency
	From       string
	To         string
	UpToDate   bool
	Tree       *resolver.Node
}

// Option configures a Project.
type Option func(*Project)

// WithVCS sets the version control client.
func WithVCS(c vcs.Client) Option {
	return func(p *Project) { p.vcs = c }
}

// WithRemover sets how overwritten addons are removed.
func WithRemover(r filemanager.Remover) Option {
	return func(p *Project) { p.remover = r }
}

// WithProviders sets the search providers, queried in order.
func WithProviders(providers ...search.Provider) Option {
	return func(p *Project) { p.providers = providers }
}

// WithPrompter sets how the user is asked questions.
func WithPrompter(pr Prompter) Option {
	return func(p *Project) { p.prompter = pr }
}

// WithScratchDir sets the directory temporary clones are created in.
func WithScratchDir(dir string) Option {
	return func(p *Project) { p.scratchDir = dir }
}

// Project is a directory managed by gopm.
type Project struct {
	dir        string
	vcs        vcs.Client
	remover    filemanager.Remover
	providers  []search.Provider
	prompter   Prompter
	scratchDir string
}

// New returns the project rooted at dir.
func New(dir string, opts ...Option) *Project {
	p := &Project{
		dir:     dir,
		vcs:     vcs.NewGit(""),
		remover: filemanager.Permanent{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dir returns the project directory.
func (p *Project) Dir() string {
	return p.dir
}

func (p *Project) resolver() *resolver.Resolver {
	return resolver.New(p.vcs, p.dir,
		resolver.WithScratchDir(p.scratchDir),
		resolver.WithRemover(p.remover),
	)
}

// List returns the dependencies in the manifest.
func (p *Project) List() ([]manifest.Dependency, error) {
	return manifest.Load(p.dir)
}

// installed loads the manifest and fails with NotFoundError when it is empty.
func (p *Project) installed() ([]manifest.Dependency, error) {
	deps, err := manifest.Load(p.dir)
	if err != nil {
		return nil, err
	}
	if len(deps) == 0 {
		return nil, &NotFoundError{What: "installed packages"}
	}
	return deps, nil
}

// Search queries every provider for term.
func (p *Project) Search(ctx context.Context, term string) ([]search.Result, error) {
	return search.Query(ctx, p.providers, strings.TrimSpace(term))
}

// Install adds the package named by arg to the project. arg is either a local
// repository directory or a search term. The manifest is only rewritten once
// the package itself resolved, and records the commit that was installed.
func (p *Project) Install(ctx context.Context, arg string) (*InstallResult, error) {
	logger := logging.FromContext(ctx)

	deps, err := manifest.Load(p.dir)
	if err != nil {
		return nil, err
	}

	var candidate manifest.Dependency
	if info, statErr := os.Stat(arg); statErr == nil && info.IsDir() {
		candidate, err = p.localCandidate(ctx, arg)
	} else {
		candidate, err = p.searchCandidate(ctx, arg)
	}
	if err != nil {
		return nil, err
	}

	if i := manifest.IndexOf(deps, candidate.Name()); i >= 0 {
		return nil, &CollisionError{Name: candidate.Name(), Existing: deps[i]}
	}

	logger.Debug("installing", "uri", candidate.URI, "version", candidate.Version)
	tree, err := p.resolver().Walk(ctx, candidate)
	if err != nil {
		return &InstallResult{Dependency: candidate, Tree: tree}, err
	}

	// Branch names and the latest alias are pinned to the installed commit.
	if tree.Commit != "" && !vcs.SameRevision(candidate.Version, tree.Commit) {
		logger.Debug("pinning", "name", candidate.Name(), "version", candidate.Version, "commit", tree.Commit)
		candidate.Version = tree.Commit
	}
	result := &InstallResult{Dependency: candidate, Tree: tree}

	if err := manifest.Save(p.dir, append(deps, candidate)); err != nil {
		return result, err
	}
	return result, nil
}

// localCandidate pins a local repository at its checked-out commit.
func (p *Project) localCandidate(ctx context.Context, path string) (manifest.Dependency, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return manifest.Dependency{}, err
	}
	commit, err := p.latestCommit(ctx, abs)
	if err != nil {
		return manifest.Dependency{}, err
	}
	return manifest.Dependency{URI: abs, Version: commit}, nil
}

func (p *Project) searchCandidate(ctx context.Context, term string) (manifest.Dependency, error) {
	results, err := p.Search(ctx, term)
	if err != nil {
		return manifest.Dependency{}, err
	}
	if len(results) == 0 {
		return manifest.Dependency{}, &NotFoundError{What: "packages", Query: term}
	}
	if p.prompter == nil {
		return manifest.Dependency{}, ErrNoSelection
	}

	idx, err := p.prompter.SelectResult(results)
	if err != nil {
		return manifest.Dependency{}, err
	}
	if idx < 0 || idx >= len(results) {
		return manifest.Dependency{}, ErrNoSelection
	}
	selected := results[idx]
	return manifest.Dependency{URI: selected.CloneURL, Version: selected.DefaultVersion}, nil
}

// latestCommit clones uri without a revision and returns the checked-out
// commit. The clone is removed before returning.
func (p *Project) latestCommit(ctx context.Context, uri string) (string, error) {
	workDir, err := os.MkdirTemp(p.scratchDir, "tip-")
	if err != nil {
		return "", fmt.Errorf("creating clone directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	repoDir, err := p.vcs.Clone(ctx, uri, workDir)
	if err != nil {
		return "", err
	}
	return p.vcs.LatestCommit(ctx, repoDir)
}

// Update resolves every dependency in the manifest, in order. It stops at the
// first dependency that cannot be resolved.
func (p *Project) Update(ctx context.Context) ([]*resolver.Node, error) {
	deps, err := p.installed()
	if err != nil {
		return nil, err
	}

	r := p.resolver()
	trees := make([]*resolver.Node, 0, len(deps))
	for _, dep := range deps {
		tree, err := r.Walk(ctx, dep)
		trees = append(trees, tree)
		if err != nil {
			return trees, err
		}
	}
	return trees, nil
}

// Upgrade moves every dependency to the tip of its default branch. Each
// upgraded entry is saved to the manifest once it resolved.
func (p *Project) Upgrade(ctx context.Context) ([]UpgradeResult, error) {
	deps, err := p.installed()
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx)
	r := p.resolver()
	results := make([]UpgradeResult, 0, len(deps))
	for i, dep := range deps {
		tip, err := p.latestCommit(ctx, dep.URI)
		if err != nil {
			return results, err
		}
		if vcs.SameRevision(dep.Version, tip) {
			results = append(results, UpgradeResult{Dependency: dep, From: dep.Version, To: tip, UpToDate: true})
			continue
		}

		logger.Debug("upgrading", "name", dep.Name(), "from", dep.Version, "to", tip)
		upgraded := manifest.Dependency{URI: dep.URI, Version: tip}
		tree, err := r.Walk(ctx, upgraded)
		results = append(results, UpgradeResult{Dependency: upgraded, From: dep.Version, To: tip, Tree: tree})
		if err != nil {
			return results, err
		}

		deps[i] = upgraded
		if err := manifest.Save(p.dir, deps); err != nil {
			return results, err
		}
	}
	return results, nil
}

// Outdated reports which dependencies are behind the tip of their default
// branch without changing anything.
func (p *Project) Outdated(ctx context.Context) ([]UpgradeResult, error) {
	deps, err := p.installed()
	if err != nil {
		return nil, err
	}

	results := make([]UpgradeResult, 0, len(deps))
	for _, dep := range deps {
		tip, err := p.latestCommit(ctx, dep.URI)
		if err != nil {
			return results, err
		}
		results = append(results, UpgradeResult{
			Dependency: dep,
			From:       dep.Version,
			To:         tip,
			UpToDate:   vcs.SameRevision(dep.Version, tip),
		})
	}
	return results, nil
}

// Remove deletes the single manifest entry whose name contains query, after
// confirmation. Installed addons are left in place.
func (p *Project) Remove(ctx context.Context, query string) (manifest.Dependency, error) {
	deps, err := manifest.Load(p.dir)
	if err != nil {
		return manifest.Dependency{}, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	var matches []int
	if q != "" {
		for i, d := range deps {
			if strings.Contains(strings.ToLower(d.Name()), q) {
				matches = append(matches, i)
			}
		}
	}

	switch len(matches) {
	case 0:
		return manifest.Dependency{}, &NotFoundError{What: "installed packages", Query: query}
	case 1:
	default:
		amb := &AmbiguousError{Query: query}
		for _, i := range matches {
			amb.Matches = append(amb.Matches, deps[i])
		}
		return manifest.Dependency{}, amb
	}

	target := deps[matches[0]]
	if p.prompter == nil {
		return target, ErrCancelled
	}
	ok, err := p.prompter.Confirm(fmt.Sprintf("Really remove %q?", target.Name()))
	if err != nil {
		return target, err
	}
	if !ok {
		return target, ErrCancelled
	}

	remaining := append(deps[:matches[0]:matches[0]], deps[matches[0]+1:]...)
	if err := manifest.Save(p.dir, remaining); err != nil {
		return target, err
	}
	logging.FromContext(ctx).Debug("removed", "name", target.Name())
	return target, nil
}
