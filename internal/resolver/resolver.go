package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/company/gopm/internal/filemanager"
	"github.com/company/gopm/internal/logging"
	"github.com/company/gopm/internal/manifest"
	"github.com/company/gopm/internal/vcs"
)

// AddonsDir is the directory holding addons, both in a dependency's repository
// and in the consuming project.
const AddonsDir = "addons"

// Addon is an addon directory materialized into the project.
type Addon struct {
	Name string
	// Replaced is set when an entry of the same name was removed first.
	Replaced bool
	// Unchanged is set when the replaced entry had identical content.
	Unchanged bool
}

// Result is the outcome of resolving a single dependency.
type Result struct {
	// Commit is the commit that was checked out.
	Commit       string
	Addons       []Addon
	Dependencies []manifest.Dependency
}

// AddonNames returns the names of the installed addons in install order.
func (r *Result) AddonNames() []string {
	names := make([]string, 0, len(r.Addons))
	for _, a := range r.Addons {
		names = append(names, a.Name)
	}
	return names
}

// Node is one level of a resolution walk.
type Node struct {
	Dependency manifest.Dependency
	Depth      int
	Commit     string
	Addons     []Addon
	Children   []*Node
	// Err is set when this dependency could not be resolved.
	Err error
	// Cycle is the chain of names leading back to this dependency when it
	// already appears among its ancestors. Such nodes are not resolved.
	Cycle []string
}

// Visit calls fn for n and all its descendants, parents first.
func (n *Node) Visit(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Visit(fn)
	}
}

// Failures returns every node in the tree that carries an error.
func (n *Node) Failures() []*Node {
	var failed []*Node
	n.Visit(func(c *Node) {
		if c.Err != nil {
			failed = append(failed, c)
		}
	})
	return failed
}

// CircularDependencyError describes a dependency chain that loops back on itself.
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency: %s", strings.Join(e.Cycle, " → "))
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRemover sets how existing addons are removed before being overwritten.
func WithRemover(r filemanager.Remover) Option {
	return func(res *Resolver) { res.remover = r }
}

// WithScratchDir sets the directory temporary clones are created in.
func WithScratchDir(dir string) Option {
	return func(res *Resolver) { res.scratchDir = dir }
}

// Resolver clones dependencies and copies their addons into a project.
type Resolver struct {
	vcs        vcs.Client
	projectDir string
	scratchDir string
	remover    filemanager.Remover
}

// New creates a resolver that installs into projectDir.
func New(client vcs.Client, projectDir string, opts ...Option) *Resolver {
	r := &Resolver{
		vcs:        client,
		projectDir: projectDir,
		remover:    filemanager.Permanent{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveOne clones dep, copies its addons into the project and returns them
// together with the checked-out commit and the dependencies listed in the
// clone's own manifest. The clone
// is removed before returning, whatever the outcome.
func (r *Resolver) ResolveOne(ctx context.Context, dep manifest.Dependency) (*Result, error) {
	logger := logging.FromContext(ctx)

	workDir, err := os.MkdirTemp(r.scratchDir, "clone-")
	if err != nil {
		return nil, fmt.Errorf("creating clone directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logger.Warn("could not remove clone", "dir", workDir, "err", rmErr)
		}
	}()

	repoDir, err := r.vcs.Clone(ctx, dep.URI, workDir)
	if err != nil {
		return nil, err
	}
	if dep.Pinned() {
		if err := r.vcs.Checkout(ctx, repoDir, dep.Version); err != nil {
			return nil, err
		}
	}
	commit, err := r.vcs.LatestCommit(ctx, repoDir)
	if err != nil {
		return nil, err
	}

	addons, err := r.installAddons(ctx, repoDir)
	if err != nil {
		return nil, fmt.Errorf("installing addons of %s: %w", dep.Name(), err)
	}

	nested, err := manifest.Load(repoDir)
	if err != nil {
		return nil, fmt.Errorf("reading dependencies of %s: %w", dep.Name(), err)
	}

	return &Result{Commit: commit, Addons: addons, Dependencies: nested}, nil
}

func (r *Resolver) installAddons(ctx context.Context, repoDir string) ([]Addon, error) {
	logger := logging.FromContext(ctx)

	src := filepath.Join(repoDir, AddonsDir)
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, err
	}

	destRoot := filepath.Join(r.projectDir, AddonsDir)
	if err := os.MkdirAll(destRoot, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", destRoot, err)
	}

	addons := make([]Addon, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if err := filemanager.ValidateName(name, "addon name"); err != nil {
			return addons, err
		}
		dest := filepath.Join(destRoot, name)
		if err := filemanager.ValidateInsideDir(destRoot, dest); err != nil {
			return addons, err
		}

		addon := Addon{Name: name}
		var oldHash string
		if _, err := os.Lstat(dest); err == nil {
			addon.Replaced = true
			oldHash, _ = filemanager.HashTree(dest)
			if err := r.remover.Remove(dest); err != nil {
				return addons, err
			}
		}

		if err := filemanager.CopyTree(filepath.Join(src, name), dest); err != nil {
			return addons, err
		}
		if oldHash != "" {
			newHash, err := filemanager.HashTree(dest)
			addon.Unchanged = err == nil && newHash == oldHash
		}

		logger.Debug("addon installed", "name", name, "replaced", addon.Replaced, "unchanged", addon.Unchanged)
		addons = append(addons, addon)
	}
	return addons, nil
}

// Walk resolves dep and, depth first, every dependency below it. A failure of
// dep itself is returned. Failures further down are recorded on the failing
// node and its siblings are still resolved.
func (r *Resolver) Walk(ctx context.Context, dep manifest.Dependency) (*Node, error) {
	return r.walk(ctx, dep, 0, nil)
}

func (r *Resolver) walk(ctx context.Context, dep manifest.Dependency, depth int, ancestors []string) (*Node, error) {
	logger := logging.FromContext(ctx).With("name", dep.Name(), "depth", depth)
	node := &Node{Dependency: dep, Depth: depth}

	logger.Debug("resolving", "uri", dep.URI, "version", dep.Version)
	res, err := r.ResolveOne(ctx, dep)
	if err != nil {
		logger.Debug("resolution failed", "err", err)
		node.Err = err
		return node, err
	}
	node.Commit = res.Commit
	node.Addons = res.Addons
	logger.Debug("resolved", "addons", len(res.Addons), "dependencies", len(res.Dependencies))

	path := append(ancestors[:len(ancestors):len(ancestors)], dep.Name())
	for _, child := range res.Dependencies {
		if cycle := findCycle(path, child.Name()); cycle != nil {
			logger.Warn("skipping circular dependency", "cycle", strings.Join(cycle, " → "))
			node.Children = append(node.Children, &Node{Dependency: child, Depth: depth + 1, Cycle: cycle})
			continue
		}

		childNode, err := r.walk(ctx, child, depth+1, path)
		node.Children = append(node.Children, childNode)
		if err != nil && ctx.Err() != nil {
			return node, ctx.Err()
		}
	}
	return node, nil
}

// findCycle returns the chain from the first occurrence of name in path back
// to name, or nil if name is not in path.
func findCycle(path []string, name string) []string {
	for i, n := range path {
		if n == name {
			cycle := make([]string, 0, len(path)-i+1)
			cycle = append(cycle, path[i:]...)
			return append(cycle, name)
		}
	}
	return nil
}

// CycleError returns the cycle of n as an error, or nil.
func (n *Node) CycleError() error {
	if n.Cycle == nil {
		return nil
	}
	return &CircularDependencyError{Cycle: n.Cycle}
}
