package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/company/gopm/internal/logging"
	"github.com/company/gopm/internal/manifest"
)

// Client is the version-control boundary used by the resolver.
type Client interface {
	// Clone fetches uri into destDir/<derived name> and returns that directory.
	Clone(ctx context.Context, uri, destDir string) (string, error)
	// Checkout detaches the working tree of repoDir at revision.
	Checkout(ctx context.Context, repoDir, revision string) error
	// LatestCommit returns the full id of the checked-out commit.
	LatestCommit(ctx context.Context, repoDir string) (string, error)
}

// Error is returned when a git invocation fails.
type Error struct {
	Args     []string
	Dir      string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Stderr
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Command(), msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Command returns the failed command line.
func (e *Error) Command() string {
	return "git " + strings.Join(e.Args, " ")
}

// Git runs the git binary.
type Git struct {
	binary string
}

// NewGit returns a Client backed by the given git binary ("git" if empty).
func NewGit(binary string) *Git {
	if binary == "" {
		binary = "git"
	}
	return &Git{binary: binary}
}

// Binary returns the configured executable.
func (g *Git) Binary() string {
	return g.binary
}

// run executes git in dir and returns trimmed stdout.
func (g *Git) run(ctx context.Context, dir string, args ...string) (string, error) {
	logging.FromContext(ctx).Debug("git", "args", strings.Join(args, " "), "dir", dir)

	cmd := exec.CommandContext(ctx, g.binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		gitErr := &Error{
			Args:     args,
			Dir:      dir,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			gitErr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			gitErr.Err = ctxErr
		}
		return "", gitErr
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Clone implements Client.
func (g *Git) Clone(ctx context.Context, uri, destDir string) (string, error) {
	name := manifest.NameFromURI(uri)
	args := []string{"clone", "--quiet", "--", uri, name}
	if name == "" {
		return "", &Error{Args: args, Dir: destDir, ExitCode: -1, Err: fmt.Errorf("cannot derive a directory name from %q", uri)}
	}

	target := filepath.Join(destDir, name)
	if entries, err := os.ReadDir(target); err == nil && len(entries) > 0 {
		return "", &Error{Args: args, Dir: destDir, ExitCode: -1, Err: fmt.Errorf("destination %s already exists and is not empty", target)}
	}

	if _, err := g.run(ctx, destDir, args...); err != nil {
		os.RemoveAll(target)
		return "", err
	}
	return target, nil
}

// Checkout implements Client. Checking out the branch the repository is
// already on does nothing.
func (g *Git) Checkout(ctx context.Context, repoDir, revision string) error {
	if current, err := g.run(ctx, repoDir, "rev-parse", "--abbrev-ref", "HEAD"); err == nil && current == revision {
		return nil
	}
	_, err := g.run(ctx, repoDir, "-c", "advice.detachedHead=false", "checkout", "--quiet", "--detach", revision)
	return err
}

// LatestCommit implements Client.
func (g *Git) LatestCommit(ctx context.Context, repoDir string) (string, error) {
	return g.run(ctx, repoDir, "rev-parse", "HEAD")
}

// SameRevision reports whether a pinned version and a full commit id denote the
// same commit. Abbreviated ids of at least seven characters match by prefix.
func SameRevision(pinned, commit string) bool {
	pinned = strings.ToLower(strings.TrimSpace(pinned))
	commit = strings.ToLower(strings.TrimSpace(commit))
	if pinned == "" || commit == "" {
		return false
	}
	if pinned == commit {
		return true
	}
	if len(pinned) >= 7 && len(pinned) < len(commit) {
		return strings.HasPrefix(commit, pinned)
	}
	return false
}
