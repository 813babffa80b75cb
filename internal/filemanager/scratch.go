package filemanager

import (
	"fmt"
	"os"
)

// Scratch is a temporary directory owned by a single command invocation.
type Scratch struct {
	dir string
}

// NewScratch creates a fresh, empty directory under parent (os.TempDir() if
// parent is empty). Callers must Close it.
func NewScratch(parent string) (*Scratch, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return nil, fmt.Errorf("creating scratch parent: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, "gopm-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	return &Scratch{dir: dir}, nil
}

// Path returns the scratch directory.
func (s *Scratch) Path() string {
	return s.dir
}

// Close removes the scratch directory and everything in it. It is safe to call
// more than once.
func (s *Scratch) Close() error {
	if s == nil || s.dir == "" {
		return nil
	}
	err := os.RemoveAll(s.dir)
	s.dir = ""
	return err
}
