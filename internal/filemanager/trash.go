package filemanager

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Bios-Marcel/wastebasket/v2"
)

// Delete modes accepted by NewRemover.
const (
	ModeTrash  = "trash"
	ModeDelete = "delete"
)

// Remover removes a path that is about to be overwritten.
type Remover interface {
	Remove(path string) error
}

// Permanent deletes paths outright.
type Permanent struct{}

// Remove implements Remover.
func (Permanent) Remove(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

// Trash moves paths into the desktop trash (freedesktop.org trash on Linux and
// BSD, Finder on macOS, the recycle bin on Windows) so they can be restored.
type Trash struct {
	trash func(paths ...string) error
}

// NewTrash returns a Trash backed by the system trash.
func NewTrash() *Trash {
	return &Trash{trash: wastebasket.Trash}
}

// NewRemover returns the Remover for mode.
func NewRemover(mode string) (Remover, error) {
	switch mode {
	case "", ModeTrash:
		return NewTrash(), nil
	case ModeDelete:
		return Permanent{}, nil
	default:
		return nil, fmt.Errorf("unknown delete mode %q (want %q or %q)", mode, ModeTrash, ModeDelete)
	}
}

// Remove implements Remover.
func (t *Trash) Remove(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(abs); err != nil {
		return fmt.Errorf("moving %s to trash: %w", path, err)
	}
	if err := t.trash(abs); err != nil {
		return fmt.Errorf("moving %s to trash: %w", path, err)
	}
	return nil
}
