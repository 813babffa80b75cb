package filemanager

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// HashTree computes a deterministic SHA256 hash of the tree rooted at root.
// root may be a directory, a regular file or a symlink. Relative paths, entry
// kinds, symlink targets and file contents all contribute; modification times
// do not.
func HashTree(root string) (string, error) {
	h := sha256.New()

	// WalkDir visits entries in lexical order, which keeps the hash stable.
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(h, "link:%s->%s\n", rel, target)
		case d.IsDir():
			fmt.Fprintf(h, "dir:%s\n", rel)
		default:
			fmt.Fprintf(h, "file:%s\n", rel)
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			_, err = io.Copy(h, f)
			f.Close()
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}
