package filemanager

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateName rejects names that are not a single, plain path component.
func ValidateName(name, label string) error {
	if name == "" {
		return fmt.Errorf("empty %s", label)
	}
	cleaned := filepath.Clean(name)
	if cleaned != name || cleaned == "." || cleaned == ".." ||
		strings.ContainsAny(cleaned, `/\`) || filepath.IsAbs(cleaned) {
		return fmt.Errorf("invalid %s: %q", label, name)
	}
	return nil
}

// ValidateInsideDir checks that path is base or a child of base.
func ValidateInsideDir(base, path string) error {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path %q escapes base directory %q", path, base)
	}
	return nil
}
