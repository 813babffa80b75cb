package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/company/gopm/internal/manifest"
)

var (
	// ErrCancelled is returned when the user declines a confirmation.
	ErrCancelled = errors.New("cancelled")
	// ErrNoSelection is returned when no search result was chosen.
	ErrNoSelection = errors.New("no package selected")
)

// NotFoundError is returned when a lookup yields nothing.
type NotFoundError struct {
	What  string
	Query string
}

func (e *NotFoundError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("no %s", e.What)
	}
	return fmt.Sprintf("no %s matching %q", e.What, e.Query)
}

// CollisionError is returned when installing a dependency whose name is
// already in the manifest.
type CollisionError struct {
	Name     string
	Existing manifest.Dependency
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("package %s is already installed from %s", e.Name, e.Existing.URI)
}

// AmbiguousError is returned when a query matches more than one dependency.
type AmbiguousError struct {
	Query   string
	Matches []manifest.Dependency
}

// Names returns the names of the matching dependencies.
func (e *AmbiguousError) Names() []string {
	names := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		names = append(names, m.Name())
	}
	return names
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q matches multiple packages: %s", e.Query, strings.Join(e.Names(), ", "))
}
