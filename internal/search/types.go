package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/company/gopm/internal/manifest"
)

// Result is a repository candidate returned by a provider.
type Result struct {
	Provider    string
	Name        string
	Description string
	CloneURL    string
	// DefaultVersion is what gets pinned when the result is installed. Providers
	// set it to the repository's default branch.
	DefaultVersion string
}

// NewResult validates and builds a Result. Name and clone URL are required.
func NewResult(provider, name, description, cloneURL, defaultVersion string) (Result, error) {
	name = strings.TrimSpace(name)
	cloneURL = strings.TrimSpace(cloneURL)
	if name == "" {
		return Result{}, &InvalidResultError{Provider: provider, Field: "name"}
	}
	if cloneURL == "" {
		return Result{}, &InvalidResultError{Provider: provider, Name: name, Field: "clone url"}
	}
	if strings.ContainsAny(cloneURL, " \t\n") {
		return Result{}, &InvalidResultError{Provider: provider, Name: name, Field: "clone url"}
	}
	if defaultVersion == "" {
		defaultVersion = manifest.LatestAlias
	}
	return Result{
		Provider:       provider,
		Name:           name,
		Description:    strings.TrimSpace(description),
		CloneURL:       cloneURL,
		DefaultVersion: defaultVersion,
	}, nil
}

// Provider searches a hosting service for repositories.
type Provider interface {
	Name() string
	Search(ctx context.Context, term string) ([]Result, error)
}

// InvalidResultError is returned for a provider item missing a required field.
type InvalidResultError struct {
	Provider string
	Name     string
	Field    string
}

func (e *InvalidResultError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: result without %s", e.Provider, e.Field)
	}
	return fmt.Sprintf("%s: result %q has an invalid %s", e.Provider, e.Name, e.Field)
}

// HTTPError is returned when a provider answers with an unexpected status.
type HTTPError struct {
	Provider   string
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.URL)
}

// RateLimitError is returned when a provider refuses requests until Reset.
type RateLimitError struct {
	Provider string
	Reset    time.Time
}

func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return fmt.Sprintf("%s: rate limit exceeded", e.Provider)
	}
	return fmt.Sprintf("%s: rate limit exceeded, resets at %s", e.Provider, e.Reset.Format(time.Kitchen))
}
