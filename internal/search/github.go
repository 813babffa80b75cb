package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/company/gopm/internal/logging"
)

// DefaultGitHubURL is the public GitHub API.
const DefaultGitHubURL = "https://api.github.com"

// GitHub searches repositories through the GitHub REST API.
type GitHub struct {
	*client
}

var _ Provider = (*GitHub)(nil)

// NewGitHub creates a GitHub provider.
func NewGitHub(opts ...Option) *GitHub {
	return &GitHub{client: newClient(DefaultGitHubURL, opts...)}
}

// Name implements Provider.
func (g *GitHub) Name() string { return "github" }

type githubResponse struct {
	Items []struct {
		FullName      string `json:"full_name"`
		Description   string `json:"description"`
		CloneURL      string `json:"clone_url"`
		DefaultBranch string `json:"default_branch"`
	} `json:"items"`
}

func (g *GitHub) searchURL(term string) string {
	q := term
	if g.language != "" {
		q += " language:" + g.language
	}
	v := url.Values{}
	v.Set("q", q)
	v.Set("per_page", strconv.Itoa(g.perPage))
	return g.baseURL + "/search/repositories?" + v.Encode()
}

// Search implements Provider.
func (g *GitHub) Search(ctx context.Context, term string) ([]Result, error) {
	term = strings.TrimSpace(term)
	if cached, ok := g.cache.Get(g.Name(), term); ok {
		return cached, nil
	}

	data, err := g.get(ctx, g.Name(), g.searchURL(term), func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+g.token)
	})
	if err != nil {
		return nil, err
	}

	var resp githubResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing github response: %w", err)
	}

	logger := logging.FromContext(ctx)
	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		r, err := NewResult(g.Name(), item.FullName, item.Description, item.CloneURL, item.DefaultBranch)
		if err != nil {
			logger.Warn("skipping search result", "err", err)
			continue
		}
		results = append(results, r)
	}

	g.cache.Set(g.Name(), term, results)
	return results, nil
}
