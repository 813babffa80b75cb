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

// DefaultGitLabURL is gitlab.com.
const DefaultGitLabURL = "https://gitlab.com"

// GitLab searches projects through the GitLab v4 API.
type GitLab struct {
	*client
}

var _ Provider = (*GitLab)(nil)

// NewGitLab creates a GitLab provider.
func NewGitLab(opts ...Option) *GitLab {
	return &GitLab{client: newClient(DefaultGitLabURL, opts...)}
}

// Name implements Provider.
func (g *GitLab) Name() string { return "gitlab" }

type gitlabProject struct {
	PathWithNamespace string `json:"path_with_namespace"`
	Description       string `json:"description"`
	HTTPURLToRepo     string `json:"http_url_to_repo"`
	DefaultBranch     string `json:"default_branch"`
}

// projectsURL returns GET /api/v4/projects?search=:term.
func (g *GitLab) projectsURL(term string) string {
	v := url.Values{}
	v.Set("search", term)
	v.Set("per_page", strconv.Itoa(g.perPage))
	v.Set("order_by", "last_activity_at")
	v.Set("simple", "true")
	return g.baseURL + "/api/v4/projects?" + v.Encode()
}

// Search implements Provider.
func (g *GitLab) Search(ctx context.Context, term string) ([]Result, error) {
	term = strings.TrimSpace(term)
	if cached, ok := g.cache.Get(g.Name(), term); ok {
		return cached, nil
	}

	data, err := g.get(ctx, g.Name(), g.projectsURL(term), func(req *http.Request) {
		req.Header.Set("PRIVATE-TOKEN", g.token)
	})
	if err != nil {
		return nil, err
	}

	var projects []gitlabProject
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("parsing gitlab response: %w", err)
	}

	logger := logging.FromContext(ctx)
	results := make([]Result, 0, len(projects))
	for _, p := range projects {
		r, err := NewResult(g.Name(), p.PathWithNamespace, p.Description, p.HTTPURLToRepo, p.DefaultBranch)
		if err != nil {
			logger.Warn("skipping search result", "err", err)
			continue
		}
		results = append(results, r)
	}

	g.cache.Set(g.Name(), term, results)
	return results, nil
}
