package search

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/pland/internal/logging"
)

// GitHub searches GitHub repositories. Repository names, descriptions, and
// links make good evidence when the plan involves picking libraries or
// studying prior art.
type GitHub struct {
	client     *github.Client
	limiter    *rate.Limiter
	maxResults int
	timeout    time.Duration
	logger     *logging.Logger
}

// NewGitHub creates a GitHub searcher. An empty token falls back to
// unauthenticated requests, which GitHub rate-limits aggressively.
func NewGitHub(token string, maxResults int, timeout time.Duration, limiter *rate.Limiter, logger *logging.Logger) *GitHub {
	if logger == nil {
		logger = logging.NewNop()
	}

	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	return &GitHub{
		client:     github.NewClient(httpClient),
		limiter:    limiter,
		maxResults: maxResults,
		timeout:    timeout,
		logger:     logger.Named("search.github"),
	}
}

// Search submits the query against GitHub repository search.
func (g *GitHub) Search(ctx context.Context, query string) ([]Result, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, &Error{Query: query, Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: g.maxResults},
	}
	res, _, err := g.client.Search.Repositories(ctx, query, opts)
	if err != nil {
		return nil, &Error{Query: query, Err: err}
	}

	results := make([]Result, 0, len(res.Repositories))
	for _, repo := range res.Repositories {
		if len(results) >= g.maxResults {
			break
		}
		results = append(results, Result{
			Title:   repo.GetFullName(),
			Snippet: repo.GetDescription(),
			URL:     repo.GetHTMLURL(),
		})
	}

	g.logger.Debug(ctx, "search completed",
		zap.String("query", query),
		zap.Int("results", len(results)))

	return results, nil
}
