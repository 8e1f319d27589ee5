// Package search provides the web search gateway for the planner.
//
// Two backends are available: DuckDuckGo's HTML endpoint (no API key) and
// GitHub repository search. Both enforce a per-call timeout and normalize
// results into ranked {title, snippet, url} triples. Results are evidence:
// read-only once returned.
package search

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/pland/internal/config"
	"github.com/fyrsmithlabs/pland/internal/logging"
)

// Result is one ranked search result.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Searcher is the capability the planner consumes: submit a query, get
// ranked results. Implementations apply their own per-call timeout.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Error wraps a per-query search failure. The planner treats these as
// non-fatal: it logs and moves to the next query.
type Error struct {
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("search %q: %v", e.Query, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrNoResults is returned when a query produced an empty result page.
var ErrNoResults = errors.New("no results")

// New builds the configured search backend.
func New(cfg config.SearchConfig, timeout config.Duration, logger *logging.Logger) (Searcher, error) {
	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)

	switch cfg.Engine {
	case "duckduckgo":
		return NewDuckDuckGo(cfg.MaxResults, timeout.Duration(), limiter, logger), nil
	case "github":
		return NewGitHub(cfg.GitHubToken.Value(), cfg.MaxResults, timeout.Duration(), limiter, logger), nil
	default:
		return nil, fmt.Errorf("unknown search engine: %q", cfg.Engine)
	}
}
