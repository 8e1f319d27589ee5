package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/pland/internal/logging"
)

const (
	duckduckgoURL = "https://html.duckduckgo.com/html/"

	// DuckDuckGo serves an interstitial to clients without a browser UA.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxBodyBytes = 1 << 20 // 1MB
)

// DuckDuckGo searches DuckDuckGo's HTML endpoint. No API key required.
type DuckDuckGo struct {
	client     *http.Client
	baseURL    string
	limiter    *rate.Limiter
	maxResults int
	timeout    time.Duration
	logger     *logging.Logger
}

// NewDuckDuckGo creates a DuckDuckGo searcher.
func NewDuckDuckGo(maxResults int, timeout time.Duration, limiter *rate.Limiter, logger *logging.Logger) *DuckDuckGo {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &DuckDuckGo{
		client:     &http.Client{},
		baseURL:    duckduckgoURL,
		limiter:    limiter,
		maxResults: maxResults,
		timeout:    timeout,
		logger:     logger.Named("search.duckduckgo"),
	}
}

// Search submits the query and returns ranked results.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &Error{Query: query, Err: fmt.Errorf("empty query")}
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, &Error{Query: query, Err: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	searchURL := d.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, &Error{Query: query, Err: err}
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &Error{Query: query, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Query: query, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Query: query, Err: fmt.Errorf("reading response: %w", err)}
	}

	results, err := parseResults(string(body), d.maxResults)
	if err != nil {
		return nil, &Error{Query: query, Err: err}
	}

	d.logger.Debug(ctx, "search completed",
		zap.String("query", query),
		zap.Int("results", len(results)))

	return results, nil
}

// parseResults extracts ranked results from the DuckDuckGo HTML page.
// Result blocks carry class="result results_links ..."; the title anchor is
// result__a and the snippet is result__snippet.
func parseResults(htmlContent string, maxResults int) ([]Result, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	var results []Result
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" {
			class := attrValue(n, "class")
			if strings.Contains(class, "result") && strings.Contains(class, "results_links") {
				r := extractResult(n)
				if r.URL != "" && r.Title != "" {
					results = append(results, r)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

// extractResult pulls title, url, and snippet out of one result div.
func extractResult(n *html.Node) Result {
	var r Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			class := attrValue(n, "class")
			if strings.Contains(class, "result__a") {
				r.URL = cleanRedirectURL(attrValue(n, "href"))
				r.Title = textContent(n)
			} else if strings.Contains(class, "result__snippet") {
				r.Snippet = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return r
}

// cleanRedirectURL unwraps DuckDuckGo's uddg redirect links.
func cleanRedirectURL(href string) string {
	const redirectPrefix = "//duckduckgo.com/l/?uddg="
	if !strings.HasPrefix(href, redirectPrefix) {
		return href
	}
	decoded, err := url.QueryUnescape(strings.TrimPrefix(href, redirectPrefix))
	if err != nil {
		return href
	}
	if idx := strings.Index(decoded, "&"); idx > 0 {
		decoded = decoded[:idx]
	}
	return decoded
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(n.Data))
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
