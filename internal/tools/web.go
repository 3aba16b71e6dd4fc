package tools

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// webSearchResultCount and webScrapeContentLimit cap what gets fed back into
// the conversation context.
const (
	webSearchResultCount  = 5
	webScrapeContentLimit = 5000
	webScrapeTimeout      = 10 * time.Second
)

type webSearchRequest struct {
	Query string `mapstructure:"query"`
}

// webSearch queries Google Custom Search. Both credentials come from the
// environment at wiring time; without them the tool reports a configuration
// failure rather than being dropped from the registry.
func webSearch(apiKey, engineID string) Handler {
	return func(ctx context.Context, args map[string]any) map[string]any {
		var req webSearchRequest
		if err := decodeArgs(args, &req); err != nil {
			return fail("invalid arguments: %v", err)
		}
		if req.Query == "" {
			return fail("query is required")
		}
		if apiKey == "" || engineID == "" {
			return fail("google api key or search engine id is not configured")
		}

		svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return fail("create search service: %v", err)
		}

		resp, err := svc.Cse.List().Q(req.Query).Cx(engineID).Num(webSearchResultCount).Context(ctx).Do()
		if err != nil {
			return fail("web search: %v", err)
		}

		results := make([]map[string]any, 0, len(resp.Items))
		for _, item := range resp.Items {
			results = append(results, map[string]any{
				"title":   item.Title,
				"link":    item.Link,
				"snippet": item.Snippet,
			})
		}
		return ok(map[string]any{"results": results})
	}
}

type webScrapeRequest struct {
	URL string `mapstructure:"url"`
}

// webScrape fetches a page and extracts its visible text.
func webScrape(client *http.Client) Handler {
	if client == nil {
		client = &http.Client{Timeout: webScrapeTimeout}
	}
	return func(ctx context.Context, args map[string]any) map[string]any {
		var req webScrapeRequest
		if err := decodeArgs(args, &req); err != nil {
			return fail("invalid arguments: %v", err)
		}
		if req.URL == "" {
			return fail("url is required")
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
		if err != nil {
			return fail("build request: %v", err)
		}
		httpReq.Header.Set("User-Agent", "owl-cli/1.0")

		resp, err := client.Do(httpReq)
		if err != nil {
			return fail("retrieve %s: %v", req.URL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fail("retrieve %s: status %s", req.URL, resp.Status)
		}

		text, err := extractText(resp.Body)
		if err != nil {
			return fail("parse %s: %v", req.URL, err)
		}
		if len(text) > webScrapeContentLimit {
			text = text[:webScrapeContentLimit]
		}
		return ok(map[string]any{"content": text})
	}
}

// extractText walks the HTML tree collecting text nodes, skipping script and
// style subtrees.
func extractText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				b.WriteString(trimmed)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(b.String()), nil
}
