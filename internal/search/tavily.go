// Package search wraps the Tavily web-search API. A missing API key is a
// recoverable "not configured" condition, never an error.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.tavily.com/search"

// NotConfiguredMsg is returned by Search when no API key is set.
const NotConfiguredMsg = "Web search is not configured. Set TAVILY_API_KEY to enable it."

// Client calls the Tavily search API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a search client. An empty apiKey yields an unconfigured
// client whose Search degrades gracefully.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type searchResponse struct {
	Answer  string         `json:"answer"`
	Results []searchResult `json:"results"`
}

// Search runs the query and returns a formatted text block. Every failure
// mode degrades to a descriptive string.
func (c *Client) Search(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "Empty search query."
	}
	if !c.Configured() {
		return NotConfiguredMsg
	}

	body, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		MaxResults:  5,
		SearchDepth: "basic",
	})
	if err != nil {
		return fmt.Sprintf("Web search failed: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Sprintf("Web search failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Sprintf("Web search failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Sprintf("Web search failed: status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Sprintf("Web search failed: %v", err)
	}

	return formatResults(query, result)
}

// formatResults renders the response the way the chat surface expects it.
func formatResults(query string, r searchResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Web search results for: %q\n", query)

	if r.Answer != "" {
		fmt.Fprintf(&sb, "\nQuick answer: %s\n", r.Answer)
	}

	for i, res := range r.Results {
		snippet := res.Content
		if snippet == "" {
			snippet = "No description"
		}
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		fmt.Fprintf(&sb, "\n%d. %s\n   %s\n   %s\n", i+1, res.Title, res.URL, snippet)
	}

	if len(r.Results) == 0 && r.Answer == "" {
		sb.WriteString("\nNo results.\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
