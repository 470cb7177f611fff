package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_NotConfigured(t *testing.T) {
	c := NewClient("")
	out := c.Search(context.Background(), "golang generics")
	assert.Equal(t, NotConfiguredMsg, out)
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := NewClient("key")
	out := c.Search(context.Background(), "   ")
	assert.Equal(t, "Empty search query.", out)
}

func TestSearch_FormatsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req.APIKey)
		assert.Equal(t, "go testing", req.Query)
		assert.Equal(t, 5, req.MaxResults)
		assert.Equal(t, "basic", req.SearchDepth)

		json.NewEncoder(w).Encode(searchResponse{
			Answer: "Use the testing package.",
			Results: []searchResult{
				{Title: "Testing in Go", URL: "https://example.com/1", Content: "How to test Go code", Score: 0.9},
				{Title: "Long one", URL: "https://example.com/2", Content: strings.Repeat("y", 300), Score: 0.5},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key")
	c.baseURL = srv.URL

	out := c.Search(context.Background(), "go testing")
	assert.Contains(t, out, `Web search results for: "go testing"`)
	assert.Contains(t, out, "Quick answer: Use the testing package.")
	assert.Contains(t, out, "1. Testing in Go")
	assert.Contains(t, out, "https://example.com/1")
	assert.Contains(t, out, "...", "long snippets are truncated")
}

func TestSearch_ServerErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("key")
	c.baseURL = srv.URL

	out := c.Search(context.Background(), "anything")
	assert.Contains(t, out, "Web search failed")
	assert.Contains(t, out, "500")
}

func TestSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer srv.Close()

	c := NewClient("key")
	c.baseURL = srv.URL

	out := c.Search(context.Background(), "obscure query")
	assert.Contains(t, out, "No results.")
}
