package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebScrape_ExtractsVisibleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><style>body{color:red}</style></head>
			<body><script>var hidden = 1;</script><h1>Title</h1><p>Some body text.</p></body></html>`))
	}))
	defer srv.Close()

	handler := webScrape(srv.Client())
	result := handler(context.Background(), map[string]any{"url": srv.URL})

	require.Equal(t, true, result["success"])
	content := result["content"].(string)
	assert.Contains(t, content, "Title")
	assert.Contains(t, content, "Some body text.")
	assert.NotContains(t, content, "hidden")
	assert.NotContains(t, content, "color:red")
}

func TestWebScrape_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	handler := webScrape(srv.Client())
	result := handler(context.Background(), map[string]any{"url": srv.URL})

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "404")
}

func TestWebScrape_CapsContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>" + strings.Repeat("abcde ", 3000) + "</p></body></html>"))
	}))
	defer srv.Close()

	handler := webScrape(srv.Client())
	result := handler(context.Background(), map[string]any{"url": srv.URL})

	require.Equal(t, true, result["success"])
	assert.LessOrEqual(t, len(result["content"].(string)), webScrapeContentLimit)
}

func TestWebScrape_RequiresURL(t *testing.T) {
	handler := webScrape(nil)

	result := handler(context.Background(), map[string]any{})

	assert.Equal(t, false, result["success"])
}

func TestWebSearch_WithoutCredentials_ReportsConfigError(t *testing.T) {
	handler := webSearch("", "")

	result := handler(context.Background(), map[string]any{"query": "golang"})

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "not configured")
}

func TestWebSearch_RequiresQuery(t *testing.T) {
	handler := webSearch("key", "engine")

	result := handler(context.Background(), map[string]any{})

	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "query is required")
}

func TestExtractText_MalformedHTMLStillYieldsText(t *testing.T) {
	// html.Parse is error-tolerant; broken markup should not fail the tool.
	text, err := extractText(strings.NewReader("<p>unclosed <b>bold"))

	require.NoError(t, err)
	assert.Contains(t, text, "unclosed")
	assert.Contains(t, text, "bold")
}
