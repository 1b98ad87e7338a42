package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"auto_slide_deck_generator/generator"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Tavily calls the Tavily search API.
type Tavily struct {
	APIKey string
	// Depth controls Tavily's search_depth parameter (basic or advanced).
	Depth    string
	Endpoint string
	client   *http.Client
}

func NewTavily(apiKey, depth string, client *http.Client) *Tavily {
	if depth == "" {
		depth = "basic"
	}
	return &Tavily{APIKey: apiKey, Depth: depth, Endpoint: tavilyEndpoint, client: client}
}

type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]generator.SearchResult, error) {
	payload, err := json.Marshal(tavilyRequest{Query: query, SearchDepth: t.Depth, MaxResults: maxResults})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{provider: "tavily", code: resp.StatusCode}
	}

	var data tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}
	out := make([]generator.SearchResult, 0, len(data.Results))
	for _, r := range data.Results {
		out = append(out, generator.SearchResult{URL: r.URL, Title: r.Title, Content: r.Content, Score: r.Score})
	}
	return limit(out, maxResults), nil
}

// statusError reports a non-200 reply; 429 and 5xx are worth retrying.
type statusError struct {
	provider string
	code     int
}

func (e *statusError) Error() string { return fmt.Sprintf("%s http %d", e.provider, e.code) }

func (e *statusError) Temporary() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func limit(results []generator.SearchResult, n int) []generator.SearchResult {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}
