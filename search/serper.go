package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"auto_slide_deck_generator/generator"
)

const serperEndpoint = "https://google.serper.dev/search"

// Serper queries Google results through serper.dev.
type Serper struct {
	APIKey   string
	Endpoint string
	client   *http.Client
}

func NewSerper(apiKey string, client *http.Client) *Serper {
	return &Serper{APIKey: apiKey, Endpoint: serperEndpoint, client: client}
}

func (s *Serper) Search(ctx context.Context, query string, maxResults int) ([]generator.SearchResult, error) {
	payload := map[string]any{"q": query}
	if maxResults > 0 {
		payload["num"] = maxResults
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", s.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{provider: "serper", code: resp.StatusCode}
	}

	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("serper: decode response: %w", err)
	}
	out := make([]generator.SearchResult, 0, len(raw.Organic))
	for _, r := range raw.Organic {
		out = append(out, generator.SearchResult{URL: r.Link, Title: r.Title, Content: r.Snippet})
	}
	return limit(out, maxResults), nil
}
