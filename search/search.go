// Package search gathers web snippets for the slide pipeline.
//
// Providers implement Searcher over a vendor HTTP API; Gatherer fans queries
// out to one provider, tolerates per-query failures, and merges the results
// into a URL-deduplicated list.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"auto_slide_deck_generator/generator"
)

// ErrSearchCall marks a failed call to the search service for one query.
var ErrSearchCall = errors.New("search call failed")

// Searcher executes one query and returns at most maxResults records.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]generator.SearchResult, error)
}

type Provider string

const (
	TavilyProvider Provider = "tavily"
	BraveProvider  Provider = "brave"
	SerperProvider Provider = "serper"
	// MockProvider needs no api key and never leaves the process.
	MockProvider Provider = "mock"
)

// Settings carries provider credentials and transport options.
type Settings struct {
	APIKey string
	// Depth is Tavily's search_depth (basic or advanced).
	Depth  string
	Client *http.Client
}

// NewSearcher builds the provider named by p.
func NewSearcher(p Provider, s Settings) (Searcher, error) {
	if p == MockProvider {
		return MockSearcher{}, nil
	}
	if s.APIKey == "" {
		return nil, fmt.Errorf("search provider %s requires an api key", p)
	}
	if s.Client == nil {
		s.Client = &http.Client{Timeout: 20 * time.Second}
	}
	switch p {
	case TavilyProvider:
		return NewTavily(s.APIKey, s.Depth, s.Client), nil
	case BraveProvider:
		return NewBrave(s.APIKey, s.Client), nil
	case SerperProvider:
		return NewSerper(s.APIKey, s.Client), nil
	default:
		return nil, fmt.Errorf("search provider %s not supported", p)
	}
}
