package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"auto_slide_deck_generator/generator"
)

// MockSearcher 离线检索：按查询返回固定片段，不访问网络，配合 MockLLM 本地跑通整条流水线。
type MockSearcher struct{}

func (MockSearcher) Search(ctx context.Context, query string, maxResults int) ([]generator.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	slug := url.PathEscape(strings.ToLower(strings.Join(strings.Fields(q), "-")))
	res := []generator.SearchResult{
		{
			Title:   "Overview: " + q,
			URL:     "https://example.com/offline/" + slug,
			Content: fmt.Sprintf("Offline fixture snippet for %q. Configure a real search provider for researched content.", q),
			Score:   0.5,
		},
		{
			Title:   "Background reading",
			URL:     "https://example.com/offline/background",
			Content: "Shared offline background snippet.",
			Score:   0.1,
		},
	}
	if maxResults > 0 && len(res) > maxResults {
		res = res[:maxResults]
	}
	return res, nil
}
