package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	defaultMaxFetchChars = 4000
	maxFetchBodyBytes    = 2 << 20
)

// Fetcher retrieves the readable text of a page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// ReadabilityFetcher downloads a page and extracts its main text with go-readability.
type ReadabilityFetcher struct {
	client   *http.Client
	maxChars int
}

func NewReadabilityFetcher(client *http.Client, maxChars int) *ReadabilityFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if maxChars <= 0 {
		maxChars = defaultMaxFetchChars
	}
	return &ReadabilityFetcher{client: client, maxChars: maxChars}
}

func (f *ReadabilityFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid url %q", pageURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch http %d", resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxFetchBodyBytes), u)
	if err != nil {
		return "", fmt.Errorf("extract readable text: %w", err)
	}
	text := strings.Join(strings.Fields(article.TextContent), " ")
	if text == "" {
		return "", errors.New("page has no readable text")
	}
	if r := []rune(text); len(r) > f.maxChars {
		text = string(r[:f.maxChars])
	}
	return text, nil
}
