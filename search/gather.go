package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"auto_slide_deck_generator/generator"
)

const (
	defaultMaxResults  = 4
	defaultConcurrency = 4
)

// Gatherer runs a batch of queries against one Searcher.
type Gatherer struct {
	searcher      Searcher
	fetcher       Fetcher
	logger        *zap.Logger
	limiter       *rate.Limiter
	maxResults    int
	concurrency   int
	callTimeout   time.Duration
	maxRetries    int
	retryInterval time.Duration
}

// GatherOption configures a Gatherer.
type GatherOption func(*Gatherer)

func WithLogger(l *zap.Logger) GatherOption {
	return func(g *Gatherer) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMaxResults caps results per query.
func WithMaxResults(n int) GatherOption {
	return func(g *Gatherer) {
		if n > 0 {
			g.maxResults = n
		}
	}
}

// WithConcurrency bounds the number of in-flight queries.
func WithConcurrency(n int) GatherOption {
	return func(g *Gatherer) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

// WithRateLimit paces calls to at most perSecond queries per second.
func WithRateLimit(perSecond float64) GatherOption {
	return func(g *Gatherer) {
		if perSecond > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithCallTimeout bounds each search round-trip.
func WithCallTimeout(d time.Duration) GatherOption {
	return func(g *Gatherer) { g.callTimeout = d }
}

// WithRetry retries transient failures up to n extra times.
func WithRetry(n int, interval time.Duration) GatherOption {
	return func(g *Gatherer) {
		if n >= 0 {
			g.maxRetries = n
		}
		if interval > 0 {
			g.retryInterval = interval
		}
	}
}

// WithFetcher enables filling empty snippets with readable page text.
func WithFetcher(f Fetcher) GatherOption {
	return func(g *Gatherer) { g.fetcher = f }
}

func NewGatherer(s Searcher, opts ...GatherOption) (*Gatherer, error) {
	if s == nil {
		return nil, errors.New("searcher is required")
	}
	g := &Gatherer{
		searcher:      s,
		logger:        zap.NewNop(),
		maxResults:    defaultMaxResults,
		concurrency:   defaultConcurrency,
		retryInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Outcome is the merged result of a batch plus the queries that failed.
type Outcome struct {
	Results  []generator.SearchResult
	Failures []error
}

// Gather issues every query, skipping the ones that fail, and returns the
// merged results deduplicated by URL. Merging follows query order so the
// outcome does not depend on which call finished first.
func (g *Gatherer) Gather(ctx context.Context, queries []string) Outcome {
	perQuery := make([][]generator.SearchResult, len(queries))
	errs := make([]error, len(queries))

	var eg errgroup.Group
	eg.SetLimit(g.concurrency)
	for i, q := range queries {
		eg.Go(func() error {
			g.logger.Debug("searching", zap.String("query", q))
			res, err := g.searchOne(ctx, q)
			if err != nil {
				g.logger.Warn("search query failed, skipping", zap.String("query", q), zap.Error(err))
				errs[i] = err
				return nil
			}
			perQuery[i] = res
			return nil
		})
	}
	_ = eg.Wait()

	var merged []generator.SearchResult
	var out Outcome
	for i := range queries {
		merged = append(merged, perQuery[i]...)
		if errs[i] != nil {
			out.Failures = append(out.Failures, errs[i])
		}
	}
	out.Results = Dedupe(merged)
	if len(out.Results) == 0 {
		g.logger.Warn("web search returned no valid results")
	}
	if g.fetcher != nil {
		g.enrich(ctx, out.Results)
	}
	return out
}

func (g *Gatherer) searchOne(ctx context.Context, query string) ([]generator.SearchResult, error) {
	var results []generator.SearchResult
	op := func() error {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		cctx := ctx
		if g.callTimeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(ctx, g.callTimeout)
			defer cancel()
		}
		res, err := g.searcher.Search(cctx, query, g.maxResults)
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && !se.Temporary() {
				return backoff.Permanent(err)
			}
			return err
		}
		results = res
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.retryInterval
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(g.maxRetries)), ctx)); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrSearchCall, query, err)
	}
	return results, nil
}

// Dedupe drops records without a URL and keeps one record per URL: the
// position of its first occurrence with the value of its last occurrence.
func Dedupe(results []generator.SearchResult) []generator.SearchResult {
	index := make(map[string]int, len(results))
	out := make([]generator.SearchResult, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		if i, ok := index[r.URL]; ok {
			out[i] = r
			continue
		}
		index[r.URL] = len(out)
		out = append(out, r)
	}
	return out
}

// enrich 为空摘要的结果抓取正文，失败时保持原样。
func (g *Gatherer) enrich(ctx context.Context, results []generator.SearchResult) {
	var eg errgroup.Group
	eg.SetLimit(g.concurrency)
	for i := range results {
		if results[i].Content != "" {
			continue
		}
		eg.Go(func() error {
			text, err := g.fetcher.Fetch(ctx, results[i].URL)
			if err != nil {
				g.logger.Debug("enrich failed", zap.String("url", results[i].URL), zap.Error(err))
				return nil
			}
			results[i].Content = text
			return nil
		})
	}
	_ = eg.Wait()
}
