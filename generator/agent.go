package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// ErrModelCall marks a model invocation that failed or returned an unusable shape.
var ErrModelCall = errors.New("model call failed")

const (
	keyPointFailedBullet   = "Content generation failed."
	conclusionFailedBullet = "Summary generation failed."
)

// Agent 负责大纲规划、事实提炼与逐页内容生成。
type Agent struct {
	llm           LLMClient
	logger        *zap.Logger
	callTimeout   time.Duration
	maxRetries    int
	retryInterval time.Duration
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCallTimeout bounds each model round-trip. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(a *Agent) { a.callTimeout = d }
}

// WithRetry retries a failed or malformed call up to n extra times with
// exponential backoff starting at interval.
func WithRetry(n int, interval time.Duration) Option {
	return func(a *Agent) {
		if n >= 0 {
			a.maxRetries = n
		}
		if interval > 0 {
			a.retryInterval = interval
		}
	}
}

func NewAgent(llm LLMClient, opts ...Option) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{
		llm:           llm,
		logger:        zap.NewNop(),
		retryInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// call 执行一次结构化调用：超时、重试，解码失败同样触发重试。
func (a *Agent) call(ctx context.Context, prompt Prompt, decode func(raw string) error) error {
	name := "text"
	if prompt.Schema != nil {
		name = prompt.Schema.Name
	}
	attempt := 0
	op := func() error {
		attempt++
		cctx := ctx
		if a.callTimeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(ctx, a.callTimeout)
			defer cancel()
		}
		raw, err := a.llm.Complete(cctx, prompt)
		if err == nil {
			err = decode(raw)
		}
		if err != nil {
			a.logger.Debug("model call attempt failed",
				zap.String("schema", name), zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(a.maxRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrModelCall, name, err)
	}
	return nil
}

// ExpandQueries turns a topic into 4-5 search queries.
func (a *Agent) ExpandQueries(ctx context.Context, topic string) ([]string, error) {
	var queries []string
	err := a.call(ctx, BuildQueryPrompt(topic), func(raw string) error {
		var err error
		queries, err = decodeQueries(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return queries, nil
}

// PlanContent produces the 7-slide outline from the merged snippets.
func (a *Agent) PlanContent(ctx context.Context, topic string, results []SearchResult) (SlidePlan, error) {
	var plan SlidePlan
	err := a.call(ctx, BuildPlanPrompt(topic, planContext(topic, results)), func(raw string) error {
		var err error
		plan, err = decodePlan(raw)
		return err
	})
	if err != nil {
		return SlidePlan{}, err
	}
	return plan, nil
}

// DistillFacts 提炼事实并按幻灯片标题分桶。失败时返回空上下文与错误，由调用方决定是否继续。
func (a *Agent) DistillFacts(ctx context.Context, topic string, results []SearchResult, plan SlidePlan) (StructuredContext, error) {
	titles := plan.ContextTitles()
	var facts []Fact
	err := a.call(ctx, BuildDistillPrompt(topic, titles, results), func(raw string) error {
		var err error
		facts, err = decodeFacts(raw)
		return err
	})
	if err != nil {
		return StructuredContext{BySlide: map[string][]ContextPoint{}}, err
	}
	return Bucket(titles, facts), nil
}

// Bucket assigns each fact to the bucket whose title matches exactly.
// Every title gets a bucket; facts for unknown titles are dropped.
func Bucket(titles []string, facts []Fact) StructuredContext {
	by := make(map[string][]ContextPoint, len(titles))
	for _, t := range titles {
		by[t] = []ContextPoint{}
	}
	for _, f := range facts {
		if _, ok := by[f.SlideTitle]; !ok {
			continue
		}
		by[f.SlideTitle] = append(by[f.SlideTitle], ContextPoint{Fact: f.Fact, Source: f.Source})
	}
	return StructuredContext{BySlide: by}
}

// GenerateSlides 按固定顺序生成：标题页、概览页、各关键点页、结论页。
// 单页失败只替换为占位内容，失败原因随第二个返回值给出。
func (a *Agent) GenerateSlides(ctx context.Context, topic string, plan SlidePlan, sctx StructuredContext, results []SearchResult) ([]SlideContent, []error) {
	slides := make([]SlideContent, 0, len(plan.KeyPoints)+3)
	var failures []error

	slides = append(slides,
		SlideContent{Title: plan.Title, Bullets: []string{}},
		SlideContent{Title: plan.OverviewTitle, Bullets: append([]string(nil), plan.AgendaPoints...)},
	)

	for _, title := range plan.KeyPoints {
		a.logger.Debug("generating slide", zap.String("slide", title))
		var sc SlideContent
		err := a.call(ctx, BuildKeyPointPrompt(topic, title, sctx.Points(title)), func(raw string) error {
			var err error
			sc, err = decodeSlide(raw, title)
			return err
		})
		if err != nil {
			failures = append(failures, fmt.Errorf("slide %q: %w", title, err))
			sc = placeholder(title, keyPointFailedBullet)
		}
		slides = append(slides, sc)
	}

	var conclusion SlideContent
	err := a.call(ctx, BuildConclusionPrompt(topic, plan.ConclusionTitle, results), func(raw string) error {
		var err error
		conclusion, err = decodeSlide(raw, plan.ConclusionTitle)
		return err
	})
	if err != nil {
		failures = append(failures, fmt.Errorf("slide %q: %w", plan.ConclusionTitle, err))
		conclusion = placeholder(plan.ConclusionTitle, conclusionFailedBullet)
	}
	conclusion.References = nil
	slides = append(slides, conclusion)

	return slides, failures
}

func placeholder(title, bullet string) SlideContent {
	return SlideContent{Title: title, Bullets: []string{bullet}}
}
