// Package pipeline drives one topic through query expansion, web search,
// planning, fact distillation, slide generation and rendering.
//
// Expansion, planning and rendering failures halt the run. Search, distill
// and per-slide failures are contained: the run continues with less input
// and the failure is recorded in State.Notes.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/metrics"
	"auto_slide_deck_generator/render"
	"auto_slide_deck_generator/search"
)

type Stage string

const (
	StageExpand  Stage = "expand_queries"
	StageSearch  Stage = "web_search"
	StagePlan    Stage = "plan_content"
	StageDistill Stage = "distill_facts"
	StageSlides  Stage = "generate_slides"
	StageRender  Stage = "render_deck"
)

const (
	DefaultPresenter = "Presenter"
	DefaultTemplate  = render.DefaultThemeName
)

// ErrInvalidInput is returned before any stage runs.
var ErrInvalidInput = errors.New("invalid input")

// StageError reports the stage that halted a run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Generator is the model-backed half of the pipeline.
type Generator interface {
	ExpandQueries(ctx context.Context, topic string) ([]string, error)
	PlanContent(ctx context.Context, topic string, results []generator.SearchResult) (generator.SlidePlan, error)
	DistillFacts(ctx context.Context, topic string, results []generator.SearchResult, plan generator.SlidePlan) (generator.StructuredContext, error)
	GenerateSlides(ctx context.Context, topic string, plan generator.SlidePlan, sctx generator.StructuredContext, results []generator.SearchResult) ([]generator.SlideContent, []error)
}

type Gatherer interface {
	Gather(ctx context.Context, queries []string) search.Outcome
}

type Renderer interface {
	Render(req render.Request) (render.Result, error)
}

// Request holds the three run inputs.
type Request struct {
	Topic         string
	PresenterName string
	TemplateName  string
}

type Pipeline struct {
	gen      Generator
	gatherer Gatherer
	renderer Renderer
	metrics  *metrics.Recorder
	logger   *zap.Logger
}

type Option func(*Pipeline)

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records stage timings into m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func New(gen Generator, gatherer Gatherer, renderer Renderer, opts ...Option) (*Pipeline, error) {
	if gen == nil || gatherer == nil || renderer == nil {
		return nil, errors.New("pipeline requires a generator, a gatherer and a renderer")
	}
	p := &Pipeline{gen: gen, gatherer: gatherer, renderer: renderer, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes every stage in order. The returned State is never nil; on a
// halting failure it carries the same error in State.Err and no deck is
// rendered. Cancelling ctx halts the run at the next stage boundary with a
// StageError wrapping ctx.Err().
func (p *Pipeline) Run(ctx context.Context, req Request) (*State, error) {
	st := &State{
		RunID:         uuid.NewString(),
		Topic:         strings.TrimSpace(req.Topic),
		PresenterName: strings.TrimSpace(req.PresenterName),
		TemplateName:  strings.TrimSpace(req.TemplateName),
	}
	if st.Topic == "" {
		st.Err = fmt.Errorf("%w: topic is required", ErrInvalidInput)
		return st, st.Err
	}
	if st.PresenterName == "" {
		st.PresenterName = DefaultPresenter
	}
	if st.TemplateName == "" {
		st.TemplateName = DefaultTemplate
	}

	log := p.logger.With(zap.String("run_id", st.RunID))
	log.Info("run started",
		zap.String("topic", st.Topic), zap.String("presenter", st.PresenterName), zap.String("template", st.TemplateName))

	halt := func(stage Stage, err error) (*State, error) {
		st.Err = &StageError{Stage: stage, Err: err}
		log.Error("run halted", zap.String("stage", string(stage)), zap.Error(err))
		return st, st.Err
	}

	// 1. 查询扩展
	start := time.Now()
	queries, err := p.gen.ExpandQueries(ctx, st.Topic)
	p.metrics.ModelCall(string(StageExpand), err)
	if err != nil {
		p.observe(StageExpand, "failed", start)
		return halt(StageExpand, err)
	}
	st.SubQueries = queries
	p.observe(StageExpand, "ok", start)
	log.Info("queries expanded", zap.Strings("queries", queries))
	if err := ctx.Err(); err != nil {
		return halt(StageExpand, err)
	}

	// 2. 检索：单条查询失败不影响其它查询
	start = time.Now()
	out := p.gatherer.Gather(ctx, st.SubQueries)
	st.SearchResults = out.Results
	for _, f := range out.Failures {
		st.note(fmt.Sprintf("%s: %v", StageSearch, f))
	}
	p.metrics.SearchQueries(len(st.SubQueries)-len(out.Failures), len(out.Failures), len(out.Results))
	p.observe(StageSearch, outcome(len(out.Failures) > 0), start)
	log.Info("search finished",
		zap.Int("results", len(out.Results)), zap.Int("failed_queries", len(out.Failures)))
	if err := ctx.Err(); err != nil {
		return halt(StageSearch, err)
	}

	// 3. 规划
	start = time.Now()
	plan, err := p.gen.PlanContent(ctx, st.Topic, st.SearchResults)
	p.metrics.ModelCall(string(StagePlan), err)
	if err != nil {
		p.observe(StagePlan, "failed", start)
		return halt(StagePlan, err)
	}
	st.SlidePlan = plan
	p.observe(StagePlan, "ok", start)
	log.Info("plan ready", zap.String("title", plan.Title), zap.Strings("key_points", plan.KeyPoints))
	if err := ctx.Err(); err != nil {
		return halt(StagePlan, err)
	}

	// 4. 提炼：失败时以空上下文继续
	start = time.Now()
	sctx, err := p.gen.DistillFacts(ctx, st.Topic, st.SearchResults, st.SlidePlan)
	p.metrics.ModelCall(string(StageDistill), err)
	st.StructuredContext = sctx
	if err != nil {
		st.note(fmt.Sprintf("%s: %v", StageDistill, err))
		log.Warn("fact distillation failed, continuing without facts", zap.Error(err))
	}
	p.observe(StageDistill, outcome(err != nil), start)
	if err := ctx.Err(); err != nil {
		return halt(StageDistill, err)
	}

	// 5. 逐页生成
	start = time.Now()
	slides, failures := p.gen.GenerateSlides(ctx, st.Topic, st.SlidePlan, st.StructuredContext, st.SearchResults)
	st.SlideContents = slides
	for _, f := range failures {
		st.note(fmt.Sprintf("%s: %v", StageSlides, f))
		log.Warn("slide replaced with placeholder", zap.Error(f))
	}
	// 每个要点页一次调用，外加结论页
	calls := len(st.SlidePlan.KeyPoints) + 1
	p.metrics.ModelCalls(string(StageSlides), calls-len(failures), len(failures))
	p.metrics.Placeholders(len(failures))
	p.observe(StageSlides, outcome(len(failures) > 0), start)

	// 已取消则不渲染
	if err := ctx.Err(); err != nil {
		return halt(StageSlides, err)
	}

	// 6. 渲染
	start = time.Now()
	res, err := p.renderer.Render(render.Request{
		Topic:         st.Topic,
		PresenterName: st.PresenterName,
		ThemeName:     st.TemplateName,
		Slides:        st.SlideContents,
	})
	if err != nil {
		p.observe(StageRender, "failed", start)
		return halt(StageRender, err)
	}
	st.OutputPath = res.Path
	st.OutlinePath = res.OutlinePath
	p.observe(StageRender, "ok", start)

	log.Info("run finished", zap.String("path", st.OutputPath), zap.Int("notes", len(st.Notes)))
	return st, nil
}

func (p *Pipeline) observe(stage Stage, result string, start time.Time) {
	p.metrics.ObserveStage(string(stage), result, time.Since(start))
}

func outcome(contained bool) string {
	if contained {
		return "contained"
	}
	return "ok"
}
