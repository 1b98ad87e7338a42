// Package metrics records stage timings and external call outcomes for one
// CLI run. There is no scrape endpoint; a run can push its registry to a
// Prometheus Pushgateway before exiting.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "slidegen"

// Recorder holds the run's collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	stageDuration *prometheus.HistogramVec
	stageOutcome  *prometheus.CounterVec
	modelCalls    *prometheus.CounterVec
	searchQueries *prometheus.CounterVec
	searchResults prometheus.Gauge
	placeholders  prometheus.Counter
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		stageOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_total",
			Help:      "Pipeline stages by outcome (ok, contained, failed).",
		}, []string{"stage", "outcome"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Generative model calls by stage and result.",
		}, []string{"stage", "result"}),
		searchQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Search queries by result.",
		}, []string{"result"}),
		searchResults: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Deduplicated search results of the last run.",
		}),
		placeholders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placeholder_slides_total",
			Help:      "Slides rendered with placeholder text after a failed generation.",
		}),
	}
	r.registry.MustRegister(r.stageDuration, r.stageOutcome, r.modelCalls, r.searchQueries, r.searchResults, r.placeholders)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveStage records how long a stage took and how it ended.
func (r *Recorder) ObserveStage(stage, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	r.stageOutcome.WithLabelValues(stage, outcome).Inc()
}

func (r *Recorder) ModelCall(stage string, err error) {
	if r == nil {
		return
	}
	r.modelCalls.WithLabelValues(stage, result(err)).Inc()
}

// ModelCalls counts a batch of model calls made by one stage, e.g. one call
// per slide.
func (r *Recorder) ModelCalls(stage string, ok, failed int) {
	if r == nil {
		return
	}
	if ok > 0 {
		r.modelCalls.WithLabelValues(stage, "ok").Add(float64(ok))
	}
	if failed > 0 {
		r.modelCalls.WithLabelValues(stage, "error").Add(float64(failed))
	}
}

// SearchQueries counts one batch: ok successful and failed failed queries.
func (r *Recorder) SearchQueries(ok, failed, results int) {
	if r == nil {
		return
	}
	r.searchQueries.WithLabelValues("ok").Add(float64(ok))
	r.searchQueries.WithLabelValues("error").Add(float64(failed))
	r.searchResults.Set(float64(results))
}

func (r *Recorder) Placeholders(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.placeholders.Add(float64(n))
}

// Push sends the registry to a Pushgateway, grouped by run id.
func (r *Recorder) Push(ctx context.Context, url, job, runID string) error {
	if r == nil || url == "" {
		return nil
	}
	if job == "" {
		job = namespace
	}
	p := push.New(url, job).Gatherer(r.registry)
	if runID != "" {
		p = p.Grouping("run_id", runID)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
