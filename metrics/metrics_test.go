package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.ObserveStage("plan", "ok", 2*time.Second)
	r.ObserveStage("distill", "contained", time.Second)
	r.ModelCall("slides", nil)
	r.ModelCall("slides", errors.New("boom"))
	r.ModelCall("slides", errors.New("boom"))
	r.SearchQueries(3, 1, 9)
	r.Placeholders(2)
	r.Placeholders(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageOutcome.WithLabelValues("distill", "contained")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.modelCalls.WithLabelValues("slides", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.searchQueries.WithLabelValues("ok")))
	assert.Equal(t, 9.0, testutil.ToFloat64(r.searchResults))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.placeholders))
	assert.Equal(t, 2, testutil.CollectAndCount(r.stageDuration))
}

func TestRecorderModelCallBatch(t *testing.T) {
	r := New()
	r.ModelCall("generate_slides", errors.New("boom"))
	r.ModelCalls("generate_slides", 4, 1)
	r.ModelCalls("generate_slides", 0, 0)

	assert.Equal(t, 4.0, testutil.ToFloat64(r.modelCalls.WithLabelValues("generate_slides", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.modelCalls.WithLabelValues("generate_slides", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.modelCalls))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.ObserveStage("plan", "ok", time.Second)
	r.ModelCall("plan", nil)
	r.ModelCalls("plan", 1, 1)
	r.SearchQueries(1, 0, 1)
	r.Placeholders(1)
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.Push(context.Background(), "http://unused", "job", "id"))
}

func TestPushSendsGroupedMetrics(t *testing.T) {
	var (
		mu   sync.Mutex
		path string
		body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		mu.Lock()
		path, body = req.URL.Path, string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := New()
	r.Placeholders(1)
	require.NoError(t, r.Push(context.Background(), srv.URL, "slidegen", "run-1"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/metrics/job/slidegen/run_id/run-1", path)
	assert.Contains(t, body, "slidegen_placeholder_slides_total")
}

func TestPushSkippedWithoutURL(t *testing.T) {
	assert.NoError(t, New().Push(context.Background(), "", "", ""))
}
