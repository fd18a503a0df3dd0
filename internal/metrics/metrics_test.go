package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusObserve(t *testing.T) {
	p := NewPrometheus()
	ctx := context.Background()
	p.Observe(ctx, "get-list", true, 5*time.Millisecond)
	p.Observe(ctx, "get-list", true, 7*time.Millisecond)
	p.Observe(ctx, "add-recipe-to-list", false, time.Second)
	p.SetGroups(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.total.WithLabelValues("get-list", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.total.WithLabelValues("add-recipe-to-list", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.groups))
	assert.Equal(t, 2, testutil.CollectAndCount(p.duration))
}

func TestPrometheusHandler(t *testing.T) {
	p := NewPrometheus()
	p.Observe(context.Background(), "clear-list", true, time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `brewlist_commands_total{action="clear-list",success="true"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	r.Observe(context.Background(), "x", true, 0)
}
