package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/giveaibreak/pkg/domain"
	"github.com/aretw0/giveaibreak/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnScreenEnter(ctx, &domain.ScreenEvent{Screen: "prompt", Route: "/prompt/a"})
	hooks.OnScreenEnter(ctx, &domain.ScreenEvent{Screen: "prompt", Route: "/prompt/b"})
	hooks.OnScored(ctx, &domain.SubmitEvent{Slug: "a", Stars: 4, Duration: 2 * time.Second})
	hooks.OnScored(ctx, &domain.SubmitEvent{Slug: "b", IsError: true})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScreenVisits.WithLabelValues("prompt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("scored", "4")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("error", "")))
}

func TestMetricsHandler(t *testing.T) {
	m := observability.NewMetrics()
	m.ObserveRequest("/api/prompts", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `giveaibreak_http_requests_total{code="200",route="/api/prompts"} 1`)
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LoggingHooks(logger).Merge(observability.NewMetrics().Hooks())

	hooks.OnScored(context.Background(), &domain.SubmitEvent{Slug: "a", Stars: 3})
	hooks.OnScored(context.Background(), &domain.SubmitEvent{Slug: "b", IsError: true})

	out := buf.String()
	assert.Contains(t, out, "msg=scored slug=a stars=3")
	assert.Contains(t, out, `level=WARN msg="submit failed" slug=b`)
}
