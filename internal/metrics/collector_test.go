package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordHTTPRequest(t *testing.T) {
	c := NewCollector("eristic")

	c.RecordHTTPRequest("POST", "/api/debates", 201, 20*time.Millisecond)
	c.RecordHTTPRequest("POST", "/api/debates", 201, 30*time.Millisecond)
	c.RecordHTTPRequest("GET", "/api/debates", 500, time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(
		c.httpRequestsTotal.WithLabelValues("POST", "/api/debates", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.httpRequestsTotal.WithLabelValues("GET", "/api/debates", "5xx")))
}

func TestCollector_RecordLLMRequest(t *testing.T) {
	c := NewCollector("eristic")

	c.RecordLLMRequest("ollama", "llama2", "success", time.Second, 100, 40)
	c.RecordLLMRequest("ollama", "llama2", "success", time.Second, 50, 10)
	c.RecordLLMRequest("ollama", "llama2", "error", time.Second, 0, 0)

	assert.Equal(t, float64(2), testutil.ToFloat64(
		c.llmRequestsTotal.WithLabelValues("ollama", "llama2", "success")))
	assert.Equal(t, float64(150), testutil.ToFloat64(
		c.llmTokensUsed.WithLabelValues("ollama", "llama2", "prompt")))
	assert.Equal(t, float64(50), testutil.ToFloat64(
		c.llmTokensUsed.WithLabelValues("ollama", "llama2", "completion")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("eristic")
	c.RecordDebateEvent("created")
	c.RecordDebateTurn("generated")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `eristic_debates_total{event="created"} 1`))
	assert.True(t, strings.Contains(body, `eristic_debate_turns_total{outcome="generated"} 1`))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "3xx", statusClass(302))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(503))
	assert.Equal(t, "unknown", statusClass(42))
}
