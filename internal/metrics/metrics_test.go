package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_IsolatedRegistry(t *testing.T) {
	// two registries must not collide on names
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotPanics(t, func() { NewMetrics(prometheus.NewRegistry()) })

	m.StoreCalls.WithLabelValues("list_positions", "ok").Inc()
	m.NetQuantity.WithLabelValues("BGIV25").Set(42)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `portfolio_net_quantity_contracts{contract="BGIV25"} 42`)
	assert.Contains(t, body, `portfolio_store_calls_total{op="list_positions",result="ok"} 1`)
}
