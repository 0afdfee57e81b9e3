package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/engine"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/metrics"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/portfolio"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/repository"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := repository.NewSQLiteDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	svc := portfolio.NewService(db, engine.DefaultRegistry(), m, zerolog.Nop())
	s := New(Config{
		Log:            zerolog.Nop(),
		Service:        svc,
		Metrics:        m,
		Gatherer:       reg,
		DevMode:        true,
		InitialCapital: decimal.NewFromInt(100000),
	})
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body == "" {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRoutesRegistered(t *testing.T) {
	h := newTestServer(t)
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/metrics"},
		{http.MethodGet, "/api/contracts"},
		{http.MethodGet, "/api/positions"},
		{http.MethodGet, "/api/net-positions"},
		{http.MethodGet, "/api/options"},
		{http.MethodGet, "/api/options/payoff"},
		{http.MethodGet, "/api/transactions"},
		{http.MethodGet, "/api/analytics/rentability"},
	}
	for _, tc := range routes {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, "")
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestPositionLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/positions",
		`{"contract":"BGIV25","direction":"COMPRA","quantity":10,"entryPrice":"300"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decodeBody[types.Position](t, rec)
	assert.Equal(t, types.DirectionLong, p.Direction)
	assert.Equal(t, types.StatusOpen, p.Status)

	rec = do(t, h, http.MethodPut, "/api/positions/"+p.ID, `{"currentPrice":"305"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/net-positions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	net := decodeBody[struct {
		NetPositions []types.NetPosition `json:"netPositions"`
		Summary      types.NetSummary    `json:"summary"`
	}](t, rec)
	require.Len(t, net.NetPositions, 1)
	// 5 points * 10 * 330
	assert.True(t, net.NetPositions[0].UnrealizedPnL.Equal(decimal.NewFromInt(16500)))
	assert.Equal(t, 1, net.Summary.LongCount)

	rec = do(t, h, http.MethodGet, "/api/net-positions?mark=BGIV25:310", "")
	require.Equal(t, http.StatusOK, rec.Code)
	net = decodeBody[struct {
		NetPositions []types.NetPosition `json:"netPositions"`
		Summary      types.NetSummary    `json:"summary"`
	}](t, rec)
	assert.True(t, net.NetPositions[0].UnrealizedPnL.Equal(decimal.NewFromInt(33000)))

	rec = do(t, h, http.MethodGet, "/api/positions/"+p.ID+"/neutralized", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"neutralized":false`)

	rec = do(t, h, http.MethodPut, "/api/positions/"+p.ID+"/close", `{"exitPrice":"310","quantity":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	closed := decodeBody[types.Position](t, rec)
	assert.Equal(t, int64(4), closed.Quantity)
	assert.True(t, closed.RealizedPnL.Decimal.Equal(decimal.NewFromInt(13200)))

	rec = do(t, h, http.MethodPost, "/api/net-positions/BGIV25/close", `{"price":"312"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/net-positions/BGIV25/close", `{"price":"312"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/positions/"+p.ID, `{"quantity":3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	txs := decodeBody[struct {
		Transactions []types.Transaction `json:"transactions"`
	}](t, rec)
	assert.Len(t, txs.Transactions, 3)

	rec = do(t, h, http.MethodGet, "/api/analytics/rentability", "")
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeBody[engine.Report](t, rec)
	assert.Equal(t, 2, report.TotalTrades)
}

func TestErrorMapping(t *testing.T) {
	h := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"validation", http.MethodPost, "/api/positions", `{"contract":"BGIV25","direction":"LONG","quantity":0,"entryPrice":"1"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/positions", `{"contract":`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/positions", `{"contract":"BGIV25","bogus":1}`, http.StatusBadRequest},
		{"bad direction", http.MethodPost, "/api/positions", `{"contract":"BGIV25","direction":"UP","quantity":1,"entryPrice":"1"}`, http.StatusBadRequest},
		{"non positive price", http.MethodPost, "/api/positions", `{"contract":"BGIV25","direction":"LONG","quantity":1,"entryPrice":"0"}`, http.StatusBadRequest},
		{"unknown contract", http.MethodPost, "/api/positions", `{"contract":"XYZ25","direction":"LONG","quantity":1,"entryPrice":"1"}`, http.StatusUnprocessableEntity},
		{"missing position", http.MethodPut, "/api/positions/nope/close", `{"exitPrice":"300"}`, http.StatusNotFound},
		{"missing option", http.MethodDelete, "/api/options/nope", "", http.StatusNotFound},
		{"missing transaction", http.MethodDelete, "/api/transactions/nope", "", http.StatusNotFound},
		{"bad period", http.MethodGet, "/api/positions?period=2w", "", http.StatusBadRequest},
		{"bad mark", http.MethodGet, "/api/net-positions?mark=BGIV25", "", http.StatusBadRequest},
		{"bad range", http.MethodGet, "/api/options/payoff?min=400&max=300&step=5", "", http.StatusBadRequest},
		{"bad date", http.MethodGet, "/api/transactions?startDate=yesterday", "", http.StatusBadRequest},
		{"empty strategy", http.MethodPost, "/api/options/strategy", `{"legs":[]}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
			assert.True(t, strings.HasPrefix(rec.Body.String(), `{"error":`), rec.Body.String())
		})
	}
}

func TestOptionsAndPayoff(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/options/strategy", `{"legs":[
		{"contract":"BGIV25","optionType":"CALL","strike":"320","premium":"10","quantity":1,"isPurchased":true,"expirationDate":"2025-10-31T00:00:00Z"},
		{"contract":"BGIV25","optionType":"call","strike":"340","premium":"4","quantity":1,"expirationDate":"2025-10-31T00:00:00Z"}
	]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	strategy := decodeBody[struct {
		StrategyID string            `json:"strategyId"`
		Options    []types.OptionLeg `json:"options"`
	}](t, rec)
	require.Len(t, strategy.Options, 2)
	assert.NotEmpty(t, strategy.StrategyID)

	rec = do(t, h, http.MethodGet, "/api/options/payoff?min=300&max=360&step=10", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	a := decodeBody[types.PayoffAnalysis](t, rec)
	require.Len(t, a.Curve, 7)
	// net debit 6 * 330 below 320, spread width 20 less the debit above 340
	assert.True(t, a.MaxLoss.Equal(decimal.NewFromInt(-1980)))
	assert.True(t, a.MaxProfit.Equal(decimal.NewFromInt(4620)))

	rec = do(t, h, http.MethodPut, "/api/options/"+strategy.Options[1].ID, `{"status":"EXPIRADA"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/options?status=OPEN", "")
	require.Equal(t, http.StatusOK, rec.Code)
	open := decodeBody[struct {
		Options []types.OptionLeg `json:"options"`
	}](t, rec)
	assert.Len(t, open.Options, 1)
}

func TestCalculator(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/calculator/pnl",
		`{"contract":"BGIV25","direction":"LONG","quantity":10,"entryPrice":"330","currentPrice":"335.5"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	pnl := decodeBody[types.PnL](t, rec)
	assert.True(t, pnl.PnL.Equal(decimal.NewFromInt(18150)))
	assert.True(t, pnl.Exposure.Equal(decimal.NewFromInt(1089000)))
	assert.Equal(t, "1.6667", pnl.PnLPercentage.StringFixed(4))

	rec = do(t, h, http.MethodPost, "/api/calculator/target-price",
		`{"contract":"BGIV25","direction":"LONG","quantity":10,"entryPrice":"330","targetPnl":"18150"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	target := decodeBody[struct {
		TargetPrice decimal.Decimal `json:"targetPrice"`
	}](t, rec)
	assert.True(t, target.TargetPrice.Equal(decimal.RequireFromString("335.5")))
}

func TestCalculator_RejectsBadInput(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{
			name: "zero entry price",
			path: "/api/calculator/pnl",
			body: `{"contract":"BGIV25","direction":"LONG","quantity":10,"entryPrice":"0","currentPrice":"335.5"}`,
		},
		{
			name: "negative entry price",
			path: "/api/calculator/pnl",
			body: `{"contract":"BGIV25","direction":"LONG","quantity":10,"entryPrice":"-5","currentPrice":"335.5"}`,
		},
		{
			name: "negative current price",
			path: "/api/calculator/pnl",
			body: `{"contract":"BGIV25","direction":"SHORT","quantity":10,"entryPrice":"330","currentPrice":"-1"}`,
		},
		{
			name: "quantity above cap",
			path: "/api/calculator/pnl",
			body: `{"contract":"BGIV25","direction":"LONG","quantity":9223372036854775807,"entryPrice":"330","currentPrice":"335.5"}`,
		},
		{
			name: "target with zero entry price",
			path: "/api/calculator/target-price",
			body: `{"contract":"BGIV25","direction":"LONG","quantity":10,"entryPrice":"0","targetPnl":"18150"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodGet, "/api/contracts", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `portfolio_http_requests_total{method="GET",route="/api/contracts",status="200"} 1`)
}
