package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/arbitrage-cli/internal/dataset"
	"github.com/sells-group/arbitrage-cli/internal/diligence"
	"github.com/sells-group/arbitrage-cli/internal/model"
	"github.com/sells-group/arbitrage-cli/internal/str"
	"github.com/sells-group/arbitrage-cli/internal/validation"
)

func newTestServer(t *testing.T, opts Options) http.Handler {
	t.Helper()
	markets, err := str.DefaultMarketTable()
	require.NoError(t, err)
	repo, err := dataset.Build(context.Background(), dataset.SouthBay(), dataset.BuildOptions{Markets: markets})
	require.NoError(t, err)
	if opts.DefaultProfile.CreditTier == "" {
		opts.DefaultProfile = model.DefaultProfile()
	}
	return New(repo, opts).Router()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, Options{})

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.InDelta(t, 16, body["opportunities"], 0)
}

func TestListOpportunities(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, Options{})

	tests := []struct {
		name  string
		query string
		count int
		first string
	}{
		{name: "all", query: "", count: 16, first: "es_848_penn"},
		{name: "city case-insensitive", query: "?city=el%20segundo", count: 7, first: "es_848_penn"},
		{name: "min score", query: "?minScore=6", count: 4, first: "es_848_penn"},
		{name: "city and min score", query: "?city=Hawthorne&minScore=6", count: 0},
		{name: "invalid min score ignored", query: "?minScore=abc", count: 16, first: "es_848_penn"},
		{name: "unknown city", query: "?city=Nowhere", count: 0},
		{name: "min score above every listing", query: "?minScore=11", count: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/opportunities"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)

			assert.True(t, strings.HasPrefix(rec.Body.String(), `{"opportunities":[`), rec.Body.String())

			got := decode[listResponse](t, rec).Opportunities
			require.NotNil(t, got)
			require.Len(t, got, tt.count)
			if tt.count > 0 {
				assert.Equal(t, tt.first, got[0].Opportunity.ID)
			}
		})
	}
}

func TestGetOpportunity(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, Options{})

	rec := do(t, h, http.MethodGet, "/api/opportunities/es_848_penn", "")
	require.Equal(t, http.StatusOK, rec.Code)
	l := decode[dataset.Listing](t, rec)
	assert.Equal(t, "El Segundo", l.Opportunity.City)
	assert.InDelta(t, 7.1232, l.ArbitrageScore, 1e-9)
	require.NotNil(t, l.STR)
	assert.Equal(t, model.RegimeHostile, l.STR.Regime)

	rec = do(t, h, http.MethodGet, "/api/opportunities/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	e := decode[errorResponse](t, rec)
	assert.Equal(t, http.StatusNotFound, e.Code)
	assert.Contains(t, e.Message, "nope")
}

func TestGetDiligence(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, Options{})

	rec := do(t, h, http.MethodGet, "/api/opportunities/es_848_penn/diligence", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[diligence.Packet](t, rec)
	assert.Equal(t, "es_848_penn", p.ID)
	assert.InDelta(t, 6.46, p.Yield.LongTerm.GrossYieldPct, 1e-9)
	assert.Len(t, p.RedevelopmentScenarios, 2)

	rec = do(t, h, http.MethodGet, "/api/opportunities/nope/diligence", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRankOpportunities(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, Options{})

	t.Run("empty body uses default profile", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/opportunities/rank", "")
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[[]dataset.Ranked](t, rec)
		require.Len(t, got, 16)
		assert.Equal(t, "es_848_penn", got[0].Opportunity.ID)
		assert.InDelta(t, 35.0658, got[0].ProfileScore, 1e-9)
	})

	t.Run("partial profile merges with default", func(t *testing.T) {
		body := `{"will_occupy":true,"current_rent":5000,"credit_tier":"A","strategy_preferences":["ADU","SB9","Teardown"]}`
		rec := do(t, h, http.MethodPost, "/api/opportunities/rank", body)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[[]dataset.Ranked](t, rec)
		assert.InDelta(t, 78.97694805, got[0].ProfileScore, 1e-9)
		assert.Len(t, got[0].Drivers, 3)
	})

	t.Run("default profile is not mutated", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/opportunities/rank", "")
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[[]dataset.Ranked](t, rec)
		assert.InDelta(t, 35.0658, got[0].ProfileScore, 1e-9)
	})

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid credit tier", body: `{"credit_tier":"Z"}`},
		{name: "unknown field", body: `{"credit_score":700}`},
		{name: "malformed json", body: `{"will_occupy":`},
		{name: "second object", body: `{"credit_tier":"A"} {"credit_tier":"B"}`},
		{name: "trailing garbage", body: `{"credit_tier":"A"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/opportunities/rank", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, http.StatusBadRequest, decode[errorResponse](t, rec).Code)
		})
	}
}

func TestGetValidation(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, Options{})

	rec := do(t, h, http.MethodGet, "/api/validation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	r := decode[validation.Report](t, rec)
	assert.True(t, r.Passed)
	assert.Len(t, r.Checks, 9)
	assert.Equal(t, 16, r.Properties)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, Options{RateLimitRPS: 0.001, RateLimitBurst: 1})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, Options{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/opportunities/rank", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()
	h := newTestServer(t, Options{})

	rec := do(t, h, http.MethodGet, "/api/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/opportunities/es_848_penn", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
