package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alphapulse/internal/domain"
)

type fakeEngine struct {
	output   *domain.SystemOutput
	snapshot *domain.MacroSnapshot
	scanErr  error
	scans    int
}

func (f *fakeEngine) RunCycle(ctx context.Context) (domain.SystemOutput, error) {
	f.scans++
	if f.scanErr != nil {
		return domain.SystemOutput{}, f.scanErr
	}
	return *f.output, nil
}

func (f *fakeEngine) LatestOutput() (domain.SystemOutput, bool) {
	if f.output == nil {
		return domain.SystemOutput{}, false
	}
	return *f.output, true
}

func (f *fakeEngine) LatestSnapshot() (domain.MacroSnapshot, bool) {
	if f.snapshot == nil {
		return domain.MacroSnapshot{}, false
	}
	return *f.snapshot, true
}

func serve(t *testing.T, engine Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := ApiHandler{Log: zap.NewNop().Sugar(), Engine: engine}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	handler.buildRouter().ServeHTTP(w, req)
	return w
}

func sampleOutput() *domain.SystemOutput {
	return &domain.SystemOutput{
		RunID:      uuid.New(),
		Timestamp:  time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC),
		ValidUntil: time.Date(2026, 8, 1, 21, 30, 0, 0, time.UTC),
		Regime:     "RISK_ON",
		Scenario:   "GOLDILOCKS",
		Thesis:     "thesis",
	}
}

func TestGetOutput(t *testing.T) {
	t.Run("before any cycle", func(t *testing.T) {
		w := serve(t, &fakeEngine{}, http.MethodGet, "/output")
		require.Equal(t, 404, w.Code)
	})

	t.Run("after a cycle", func(t *testing.T) {
		engine := &fakeEngine{output: sampleOutput()}
		w := serve(t, engine, http.MethodGet, "/output")
		require.Equal(t, 200, w.Code)

		var got domain.SystemOutput
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Equal(t, engine.output.RunID, got.RunID)
		require.Equal(t, "RISK_ON", got.Regime)
	})
}

func TestGetMacroSnapshot(t *testing.T) {
	t.Run("before any cycle", func(t *testing.T) {
		w := serve(t, &fakeEngine{}, http.MethodGet, "/macro/snapshot")
		require.Equal(t, 404, w.Code)
	})

	t.Run("after a cycle", func(t *testing.T) {
		engine := &fakeEngine{snapshot: &domain.MacroSnapshot{
			Flat: map[string]float64{"vix": 14.2},
		}}
		w := serve(t, engine, http.MethodGet, "/macro/snapshot")
		require.Equal(t, 200, w.Code)

		var got domain.MacroSnapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Equal(t, 14.2, got.Flat["vix"])
	})
}

func TestScan(t *testing.T) {
	t.Run("runs a cycle", func(t *testing.T) {
		engine := &fakeEngine{output: sampleOutput()}
		w := serve(t, engine, http.MethodPost, "/scan")
		require.Equal(t, 200, w.Code)
		require.Equal(t, 1, engine.scans)
	})

	t.Run("cycle failure returns 500", func(t *testing.T) {
		engine := &fakeEngine{scanErr: fmt.Errorf("no market data available")}
		w := serve(t, engine, http.MethodPost, "/scan")
		require.Equal(t, 500, w.Code)
		require.Contains(t, w.Body.String(), "no market data available")
	})
}
