package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/karim5623/hazcurve/internal/adapter/http"
	"github.com/karim5623/hazcurve/internal/calc"
	"github.com/karim5623/hazcurve/internal/eq"
	"github.com/karim5623/hazcurve/internal/geo"
	"github.com/karim5623/hazcurve/internal/gmm"
	"github.com/karim5623/hazcurve/internal/observability"
)

// testService wires a tiny single-source model behind the HTTP surface.
type testService struct {
	calculator *calc.Calculator
	err        error
}

func (s *testService) Curves(ctx context.Context, site calc.Site) (*calc.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.calculator.Curves(ctx, site)
}

type readyAlways struct{}

func (readyAlways) CheckReadiness(context.Context) error { return nil }

type readyNever struct{}

func (readyNever) CheckReadiness(context.Context) error { return errors.New("model not loaded") }

type fixedGmm struct{}

func (fixedGmm) Calc(gmm.Input) (float64, float64) { return math.Log(0.05), 0 }

func newTestService(t *testing.T) *testService {
	t.Helper()
	src, err := eq.NewGridSource("g", geo.NewLocation(34, -118),
		[]float64{6.5}, []float64{0.01}, 5, 0)
	require.NoError(t, err)

	gmmSet, err := eq.NewGmmSetBuilder().
		Near(map[gmm.Gmm]float64{"GMM_A": 1}).
		Build()
	require.NoError(t, err)

	set, err := eq.NewSourceSetBuilder(eq.GridType).
		Name("grids").Gmms(gmmSet).Add(src).Build()
	require.NoError(t, err)

	model, err := eq.NewHazardModelBuilder("test").
		Add(set).
		Gmms(gmm.Instances{"GMM_A": {gmm.PGA: fixedGmm{}}}).
		Build()
	require.NoError(t, err)

	cfg, err := calc.NewConfigBuilder().
		Curve(gmm.PGA, []float64{0.001, 0.01, 0.1, 1}).
		Build()
	require.NoError(t, err)

	calculator, err := calc.New(model, cfg, slog.Default(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	return &testService{calculator: calculator}
}

func TestServer_Health(t *testing.T) {
	srv := httpadapter.NewServer(":0", newTestService(t), readyAlways{}, slog.Default())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestServer_Readiness(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := httpadapter.NewServer(":0", newTestService(t), readyAlways{}, slog.Default())
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		srv := httpadapter.NewServer(":0", newTestService(t), readyNever{}, slog.Default())
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestServer_Metrics(t *testing.T) {
	srv := httpadapter.NewServer(":0", newTestService(t), readyAlways{}, slog.Default())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Hazard(t *testing.T) {
	srv := httpadapter.NewServer(":0", newTestService(t), readyAlways{}, slog.Default())

	body, err := json.Marshal(httpadapter.HazardRequest{
		Name: "Downtown", Lat: 34, Lon: -118,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hazard", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpadapter.HazardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Downtown", resp.Site)
	assert.NotEmpty(t, resp.ID)

	pga, ok := resp.Curves["PGA"]
	require.True(t, ok)
	require.Len(t, pga.Amplitudes, 4)
	require.Len(t, pga.Probabilities, 4)
	// The fixed gmm exceeds the two lowest levels only.
	assert.InDelta(t, 1-math.Exp(-0.01), pga.Probabilities[0], 1e-12)
	assert.Zero(t, pga.Probabilities[3])
}

func TestServer_Hazard_BadRequest(t *testing.T) {
	srv := httpadapter.NewServer(":0", newTestService(t), readyAlways{}, slog.Default())

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hazard",
			bytes.NewReader([]byte("{"))))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid site", func(t *testing.T) {
		body, _ := json.Marshal(httpadapter.HazardRequest{Name: "X", Lat: 999, Lon: 0})
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hazard",
			bytes.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Hazard_CalcError(t *testing.T) {
	svc := newTestService(t)
	svc.err = calc.ErrCanceled
	srv := httpadapter.NewServer(":0", svc, readyAlways{}, slog.Default())

	body, _ := json.Marshal(httpadapter.HazardRequest{Name: "X", Lat: 34, Lon: -118})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/hazard", bytes.NewReader(body)))
	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
}
