package config

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"GridVision/pkg/oracle"
	"GridVision/pkg/spatial"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	for in, want := range map[string]Provider{"": ProviderAuto, "OpenAI": ProviderOpenAI, " gemini ": ProviderGemini, "auto": ProviderAuto} {
		got, err := ParseProvider(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseProvider("claude")
	assert.Error(t, err)
}

func TestLoadPolicy(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := LoadPolicy()
		require.NoError(t, err)
		assert.Equal(t, spatial.DefaultPolicy(), p)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("DETECT_MAX_ITERATIONS", "2")
		t.Setenv("DETECT_CONVERGENCE_THRESHOLD", "0.5")
		t.Setenv("DETECT_GRID_ROWS", "3")
		t.Setenv("DETECT_CONCURRENCY", "4")

		p, err := LoadPolicy()
		require.NoError(t, err)
		assert.Equal(t, 2, p.MaxIterations)
		assert.Equal(t, 0.5, p.ConvergenceThreshold)
		assert.Equal(t, 3, p.Rows)
		assert.Equal(t, 4, p.Concurrency)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("DETECT_MIN_SIZE", "big")
		_, err := LoadPolicy()
		assert.Error(t, err)
	})

	t.Run("out of range", func(t *testing.T) {
		t.Setenv("DETECT_CONVERGENCE_THRESHOLD", "2")
		_, err := LoadPolicy()
		assert.ErrorIs(t, err, spatial.ErrInvalidPolicy)
	})
}

func TestNewVisionModel_MissingCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	for _, p := range []Provider{ProviderAuto, ProviderOpenAI, ProviderGemini} {
		_, _, err := NewVisionModel(context.Background(), p)
		assert.ErrorIs(t, err, ErrMissingCredentials, string(p))
	}
}

func TestNewVisionModel_AutoPrefersOpenAI(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "")

	model, closeFn, err := NewVisionModel(context.Background(), ProviderAuto)
	require.NoError(t, err)
	assert.NotNil(t, model)
	closeFn()
}

func TestDurationEnv(t *testing.T) {
	d, err := DurationEnv("GRIDVISION_TEST_DURATION", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	t.Setenv("GRIDVISION_TEST_DURATION", "3s")
	d, err = DurationEnv("GRIDVISION_TEST_DURATION", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, d)

	t.Setenv("GRIDVISION_TEST_DURATION", "soon")
	_, err = DurationEnv("GRIDVISION_TEST_DURATION", time.Minute)
	assert.Error(t, err)
}

func TestServer_HealthCheck(t *testing.T) {
	logger, _ := test.NewNullLogger()
	detector, err := spatial.New(oracle.Func(func(ctx context.Context, req oracle.Request) (oracle.Response, error) {
		return oracle.Empty(), nil
	}), logger)
	require.NoError(t, err)

	server, err := NewServer(
		WithFiber(NewFiber(logger)),
		WithLogger(logger),
		WithValidator(NewValidator()),
		WithMiddleware(),
		WithDetector(detector),
		WithUploadsDir(t.TempDir()),
		WithUtils(),
	)
	require.NoError(t, err)
	server.RegisterHandler()

	for _, path := range []string{"/", "/api/v1/health"} {
		resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Vision Detection API is running", body["message"])
	}
}

func TestServer_DetectRoutes(t *testing.T) {
	t.Setenv("API_TOKEN_SECRET", "")
	logger, _ := test.NewNullLogger()
	detector, err := spatial.New(oracle.Func(func(ctx context.Context, req oracle.Request) (oracle.Response, error) {
		return oracle.Empty(), nil
	}), logger)
	require.NoError(t, err)

	server, err := NewServer(
		WithFiber(NewFiber(logger)),
		WithLogger(logger),
		WithValidator(NewValidator()),
		WithMiddleware(),
		WithDetector(detector),
		WithUploadsDir(t.TempDir()),
		WithUtils(),
	)
	require.NoError(t, err)
	server.RegisterHandler()

	for _, path := range []string{"/api/v1/detect", "/api/detect"} {
		resp, err := server.App().Test(httptest.NewRequest(http.MethodPost, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/api/detect/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestNewServer_RequiresDetector(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := NewServer(WithFiber(NewFiber(logger)), WithLogger(logger), WithMiddleware())
	assert.Error(t, err)
}
