package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchkit/pkg/httpserver"
	"github.com/dmitrymomot/launchkit/pkg/logger"
)

func TestRunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- httpserver.Run(ctx, httpserver.Config{
			Addr:            "127.0.0.1:0",
			ShutdownTimeout: time.Second,
		}, http.NotFoundHandler(), logger.NewDiscard())
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunReportsListenFailure(t *testing.T) {
	t.Parallel()

	err := httpserver.Run(context.Background(), httpserver.Config{
		Addr:            "256.256.256.256:99999",
		ShutdownTimeout: time.Second,
	}, nil, logger.NewDiscard())
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpserver.ErrServerFailed))
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	t.Run("liveness without probes", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		httpserver.Healthcheck(logger.NewDiscard()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body, _ := io.ReadAll(rec.Body)
		assert.Equal(t, "ok", string(body))
	})

	t.Run("failing probe means unavailable", func(t *testing.T) {
		t.Parallel()
		failing := func(context.Context) error { return errors.New("db down") }

		rec := httptest.NewRecorder()
		httpserver.Healthcheck(logger.NewDiscard(), failing).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
