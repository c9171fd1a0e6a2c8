package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpAdapter "github.com/aretw0/gleaner/internal/adapters/http"
	"github.com/aretw0/gleaner/internal/logging"
	"github.com/aretw0/gleaner/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandler_Health(t *testing.T) {
	h := httpAdapter.NewHandler(prometheus.NewRegistry(), "v1.2.3", nil)

	rr := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])

	rr = get(t, h, "/info")
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "gleaner", resp["app"])
	assert.Equal(t, "v1.2.3", resp["version"])
}

func TestHandler_Routes(t *testing.T) {
	cp := &domain.Checkpoint{RunID: "r", Status: domain.StatusRunning}
	h := httpAdapter.NewHandler(prometheus.NewRegistry(), "dev", func() *domain.Checkpoint { return cp })

	for _, path := range httpAdapter.Routes {
		assert.Equal(t, http.StatusOK, get(t, h, path).Code, path)
	}
}

func TestHandler_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "gleaner_iterations_total", Help: "x"})
	reg.MustRegister(counter)
	counter.Add(4)

	rr := get(t, httpAdapter.NewHandler(reg, "dev", nil), "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "gleaner_iterations_total 4")
}

func TestHandler_Run(t *testing.T) {
	var current *domain.Checkpoint
	h := httpAdapter.NewHandler(prometheus.NewRegistry(), "dev", func() *domain.Checkpoint { return current })

	assert.Equal(t, http.StatusNotFound, get(t, h, "/run").Code)

	current = &domain.Checkpoint{RunID: "r1", Iteration: 2, Status: domain.StatusRunning,
		Constraints: []domain.Pair{{State: 1, Action: 0}}}
	rr := get(t, h, "/run")
	assert.Equal(t, http.StatusOK, rr.Code)

	var cp domain.Checkpoint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cp))
	assert.Equal(t, "r1", cp.RunID)
	assert.Equal(t, []domain.Pair{{State: 1, Action: 0}}, cp.Constraints)
}

func TestServeListener_Shutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- httpAdapter.ServeListener(ctx, ln, httpAdapter.NewHandler(prometheus.NewRegistry(), "dev", nil), logging.NewNop())
	}()

	url := fmt.Sprintf("http://%s/healthz", ln.Addr())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownWait):
		t.Fatal("server did not stop")
	}
}

const shutdownWait = 6 * time.Second
