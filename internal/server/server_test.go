package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/spotingest/internal/metrics"
	"github.com/desertthunder/spotingest/internal/shared"
)

type mockLoader struct {
	ok       bool
	calls    atomic.Int32
	canceled atomic.Bool
}

func (m *mockLoader) Load(ctx context.Context) bool {
	m.calls.Add(1)
	m.canceled.Store(ctx.Err() != nil)
	return m.ok
}

func newTestServer(t *testing.T, loader Loader) *httptest.Server {
	t.Helper()

	s, err := New(Options{Addr: "127.0.0.1:0", Loader: loader, Metrics: metrics.New()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(body)
}

func TestLoadHandler(t *testing.T) {
	t.Run("GET renders the button", func(t *testing.T) {
		loader := &mockLoader{ok: true}
		ts := newTestServer(t, loader)

		resp, err := http.Get(ts.URL + "/")
		if err != nil {
			t.Fatalf("GET / error = %v", err)
		}
		body := readBody(t, resp)

		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
		if !strings.Contains(body, "Load data") {
			t.Error("expected the Load data button")
		}
		if strings.Contains(body, SuccessMessage) || strings.Contains(body, FailureMessage) {
			t.Error("expected no status message before a run")
		}
		if loader.calls.Load() != 0 {
			t.Error("expected GET not to trigger a run")
		}
	})

	tests := []struct {
		name       string
		ok         bool
		wantStatus int
		wantMsg    string
	}{
		{"POST success", true, http.StatusOK, SuccessMessage},
		{"POST failure", false, http.StatusInternalServerError, FailureMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &mockLoader{ok: tt.ok}
			ts := newTestServer(t, loader)

			resp, err := http.Post(ts.URL+"/load", "application/x-www-form-urlencoded", nil)
			if err != nil {
				t.Fatalf("POST /load error = %v", err)
			}
			body := readBody(t, resp)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(body, tt.wantMsg) {
				t.Errorf("expected %q in body", tt.wantMsg)
			}
			if loader.calls.Load() != 1 {
				t.Errorf("expected 1 run, got %d", loader.calls.Load())
			}
			if loader.canceled.Load() {
				t.Error("expected the run context not to be cancelled")
			}
		})
	}

	t.Run("GET /load is not allowed", func(t *testing.T) {
		loader := &mockLoader{ok: true}
		ts := newTestServer(t, loader)

		resp, err := http.Get(ts.URL + "/load")
		if err != nil {
			t.Fatalf("GET /load error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", resp.StatusCode)
		}
		if loader.calls.Load() != 0 {
			t.Error("expected no run")
		}
	})
}

func TestServerRoutes(t *testing.T) {
	ts := newTestServer(t, &mockLoader{ok: true})

	t.Run("healthz", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatalf("GET /healthz error = %v", err)
		}
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
			t.Errorf("unexpected health response: %d %s", resp.StatusCode, body)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		if err != nil {
			t.Fatalf("GET /metrics error = %v", err)
		}
		body := readBody(t, resp)
		if resp.StatusCode != http.StatusOK || !strings.Contains(body, "go_goroutines") {
			t.Errorf("unexpected metrics response: %d", resp.StatusCode)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/nope")
		if err != nil {
			t.Fatalf("GET /nope error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})
}

type panicLoader struct{}

func (panicLoader) Load(context.Context) bool { panic("boom") }

func TestRecoverer(t *testing.T) {
	ts := newTestServer(t, panicLoader{})

	resp, err := http.Post(ts.URL+"/load", "", nil)
	if err != nil {
		t.Fatalf("POST /load error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestNew(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument, got %v", err)
	}
}

func TestRun(t *testing.T) {
	s, err := New(Options{Addr: "127.0.0.1:0", Loader: &mockLoader{ok: true}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}
