package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driving"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockReconciler records run requests.
type mockReconciler struct {
	runErr   error
	requests []domain.RunRequest
	status   *driving.RunStatus
}

func (m *mockReconciler) Run(_ context.Context, req domain.RunRequest) (*domain.RunResult, error) {
	m.requests = append(m.requests, req)
	if m.runErr != nil {
		return nil, m.runErr
	}
	return &domain.RunResult{ID: "run-1", Mode: req.Mode, State: domain.RunStateDone}, nil
}

func (m *mockReconciler) Status(context.Context) (*driving.RunStatus, error) {
	if m.status == nil {
		return nil, errors.New("status unavailable")
	}
	return m.status, nil
}

// mockHistory serves a fixed run list.
type mockHistory struct {
	runs []domain.RunResult
}

func (m *mockHistory) Recent(_ context.Context, limit int) ([]domain.RunResult, error) {
	if limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *mockHistory) Get(_ context.Context, id string) (*domain.RunResult, error) {
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func do(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestTriggers_Success(t *testing.T) {
	tests := []struct {
		method string
		path   string
		mode   domain.RunMode
	}{
		{http.MethodGet, "/api/sync_ftp_csv_products", domain.RunModeSync},
		{http.MethodPost, "/api/sync_ftp_csv_products", domain.RunModeSync},
		{http.MethodGet, "/api/sync_ftp_csv_Products", domain.RunModeSync},
		{http.MethodGet, "/api/remove_other_locations_quantity", domain.RunModeZeroOut},
		{http.MethodPost, "/api/remove_other_locations_quantity", domain.RunModeZeroOut},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := &mockReconciler{}
			s := NewServer(rec)

			resp, body := do(t, s, tt.method, tt.path)

			assert.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, true, body["success"])
			require.Len(t, rec.requests, 1)
			assert.Equal(t, tt.mode, rec.requests[0].Mode)
			assert.Equal(t, domain.FeedSourceFTP, rec.requests[0].Source)
		})
	}
}

func TestTriggers_Failure(t *testing.T) {
	rec := &mockReconciler{runErr: &domain.TransferError{Op: "login", Err: errors.New("530 login incorrect")}}
	s := NewServer(rec)

	resp, body := do(t, s, http.MethodGet, "/api/sync_ftp_csv_products")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Loader error from sync_ftp_csv_Products", body["message"])
	assert.Contains(t, body["error"], "530 login incorrect")
	assert.NotContains(t, body, "success")

	resp, body = do(t, s, http.MethodPost, "/api/remove_other_locations_quantity")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, "Loader error from remove_other_locations_quantity", body["message"])
}

func TestTriggers_RunInProgress(t *testing.T) {
	s := NewServer(&mockReconciler{runErr: domain.ErrRunInProgress})

	resp, body := do(t, s, http.MethodGet, "/api/sync_ftp_csv_products")

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, domain.ErrRunInProgress.Error(), body["error"])
}

func TestStatus(t *testing.T) {
	s := NewServer(&mockReconciler{status: &driving.RunStatus{
		Running:          true,
		RunID:            "run-7",
		Mode:             domain.RunModeSync,
		State:            domain.RunStateStreaming,
		Shop:             "a.myshopify.com",
		RecordsProcessed: 1200,
	}})

	resp, body := do(t, s, http.MethodGet, "/api/status")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, true, body["running"])
	assert.Equal(t, "streaming", body["state"])
	assert.EqualValues(t, 1200, body["records_processed"])

	resp, _ = do(t, NewServer(&mockReconciler{}), http.MethodGet, "/api/status")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("stocksync_runs_total 1\n"))
	})
	s := NewServer(&mockReconciler{}, WithMetrics(metrics))

	resp, body := do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", body["status"])

	resp, _ = do(t, s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "stocksync_runs_total")

	resp, _ = do(t, NewServer(&mockReconciler{}), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRuns(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	history := &mockHistory{runs: []domain.RunResult{
		{ID: "r2", Mode: domain.RunModeSync, State: domain.RunStateDone, StartedAt: started},
		{ID: "r1", Mode: domain.RunModeZeroOut, State: domain.RunStateFailed, StartedAt: started, Error: "boom"},
	}}
	s := NewServer(&mockReconciler{}, WithHistory(history))

	resp, body := do(t, s, http.MethodGet, "/api/runs?limit=1")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, body["count"])

	resp, body = do(t, s, http.MethodGet, "/api/runs/r1")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "boom", body["error"])

	resp, _ = do(t, s, http.MethodGet, "/api/runs/nope")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp, _ = do(t, s, http.MethodGet, "/api/runs?limit=zero")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestServer_RunShutsDownOnCancel(t *testing.T) {
	s := NewServer(&mockReconciler{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
