package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhanx03/go-commons/pkg/concurrent/collector"
	"github.com/huynhanx03/go-commons/pkg/settings"
)

type event struct {
	Name string `json:"name"`
}

type mockSink struct {
	mu      sync.Mutex
	items   []event
	failAt  int
	failErr error
}

func (m *mockSink) Enqueue(_ context.Context, item event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil && len(m.items) == m.failAt {
		return m.failErr
	}
	m.items = append(m.items, item)
	return nil
}

func serve(t *testing.T, h gin.HandlerFunc, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/events", h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name         string
		sink         *mockSink
		body         string
		wantStatus   int
		wantAccepted int
	}{
		{
			name:         "accepted",
			sink:         &mockSink{},
			body:         `{"items":[{"name":"a"},{"name":"b"}]}`,
			wantStatus:   http.StatusAccepted,
			wantAccepted: 2,
		},
		{
			name:       "empty_items",
			sink:       &mockSink{},
			body:       `{"items":[]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing_items",
			sink:       &mockSink{},
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed",
			sink:       &mockSink{},
			body:       `{"items":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:         "closed",
			sink:         &mockSink{failAt: 1, failErr: collector.ErrClosed},
			body:         `{"items":[{"name":"a"},{"name":"b"}]}`,
			wantStatus:   http.StatusServiceUnavailable,
			wantAccepted: 1,
		},
		{
			name:       "interrupted",
			sink:       &mockSink{failErr: &collector.InterruptedError{Op: "enqueue", Err: context.Canceled}},
			body:       `{"items":[{"name":"a"}]}`,
			wantStatus: http.StatusRequestTimeout,
		},
		{
			name:       "unknown_error",
			sink:       &mockSink{failErr: errors.New("boom")},
			body:       `{"items":[{"name":"a"}]}`,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := serve(t, Handler[event](tt.sink), tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAccepted, resp.Accepted)
			if tt.wantStatus != http.StatusAccepted {
				assert.NotEmpty(t, resp.Error)
			}
		})
	}
}

func TestHandler_WithCollector(t *testing.T) {
	var (
		mu      sync.Mutex
		batches [][]event
	)
	perf := collector.PerformerFunc[event](func(_ context.Context, batch []event) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, append([]event(nil), batch...))
		return nil
	})

	c, err := collector.New[event](perf, settings.Collector{MaxQueueSize: 10, MaxBatchSize: 5})
	require.NoError(t, err)

	h := Handler[event](c)

	w, resp := serve(t, h, `{"items":[{"name":"a"},{"name":"b"},{"name":"c"}]}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 3, resp.Accepted)

	ctx := context.Background()
	require.NoError(t, c.Close(ctx))

	w, _ = serve(t, h, `{"items":[{"name":"d"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	require.NoError(t, c.Run(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, [][]event{{{Name: "a"}, {Name: "b"}, {Name: "c"}}}, batches)
}
