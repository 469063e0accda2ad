package allocator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Endpoints(t *testing.T) {
	testCases := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantBody string
	}{
		{name: "allocate", method: http.MethodPost, path: "/allocate", body: `{"job":"a"}`, wantCode: http.StatusOK, wantBody: `{"resource":"r1"}`},
		{name: "allocate without job", method: http.MethodPost, path: "/allocate", body: `{}`, wantCode: http.StatusBadRequest, wantBody: `{"error":"Job not specified"}`},
		{name: "allocate with bad json", method: http.MethodPost, path: "/allocate", body: `{`, wantCode: http.StatusBadRequest, wantBody: `{"error":"Invalid JSON body"}`},
		{name: "release unknown", method: http.MethodPost, path: "/release", body: `{"job":"ghost"}`, wantCode: http.StatusBadRequest, wantBody: `{"error":"No resource found for the specified job"}`},
		{name: "release without job", method: http.MethodPost, path: "/release", body: `{"job":""}`, wantCode: http.StatusBadRequest, wantBody: `{"error":"Job not specified"}`},
		{name: "status", method: http.MethodGet, path: "/status", wantCode: http.StatusOK, wantBody: `{"total":2,"used":0,"available":2}`},
		{name: "health", method: http.MethodGet, path: "/health", wantCode: http.StatusOK, wantBody: "OK"},
		{name: "unknown", method: http.MethodGet, path: "/nope", wantCode: http.StatusNotFound, wantBody: `{"error":"Endpoint not found"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			srv := NewServer(context.Background(), newTestRegistry(t, "r1", "r2"), nil)
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			// --- Act ---
			srv.ServeHTTP(rec, req)

			// --- Assert ---
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Equal(t, tc.wantBody, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestServer_ExhaustionAndRelease(t *testing.T) {
	srv := NewServer(context.Background(), newTestRegistry(t, "r1"), nil)
	do := func(path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
		return rec
	}

	assert.Equal(t, http.StatusOK, do("/allocate", `{"job":"a"}`).Code)

	busy := do("/allocate", `{"job":"b"}`)
	assert.Equal(t, http.StatusServiceUnavailable, busy.Code)
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(busy.Body.Bytes(), &e))
	assert.Equal(t, "No resources available", e.Error)

	released := do("/release", `{"job":"a"}`)
	assert.Equal(t, http.StatusOK, released.Code)
	assert.JSONEq(t, `{"status":"released"}`, released.Body.String())

	assert.Equal(t, http.StatusOK, do("/allocate", `{"job":"b"}`).Code)
}

func TestServer_Metrics(t *testing.T) {
	// --- Arrange ---
	srv := NewServer(context.Background(), newTestRegistry(t, "r1"), nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	for _, job := range []string{"a", "b"} {
		resp, err := http.Post(ts.URL+"/allocate", "application/json", strings.NewReader(`{"job":"`+job+`"}`))
		require.NoError(t, err)
		resp.Body.Close()
	}

	// --- Act ---
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// --- Assert ---
	text := string(body)
	assert.Contains(t, text, `wfplan_allocator_requests_total{op="allocate",result="ok"} 1`)
	assert.Contains(t, text, `wfplan_allocator_requests_total{op="allocate",result="unavailable"} 1`)
	assert.Contains(t, text, `wfplan_allocator_resources{state="used"} 1`)
	assert.Contains(t, text, `wfplan_allocator_persisted_generation 0`)
}

func TestClient(t *testing.T) {
	// --- Arrange ---
	srv := NewServer(context.Background(), newTestRegistry(t, "r1"), nil)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := NewClient(ts.URL, 5*time.Second)
	defer c.Close()
	ctx := context.Background()

	// --- Act & Assert ---
	id, err := c.Allocate(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "r1", id)

	_, err = c.Allocate(ctx, "b")
	assert.ErrorIs(t, err, ErrNoResources)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, Status{Total: 1, Used: 1, Available: 0}, st)

	require.NoError(t, c.Release(ctx, "a"))

	err = c.Release(ctx, "a")
	assert.ErrorContains(t, err, "No resource found for the specified job")
	assert.ErrorContains(t, err, "HTTP 400")
}
