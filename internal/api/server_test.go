package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv := NewServer(nil, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestStatusz(t *testing.T) {
	t.Parallel()

	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := NewServer(func() Status {
		return Status{
			RunID:           "r1",
			Sources:         []string{"http://x"},
			PagesFetched:    10,
			RecordsAccepted: 90,
			RecordsRejected: 5,
			Books:           80,
			Authors:         40,
			ActiveWorkers:   2,
			StartedAt:       started,
		}
	}, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/statusz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "r1", got.RunID)
	assert.Equal(t, int64(10), got.PagesFetched)
	assert.Equal(t, int64(2), got.ActiveWorkers)
	assert.True(t, got.StartedAt.Equal(started))
}

func TestStatusz_NoActiveRun(t *testing.T) {
	t.Parallel()

	srv := NewServer(nil, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/statusz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
