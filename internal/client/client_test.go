package client

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
	"traffic-signal-sim/internal/adapters/repositories"
	"traffic-signal-sim/internal/api"
	"traffic-signal-sim/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newFastClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(url, 5*time.Second)
	require.NoError(t, err)
	c.backoff = time.Millisecond
	return c
}

func TestClientRunExperimentsAgainstServer(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()
	require.NoError(t, repositories.InitSchema(db))

	srv := httptest.NewServer(api.NewRouter(repositories.NewSQLExperimentRepository(db, repositories.SQLite), nil, 2, time.Minute))
	defer srv.Close()

	c := newFastClient(t, srv.URL+"/")
	cfgs := []domain.SimulationConfig{
		{ArrivalMean: 10, ServiceMean: 5, Capacity: 1, Strategy: domain.StrategyFixed, Seed: 3},
		{ArrivalMean: 10, ServiceMean: 5, Capacity: 2, Strategy: domain.StrategyAdaptive, Seed: 3},
	}

	batchID, results, err := c.RunExperiments(context.Background(), cfgs)
	require.NoError(t, err)
	assert.NotEmpty(t, batchID)
	require.Len(t, results, 2)
	assert.Equal(t, domain.StrategyAdaptive, results[1].Strategy)
	assert.Equal(t, batchID, results[0].BatchID)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"batch_id":"b1","results":[]}`))
	}))
	defer srv.Close()

	batchID, _, err := newFastClient(t, srv.URL).RunExperiments(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "b1", batchID)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"bad"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, _, err := newFastClient(t, srv.URL).RunExperiments(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewRejectsEmptyURL(t *testing.T) {
	_, err := New("  ", time.Second)
	assert.Error(t, err)
}
