package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"traffic-signal-sim/internal/domain"
	"traffic-signal-sim/internal/services"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelOnDisconnect(t *testing.T) {
	cancelled := make(chan error, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ctx := cancelOnDisconnect(context.Background(), conn)
		select {
		case <-ctx.Done():
			cancelled <- context.Cause(ctx)
		case <-time.After(5 * time.Second):
			cancelled <- nil
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	select {
	case cause := <-cancelled:
		assert.ErrorIs(t, cause, errClientGone)
	case <-time.After(10 * time.Second):
		t.Fatal("handler never finished")
	}
}

func TestRunFailure(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid config", fmt.Errorf("run: %w", &domain.ConfigError{Field: "capacity", Value: 9, Reason: "bad"}), http.StatusBadRequest},
		{"event budget", fmt.Errorf("run: %w", services.ErrEventBudget), http.StatusUnprocessableEntity},
		{"deadline", fmt.Errorf("run: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, msg := runFailure(tc.err)
			assert.Equal(t, tc.status, status)
			assert.NotEmpty(t, msg)
		})
	}
}
