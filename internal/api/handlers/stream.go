package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"
	"traffic-signal-sim/internal/api/dto"
	"traffic-signal-sim/internal/domain"
	"traffic-signal-sim/internal/services"

	"github.com/gorilla/websocket"
)

const streamWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Stream upgrades to a websocket, reads one batch request and pushes each
// result as its run finishes, followed by a final done message.
func (h *ExperimentHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if !allowOnly(w, r, http.MethodGet) {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		log.Printf("stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := func(msg dto.StreamMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		return conn.WriteJSON(msg)
	}

	var req dto.RunExperimentsRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = send(dto.StreamMessage{Error: "invalid json body"})
		return
	}

	cfgs, err := decodeBatch(req)
	if err != nil {
		_ = send(dto.StreamMessage{Error: err.Error()})
		return
	}

	ctx, cancel := h.runContext(r.Context())
	defer cancel()
	// The request context survives the hijack, so a gone client is only
	// noticed by reading.
	ctx = cancelOnDisconnect(ctx, conn)

	var writeErr error
	batch, err := services.RunExperiments(ctx, services.RunExperimentsRequest{
		Configs: cfgs,
		Workers: h.Workers,
		OnResult: func(i int, res domain.ExperimentResult) {
			if writeErr != nil {
				return
			}
			out := dto.FromResult(res)
			writeErr = send(dto.StreamMessage{Index: i, Result: &out})
		},
	}, h.Repo, h.Cache)
	if err != nil {
		if errors.Is(context.Cause(ctx), errClientGone) {
			log.Printf("stream client disconnected: err=%v", err)
			return
		}
		_, msg := runFailure(err)
		_ = send(dto.StreamMessage{Error: msg})
		return
	}
	if writeErr != nil {
		log.Printf("stream write failed: batch=%s err=%v", batch.ID, writeErr)
		return
	}

	_ = send(dto.StreamMessage{Done: true, BatchID: batch.ID})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

var errClientGone = errors.New("stream client disconnected")

// cancelOnDisconnect returns a context cancelled with errClientGone once a
// read on conn fails, which is how a closed or dropped client shows up.
// The caller must not read from conn afterwards.
func cancelOnDisconnect(parent context.Context, conn *websocket.Conn) context.Context {
	ctx, cancel := context.WithCancelCause(parent)
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel(errClientGone)
				return
			}
		}
	}()
	return ctx
}
