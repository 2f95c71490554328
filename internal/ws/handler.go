package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/bingo-tracker/internal/board"
	"github.com/DoyleJ11/bingo-tracker/internal/store"
	"github.com/DoyleJ11/bingo-tracker/internal/tracker"
	"github.com/DoyleJ11/bingo-tracker/internal/types"
)

const writeTimeout = 3 * time.Second

// errBoardIncomplete is what clients see when a reload failed. The cause is
// only logged server side.
const errBoardIncomplete = "board data incomplete"

// Handler streams a session's board to the client. The feed is one-way;
// any data frame from the client closes the connection.
func Handler(svc *tracker.Service, originPatterns []string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "id")

		b, err := svc.Feed(r.Context(), sessionID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("open feed", zap.String("session", sessionID), zap.Error(err))
			http.Error(w, "operation failed", http.StatusInternalServerError)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan board.Snapshot, 8)
		clientID := uuid.NewString()

		if !b.Send(board.Join{ClientID: clientID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "board closed")
			return
		}
		defer b.Send(board.Leave{ClientID: clientID})

		log.Debug("feed joined", zap.String("session", sessionID), zap.String("client", clientID))

		// CloseRead discards inbound frames; ctx ends when the peer goes away.
		ctx := conn.CloseRead(r.Context())
		for {
			select {
			case <-ctx.Done():
				return

			case snap, ok := <-out:
				if !ok {
					// dropped as a slow client, or the board stopped
					conn.Close(websocket.StatusGoingAway, "board closed")
					return
				}
				if err := write(ctx, conn, snap); err != nil {
					log.Debug("feed write", zap.String("client", clientID), zap.Error(err))
					return
				}
			}
		}
	}
}

// write sends the snapshot, followed by an Error frame when the board could
// not read all of the session's data.
func write(ctx context.Context, conn *websocket.Conn, snap board.Snapshot) error {
	err := writeMessage(ctx, conn, types.ServerMessage{Type: types.MsgStateSnapshot, Version: snap.Version, Board: &snap.Board})
	if err != nil || snap.Err == nil {
		return err
	}
	return writeMessage(ctx, conn, types.ServerMessage{Type: types.MsgError, Version: snap.Version, Error: errBoardIncomplete})
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
