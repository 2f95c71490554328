package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/bingo-tracker/internal/engine"
	"github.com/DoyleJ11/bingo-tracker/internal/hub"
	"github.com/DoyleJ11/bingo-tracker/internal/store"
	"github.com/DoyleJ11/bingo-tracker/internal/tracker"
	"github.com/DoyleJ11/bingo-tracker/internal/types"
)

func newFeedServer(t *testing.T) (*tracker.Service, *httptest.Server) {
	return newFeedServerWith(t, store.NewMemory())
}

func newFeedServerWith(t *testing.T, st store.Store) (*tracker.Service, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := zaptest.NewLogger(t)
	svc := tracker.New(st, hub.NewHub(ctx), log, engine.SortInsertion)

	r := chi.NewRouter()
	r.Get("/sessions/{id}/feed", Handler(svc, nil, log))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return svc, srv
}

func feedURL(srv *httptest.Server, sessionID string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + sessionID + "/feed"
}

func readMessage(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestFeed_StreamsSnapshots(t *testing.T) {
	svc, srv := newFeedServer(t)
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "night")
	require.NoError(t, err)

	var g engine.Grid
	for r := 0; r < engine.Size; r++ {
		for c := 0; c < engine.Size; c++ {
			g[r][c] = strconv.Itoa(c*15 + r + 1)
		}
	}
	_, err = svc.AddCard(ctx, sess.ID, "card", g)
	require.NoError(t, err)

	conn, _, err := websocket.Dial(ctx, feedURL(srv, sess.ID), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	first := readMessage(t, conn)
	assert.Equal(t, types.MsgStateSnapshot, first.Type)
	assert.Equal(t, 0, first.Version)
	require.NotNil(t, first.Board)
	require.Len(t, first.Board.Entries, 1)
	assert.Equal(t, 25, first.Board.Entries[0].Progress.Total)

	_, err = svc.DrawNumber(ctx, sess.ID, 1)
	require.NoError(t, err)

	next := readMessage(t, conn)
	assert.Equal(t, 1, next.Version)
	assert.Equal(t, []int{1}, next.Board.Drawn)
	assert.Equal(t, 1, next.Board.Entries[0].Progress.Matched)
}

func TestFeed_UnknownSession(t *testing.T) {
	_, srv := newFeedServer(t)

	_, resp, err := websocket.Dial(context.Background(), feedURL(srv, "missing"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFeed_ClosedWhenSessionDeleted(t *testing.T) {
	svc, srv := newFeedServer(t)
	ctx := context.Background()

	sess, _ := svc.CreateSession(ctx, "night")
	conn, _, err := websocket.Dial(ctx, feedURL(srv, sess.ID), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	_ = readMessage(t, conn)
	require.NoError(t, svc.DeleteSession(ctx, sess.ID))

	readCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_, _, err = conn.Read(readCtx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
}

// brokenDrawn fails every drawn-number read.
type brokenDrawn struct {
	*store.Memory
}

func (brokenDrawn) ListDrawn(context.Context, string) ([]store.DrawnNumber, error) {
	return nil, errors.New("storage unavailable")
}

func TestFeed_ErrorFrameWhenDataMissing(t *testing.T) {
	svc, srv := newFeedServerWith(t, brokenDrawn{store.NewMemory()})
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "night")
	require.NoError(t, err)

	conn, _, err := websocket.Dial(ctx, feedURL(srv, sess.ID), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	first := readMessage(t, conn)
	assert.Equal(t, types.MsgStateSnapshot, first.Type)
	require.NotNil(t, first.Board)
	assert.Empty(t, first.Board.Drawn)

	next := readMessage(t, conn)
	assert.Equal(t, types.MsgError, next.Type)
	assert.Equal(t, "board data incomplete", next.Error)
	assert.Nil(t, next.Board)
}
