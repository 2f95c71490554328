package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/bingo-tracker/internal/engine"
	"github.com/DoyleJ11/bingo-tracker/internal/hub"
	"github.com/DoyleJ11/bingo-tracker/internal/store"
	"github.com/DoyleJ11/bingo-tracker/internal/tracker"
	"github.com/DoyleJ11/bingo-tracker/pkg/types"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := zaptest.NewLogger(t)
	svc := tracker.New(store.NewMemory(), hub.NewHub(ctx), log, engine.SortInsertion)
	srv := httptest.NewServer(SetupRoutes(svc, Options{DefaultSort: engine.SortInsertion}, log))
	t.Cleanup(srv.Close)
	return srv
}

// call sends body as JSON and decodes the reply into out when out is non-nil.
func call(t *testing.T, srv *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func cardRows(centerNumbered bool) [][]string {
	rows := make([][]string, engine.Size)
	for r := range rows {
		rows[r] = make([]string, engine.Size)
		for c := range rows[r] {
			rows[r][c] = strconv.Itoa(c*15 + r + 1)
		}
	}
	if !centerNumbered {
		rows[engine.Center][engine.Center] = engine.FreeMarker
	}
	return rows
}

func createSession(t *testing.T, srv *httptest.Server) store.Session {
	t.Helper()
	var s store.Session
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, "/sessions", types.CreateSessionRequest{Name: "night"}, &s))
	return s
}

func ptr(s string) *string { return &s }

func TestHealthz(t *testing.T) {
	srv := newServer(t)
	assert.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/healthz", nil, nil))
}

func TestPatterns(t *testing.T) {
	srv := newServer(t)
	var out []types.PatternResponse
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/patterns", nil, &out))
	require.Len(t, out, len(engine.Patterns))
	assert.Equal(t, types.PatternResponse{Pattern: engine.PatternFull, Label: "Full card"}, out[0])
}

func TestPatternCells(t *testing.T) {
	srv := newServer(t)

	var out types.CellsResponse
	req := types.CellsRequest{Pattern: "corners"}
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/patterns/cells", req, &out))
	assert.Equal(t, []engine.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 4}, {Row: 4, Col: 0}, {Row: 4, Col: 4}}, out.Cells.Coords())

	var mask [engine.Size][engine.Size]bool
	mask[0][1] = true
	mask[engine.Center][engine.Center] = true

	out = types.CellsResponse{}
	req = types.CellsRequest{Pattern: "full", Mask: &mask}
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/patterns/cells", req, &out))
	assert.Equal(t, []engine.Coord{{Row: 0, Col: 1}}, out.Cells.Coords(), "blocked center is dropped and the mask wins")

	out = types.CellsResponse{}
	req.CenterNumbered = true
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/patterns/cells", req, &out))
	assert.Equal(t, 2, out.Cells.Len())

	var errResp types.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPost, "/patterns/cells", types.CellsRequest{Pattern: "zigzag"}, &errResp))
	assert.NotEmpty(t, errResp.Error)
}

func TestSessions(t *testing.T) {
	srv := newServer(t)

	var errResp types.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPost, "/sessions", types.CreateSessionRequest{Name: " "}, &errResp))
	assert.Equal(t, store.ErrEmptyName.Error(), errResp.Error)

	s := createSession(t, srv)

	var all []store.Session
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/sessions", nil, &all))
	require.Len(t, all, 1)
	assert.Equal(t, s.ID, all[0].ID)

	var got store.Session
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/sessions/"+s.ID, nil, &got))
	assert.Equal(t, "night", got.Name)

	assert.Equal(t, http.StatusNoContent, call(t, srv, http.MethodDelete, "/sessions/"+s.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodGet, "/sessions/"+s.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodDelete, "/sessions/"+s.ID, nil, nil))
}

func TestCards(t *testing.T) {
	srv := newServer(t)
	s := createSession(t, srv)
	base := "/sessions/" + s.ID + "/cards"

	var card store.Card
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, base,
		types.CardRequest{Name: ptr("lucky"), Numbers: cardRows(false)}, &card))
	assert.Equal(t, "lucky", card.Name)
	assert.Equal(t, engine.FreeMarker, card.Numbers[2][2])

	bad := cardRows(true)
	bad[0][0] = "16"
	var errResp types.ErrorResponse
	require.Equal(t, http.StatusUnprocessableEntity, call(t, srv, http.MethodPost, base,
		types.CardRequest{Name: ptr("bad"), Numbers: bad}, &errResp))
	assert.NotEmpty(t, errResp.Errors)
	assert.Equal(t, engine.KindRange, errResp.Errors[0].Kind)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPost, base,
		types.CardRequest{Name: ptr("short"), Numbers: [][]string{{"1"}}}, nil))

	var updated store.Card
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPut, base+"/"+card.ID,
		types.CardRequest{Numbers: cardRows(true)}, &updated))
	assert.Equal(t, "lucky", updated.Name)
	assert.Equal(t, "33", updated.Numbers[2][2])

	var cards []store.Card
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, base, nil, &cards))
	assert.Len(t, cards, 1)

	assert.Equal(t, http.StatusNoContent, call(t, srv, http.MethodDelete, base+"/"+card.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodDelete, base+"/"+card.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodGet, "/sessions/missing/cards", nil, nil))
}

func TestValidateCard(t *testing.T) {
	srv := newServer(t)
	s := createSession(t, srv)

	rows := cardRows(true)
	rows[1][1] = "abc"
	rows[4][4] = ""

	var check tracker.CardCheck
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, "/sessions/"+s.ID+"/cards/validate",
		types.ValidateRequest{Numbers: rows, CenterNumbered: true}, &check))
	assert.False(t, check.Submittable)
	assert.Equal(t, 1, check.Summary.Format)
	assert.Equal(t, []engine.Coord{{Row: 4, Col: 4}}, check.Missing)
}

func TestPasteCard(t *testing.T) {
	srv := newServer(t)
	s := createSession(t, srv)
	path := "/sessions/" + s.ID + "/cards/paste"

	var flat []string
	for _, row := range cardRows(true) {
		flat = append(flat, row...)
	}

	var res engine.PasteResult
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, path,
		types.PasteRequest{Text: strings.Join(flat, " "), CenterNumbered: true}, &res))
	assert.Equal(t, "33", res.Grid[2][2])
	assert.Empty(t, res.Errors)

	var errResp types.ErrorResponse
	require.Equal(t, http.StatusUnprocessableEntity, call(t, srv, http.MethodPost, path,
		types.PasteRequest{Text: "1 2 3", CenterNumbered: true}, &errResp))
	assert.Equal(t, "need 25 values, got 3", errResp.Error)

	res = engine.PasteResult{}
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, path,
		types.PasteRequest{Text: "1 16 31 46 61\n2 17 32 47 62", Layout: types.LayoutGrid, CenterNumbered: true}, &res))
	assert.Equal(t, "62", res.Grid[1][4])
	assert.Equal(t, "", res.Grid[2][0])

	res = engine.PasteResult{}
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, path,
		types.PasteRequest{Text: "3 18 48 63", Layout: types.LayoutRow, Row: 2}, &res))
	assert.Equal(t, [engine.Size]string{"3", "18", engine.FreeMarker, "48", "63"}, res.Grid[2])

	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPost, path,
		types.PasteRequest{Text: "1", Layout: "diagonal"}, nil))
}

func TestDrawnNumbers(t *testing.T) {
	srv := newServer(t)
	s := createSession(t, srv)
	base := "/sessions/" + s.ID + "/drawn"

	assert.Equal(t, http.StatusUnprocessableEntity, call(t, srv, http.MethodPost, base, types.DrawRequest{Value: 0}, nil))

	for _, v := range []int{5, 22, 75} {
		require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, base, types.DrawRequest{Value: v}, nil))
	}
	var errResp types.ErrorResponse
	require.Equal(t, http.StatusConflict, call(t, srv, http.MethodPost, base, types.DrawRequest{Value: 22}, &errResp))
	assert.Equal(t, "number already drawn", errResp.Error)

	var undo types.UndoResponse
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, base+"/undo", nil, &undo))
	assert.Equal(t, types.UndoResponse{Undone: true, Value: 75}, undo)

	assert.Equal(t, http.StatusNoContent, call(t, srv, http.MethodDelete, base+"/5", nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodDelete, base+"/5", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodDelete, base+"/five", nil, nil))

	var drawn []store.DrawnNumber
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, base, nil, &drawn))
	assert.Equal(t, []int{22}, store.Values(drawn))

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, base+"/undo", nil, nil))
	undo = types.UndoResponse{}
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPost, base+"/undo", nil, &undo))
	assert.False(t, undo.Undone)
}

func TestPatternAndBoard(t *testing.T) {
	srv := newServer(t)
	s := createSession(t, srv)
	base := "/sessions/" + s.ID

	var p types.PatternResponse
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, base+"/pattern", nil, &p))
	assert.Equal(t, engine.PatternFull, p.Pattern)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodPut, base+"/pattern", types.PatternRequest{Pattern: "zigzag"}, nil))
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodPut, base+"/pattern", types.PatternRequest{Pattern: "Corners"}, &p))
	assert.Equal(t, types.PatternResponse{Pattern: engine.PatternCorners, Label: "Four corners"}, p)

	var first, second store.Card
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, base+"/cards",
		types.CardRequest{Name: ptr("first"), Numbers: cardRows(true)}, &first))
	rows := cardRows(true)
	rows[0][0], rows[1][0] = "2", "1"
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, base+"/cards",
		types.CardRequest{Name: ptr("second"), Numbers: rows}, &second))

	// corners of "second": 2, 61, 5, 65
	for _, v := range []int{2, 61, 5} {
		require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, base+"/drawn", types.DrawRequest{Value: v}, nil))
	}

	var b engine.Board
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, base+"/board?sort=progress", nil, &b))
	require.Len(t, b.Entries, 2)
	assert.Equal(t, second.ID, b.Entries[0].Card.ID)
	assert.InDelta(t, 0.75, b.Entries[0].Progress.Percent, 1e-9)
	assert.True(t, b.Entries[0].Leader)
	assert.Empty(t, b.Winners)

	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, base+"/drawn", types.DrawRequest{Value: 65}, nil))
	b = engine.Board{}
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, base+"/board", nil, &b))
	assert.Equal(t, engine.SortInsertion, b.Sort)
	assert.Equal(t, first.ID, b.Entries[0].Card.ID)
	assert.Equal(t, []string{second.ID}, b.Winners)

	assert.Equal(t, http.StatusBadRequest, call(t, srv, http.MethodGet, base+"/board?sort=random", nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, srv, http.MethodGet, "/sessions/missing/board", nil, nil))
}
