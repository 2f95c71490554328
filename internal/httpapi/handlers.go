package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/bingo-tracker/internal/engine"
	"github.com/DoyleJ11/bingo-tracker/internal/store"
	"github.com/DoyleJ11/bingo-tracker/internal/tracker"
	"github.com/DoyleJ11/bingo-tracker/pkg/types"
)

var errBadRequest = errors.New("bad request")

type handlers struct {
	svc         *tracker.Service
	log         *zap.Logger
	defaultSort engine.SortMode
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func listPatterns(w http.ResponseWriter, r *http.Request) {
	out := make([]types.PatternResponse, 0, len(engine.Patterns))
	for _, p := range engine.Patterns {
		out = append(out, types.PatternResponse{Pattern: p, Label: p.Label()})
	}
	writeJSON(w, http.StatusOK, out)
}

// patternCells previews the cells a named pattern or a drawn mask covers.
func patternCells(w http.ResponseWriter, r *http.Request) {
	var req types.CellsRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}
	if req.Mask != nil {
		writeJSON(w, http.StatusOK, types.CellsResponse{Cells: engine.MaskCells(*req.Mask, req.CenterNumbered)})
		return
	}
	p, err := engine.ParsePattern(req.Pattern)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, types.CellsResponse{Cells: engine.ResolveCells(p, req.CenterNumbered)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// writeError maps service errors onto status codes. Anything unrecognised is
// logged and reported as a generic failure.
func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *tracker.InvalidCardError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, types.ErrorResponse{Error: err.Error(), Errors: invalid.Errors})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrAlreadyDrawn):
		writeJSON(w, http.StatusConflict, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrOutOfRange), errors.Is(err, engine.ErrPasteCountMismatch):
		writeJSON(w, http.StatusUnprocessableEntity, types.ErrorResponse{Error: err.Error()})
	case errors.Is(err, errBadRequest),
		errors.Is(err, store.ErrEmptyName),
		errors.Is(err, engine.ErrUnknownPattern),
		errors.Is(err, engine.ErrUnknownSortMode),
		errors.Is(err, engine.ErrBadGridShape):
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	default:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "operation failed"})
	}
}

func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.svc.CreateSession(r.Context(), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *handlers) listSessions(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.ListSessions(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handlers) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.ListCards(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (h *handlers) addCard(w http.ResponseWriter, r *http.Request) {
	var req types.CardRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	g, err := engine.GridFromRows(req.Numbers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var name string
	if req.Name != nil {
		name = *req.Name
	}
	c, err := h.svc.AddCard(r.Context(), chi.URLParam(r, "id"), name, g)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *handlers) updateCard(w http.ResponseWriter, r *http.Request) {
	var req types.CardRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	g, err := engine.GridFromRows(req.Numbers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.UpdateCard(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "cardID"), req.Name, g)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handlers) deleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCard(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "cardID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) validateCard(w http.ResponseWriter, r *http.Request) {
	var req types.ValidateRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	g, err := engine.GridFromRows(req.Numbers)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tracker.CheckCard(g, req.CenterNumbered))
}

// pasteCard turns pasted text into a grid without saving anything. The
// layout picks the reader: flat token list (default), spreadsheet lines,
// or a single typed row merged into numbers.
func (h *handlers) pasteCard(w http.ResponseWriter, r *http.Request) {
	var req types.PasteRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	switch req.Layout {
	case "", types.LayoutFlat:
		res, err := h.svc.ParsePaste(req.Text, req.CenterNumbered)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)

	case types.LayoutGrid:
		g, ignored := engine.ParseGridPaste(req.Text, req.CenterNumbered)
		writeJSON(w, http.StatusOK, engine.PasteResult{
			Grid:    g,
			Invalid: ignored,
			Errors:  engine.Validate(g, req.CenterNumbered),
		})

	case types.LayoutRow:
		base := engine.NewEmptyGrid(req.CenterNumbered)
		if req.Numbers != nil {
			g, err := engine.GridFromRows(req.Numbers)
			if err != nil {
				h.writeError(w, r, err)
				return
			}
			base = g
		}
		if req.Row < 0 || req.Row >= engine.Size {
			h.writeError(w, r, fmt.Errorf("%w: row %d", errBadRequest, req.Row))
			return
		}
		g := engine.MapRowInput(base, req.Row, req.Text, req.CenterNumbered)
		writeJSON(w, http.StatusOK, engine.PasteResult{
			Grid:   g,
			Errors: engine.Validate(g, req.CenterNumbered),
		})

	default:
		h.writeError(w, r, fmt.Errorf("%w: layout %q", errBadRequest, req.Layout))
	}
}

func (h *handlers) listDrawn(w http.ResponseWriter, r *http.Request) {
	drawn, err := h.svc.ListDrawn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, drawn)
}

func (h *handlers) drawNumber(w http.ResponseWriter, r *http.Request) {
	var req types.DrawRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	d, err := h.svc.DrawNumber(r.Context(), chi.URLParam(r, "id"), req.Value)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *handlers) removeDrawn(w http.ResponseWriter, r *http.Request) {
	value, err := strconv.Atoi(chi.URLParam(r, "value"))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: value must be a number", errBadRequest))
		return
	}
	if err := h.svc.RemoveNumber(r.Context(), chi.URLParam(r, "id"), value); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) undoDrawn(w http.ResponseWriter, r *http.Request) {
	d, ok, err := h.svc.UndoLast(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.UndoResponse{Undone: ok, Value: d.Value})
}

func (h *handlers) getPattern(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Pattern(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.PatternResponse{Pattern: p, Label: p.Label()})
}

func (h *handlers) setPattern(w http.ResponseWriter, r *http.Request) {
	var req types.PatternRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := engine.ParsePattern(req.Pattern)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.SetPattern(r.Context(), chi.URLParam(r, "id"), p); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.PatternResponse{Pattern: p, Label: p.Label()})
}

func (h *handlers) getBoard(w http.ResponseWriter, r *http.Request) {
	mode := h.defaultSort
	if v := r.URL.Query().Get("sort"); v != "" {
		m, err := engine.ParseSortMode(v)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		mode = m
	}
	b, err := h.svc.Board(r.Context(), chi.URLParam(r, "id"), mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
