package tracker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/bingo-tracker/internal/board"
	"github.com/DoyleJ11/bingo-tracker/internal/engine"
	"github.com/DoyleJ11/bingo-tracker/internal/hub"
	"github.com/DoyleJ11/bingo-tracker/internal/store"
)

var ErrInvalidCard = errors.New("invalid card")
var ErrHubStopped = errors.New("board hub stopped")

// InvalidCardError rejects a card that has validation errors or empty
// playable cells.
type InvalidCardError struct {
	Errors  []engine.ValidationError
	Missing []engine.Coord
}

func (e *InvalidCardError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("invalid card: %s", engine.Summarize(e.Errors))
	}
	return fmt.Sprintf("invalid card: %d cells missing", len(e.Missing))
}

func (e *InvalidCardError) Unwrap() error { return ErrInvalidCard }

// CardCheck is the result of validating a card without saving it.
type CardCheck struct {
	Errors      []engine.ValidationError `json:"errors"`
	Missing     []engine.Coord           `json:"missing"`
	Summary     engine.Summary           `json:"summary"`
	Submittable bool                     `json:"submittable"`
}

// Service ties the store to the engine and keeps each session's live board
// current after every change.
type Service struct {
	store store.Store
	hub   *hub.Hub
	log   *zap.Logger
	sort  engine.SortMode
}

func New(st store.Store, h *hub.Hub, log *zap.Logger, feedSort engine.SortMode) *Service {
	return &Service{store: st, hub: h, log: log, sort: feedSort}
}

func CheckCard(g engine.Grid, centerNumbered bool) CardCheck {
	errs := engine.Validate(g, centerNumbered)
	missing := engine.Missing(g, centerNumbered)
	if errs == nil {
		errs = []engine.ValidationError{}
	}
	if missing == nil {
		missing = []engine.Coord{}
	}
	return CardCheck{
		Errors:      errs,
		Missing:     missing,
		Summary:     engine.Summarize(errs),
		Submittable: len(errs) == 0 && len(missing) == 0,
	}
}

// checkSavable validates g against its own center cell.
func checkSavable(g engine.Grid) error {
	check := CheckCard(g, engine.CenterNumbered(g))
	if check.Submittable {
		return nil
	}
	return &InvalidCardError{Errors: check.Errors, Missing: check.Missing}
}

func (s *Service) CreateSession(ctx context.Context, name string) (store.Session, error) {
	return s.store.CreateSession(ctx, name)
}

func (s *Service) ListSessions(ctx context.Context) ([]store.Session, error) {
	return s.store.ListSessions(ctx)
}

func (s *Service) GetSession(ctx context.Context, id string) (store.Session, error) {
	return s.store.GetSession(ctx, id)
}

func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.hub.Send(hub.RemoveBoard{SessionID: id})
	return nil
}

func (s *Service) ListCards(ctx context.Context, sessionID string) ([]store.Card, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListCards(ctx, sessionID)
}

func (s *Service) AddCard(ctx context.Context, sessionID, name string, numbers engine.Grid) (store.Card, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return store.Card{}, err
	}
	if err := checkSavable(numbers); err != nil {
		return store.Card{}, err
	}

	id, err := s.store.SaveCard(ctx, store.CardInput{SessionID: sessionID, Name: name, Numbers: numbers})
	if err != nil {
		return store.Card{}, err
	}
	s.refresh(sessionID)
	return s.store.GetCard(ctx, id)
}

// UpdateCard replaces a card's numbers and, when name is non-nil, its name.
func (s *Service) UpdateCard(ctx context.Context, sessionID, cardID string, name *string, numbers engine.Grid) (store.Card, error) {
	if _, err := s.sessionCard(ctx, sessionID, cardID); err != nil {
		return store.Card{}, err
	}
	if err := checkSavable(numbers); err != nil {
		return store.Card{}, err
	}
	if err := s.store.UpdateCard(ctx, cardID, store.CardUpdate{Name: name, Numbers: numbers}); err != nil {
		return store.Card{}, err
	}
	s.refresh(sessionID)
	return s.store.GetCard(ctx, cardID)
}

func (s *Service) DeleteCard(ctx context.Context, sessionID, cardID string) error {
	if _, err := s.sessionCard(ctx, sessionID, cardID); err != nil {
		return err
	}
	if err := s.store.DeleteCard(ctx, cardID); err != nil {
		return err
	}
	s.refresh(sessionID)
	return nil
}

// sessionCard loads a card and hides cards that belong to other sessions.
func (s *Service) sessionCard(ctx context.Context, sessionID, cardID string) (store.Card, error) {
	c, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return store.Card{}, err
	}
	if c.SessionID != sessionID {
		return store.Card{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Service) ListDrawn(ctx context.Context, sessionID string) ([]store.DrawnNumber, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListDrawn(ctx, sessionID)
}

func (s *Service) DrawNumber(ctx context.Context, sessionID string, value int) (store.DrawnNumber, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return store.DrawnNumber{}, err
	}
	d, err := s.store.AddDrawn(ctx, sessionID, value)
	if err != nil {
		return store.DrawnNumber{}, err
	}
	s.refresh(sessionID)
	return d, nil
}

func (s *Service) RemoveNumber(ctx context.Context, sessionID string, value int) error {
	if err := s.store.RemoveDrawn(ctx, sessionID, value); err != nil {
		return err
	}
	s.refresh(sessionID)
	return nil
}

// UndoLast removes the most recently drawn number. ok is false when nothing
// had been drawn.
func (s *Service) UndoLast(ctx context.Context, sessionID string) (d store.DrawnNumber, ok bool, err error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return store.DrawnNumber{}, false, err
	}
	d, ok, err = s.store.UndoLastDrawn(ctx, sessionID)
	if err != nil || !ok {
		return d, ok, err
	}
	s.refresh(sessionID)
	return d, true, nil
}

func (s *Service) Pattern(ctx context.Context, sessionID string) (engine.PatternType, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return "", err
	}
	return s.store.GetPattern(ctx, sessionID)
}

func (s *Service) SetPattern(ctx context.Context, sessionID string, p engine.PatternType) error {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.store.SetPattern(ctx, sessionID, p); err != nil {
		return err
	}
	s.refresh(sessionID)
	return nil
}

// Board scores every card of the session against its pattern.
func (s *Service) Board(ctx context.Context, sessionID string, mode engine.SortMode) (engine.Board, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return engine.Board{}, err
	}
	in, err := s.load(ctx, sessionID)
	if err != nil {
		return engine.Board{}, err
	}
	return engine.Evaluate(in.Cards, in.Drawn, in.Pattern, mode), nil
}

// Feed returns the session's live board, starting it when needed.
func (s *Service) Feed(ctx context.Context, sessionID string) (*board.Board, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	b := s.hub.Ensure(sessionID, s.loader(sessionID))
	if b == nil {
		return nil, ErrHubStopped
	}
	return b, nil
}

func (s *Service) ParsePaste(text string, centerNumbered bool) (engine.PasteResult, error) {
	return engine.ParsePaste(text, centerNumbered)
}

// load reads cards, drawn numbers and pattern concurrently. Whatever could be
// read is returned even when err is set; missing parts stay empty.
func (s *Service) load(ctx context.Context, sessionID string) (board.Input, error) {
	in := board.Input{
		Cards:   []engine.Card{},
		Drawn:   []int{},
		Pattern: store.DefaultPattern,
		Sort:    s.sort,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cards, err := s.store.ListCards(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("list cards: %w", err)
		}
		in.Cards = store.EngineCards(cards)
		return nil
	})
	g.Go(func() error {
		drawn, err := s.store.ListDrawn(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("list drawn: %w", err)
		}
		in.Drawn = store.Values(drawn)
		return nil
	})
	g.Go(func() error {
		p, err := s.store.GetPattern(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("get pattern: %w", err)
		}
		in.Pattern = p
		return nil
	})
	err := g.Wait()
	return in, err
}

// loader is how a live board reads its session. Read failures are logged and
// the board gets whatever could be read.
func (s *Service) loader(sessionID string) board.Loader {
	return func(ctx context.Context) (board.Input, error) {
		in, err := s.load(ctx, sessionID)
		if err != nil {
			s.log.Warn("board input incomplete", zap.String("session", sessionID), zap.Error(err))
		}
		return in, err
	}
}

// refresh asks the session's board, if one is running, to reload. The write
// has already landed, so the reload sees it.
func (s *Service) refresh(sessionID string) {
	if b := s.hub.Get(sessionID); b != nil {
		b.Send(board.Refresh{})
	}
}
