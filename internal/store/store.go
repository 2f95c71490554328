package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/DoyleJ11/bingo-tracker/internal/engine"
)

var ErrNotFound = errors.New("not found")
var ErrAlreadyDrawn = errors.New("number already drawn")
var ErrOutOfRange = errors.New("number must be between 1 and 75")
var ErrEmptyName = errors.New("name is required")

// DefaultPattern is used for sessions that never picked one.
const DefaultPattern = engine.PatternFull

// newID returns a time-ordered UUID. Sorting by id breaks created_at ties
// in insert order.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Card struct {
	ID        string      `json:"id"`
	SessionID string      `json:"sessionId"`
	Name      string      `json:"name"`
	Numbers   engine.Grid `json:"numbers"`
	CreatedAt time.Time   `json:"createdAt"`
}

type CardInput struct {
	SessionID string
	Name      string
	Numbers   engine.Grid
}

type CardUpdate struct {
	Name    *string
	Numbers engine.Grid
}

type DrawnNumber struct {
	SessionID string    `json:"sessionId"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

type Sessions interface {
	CreateSession(ctx context.Context, name string) (Session, error)
	ListSessions(ctx context.Context) ([]Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	// DeleteSession also drops the session's cards, drawn numbers and pattern.
	DeleteSession(ctx context.Context, id string) error
}

type Cards interface {
	SaveCard(ctx context.Context, in CardInput) (string, error)
	UpdateCard(ctx context.Context, id string, upd CardUpdate) error
	DeleteCard(ctx context.Context, id string) error
	GetCard(ctx context.Context, id string) (Card, error)
	// ListCards returns a session's cards in the order they were saved.
	ListCards(ctx context.Context, sessionID string) ([]Card, error)
}

type DrawnNumbers interface {
	AddDrawn(ctx context.Context, sessionID string, value int) (DrawnNumber, error)
	// ListDrawn returns numbers oldest first.
	ListDrawn(ctx context.Context, sessionID string) ([]DrawnNumber, error)
	RemoveDrawn(ctx context.Context, sessionID string, value int) error
	// UndoLastDrawn removes the most recent number. ok is false when the
	// session had none.
	UndoLastDrawn(ctx context.Context, sessionID string) (n DrawnNumber, ok bool, err error)
}

// PatternStore keeps the pattern each session plays for.
type PatternStore interface {
	GetPattern(ctx context.Context, sessionID string) (engine.PatternType, error)
	SetPattern(ctx context.Context, sessionID string, p engine.PatternType) error
}

type Store interface {
	Sessions
	Cards
	DrawnNumbers
	PatternStore
	Close() error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Gorm)(nil)
)

func checkDrawnValue(v int) error {
	if v < engine.MinNumber || v > engine.MaxNumber {
		return ErrOutOfRange
	}
	return nil
}

// Values extracts the numbers from drawn records, keeping their order.
func Values(drawn []DrawnNumber) []int {
	out := make([]int, 0, len(drawn))
	for _, d := range drawn {
		out = append(out, d.Value)
	}
	return out
}

// EngineCards converts stored cards for engine.Evaluate.
func EngineCards(cards []Card) []engine.Card {
	out := make([]engine.Card, 0, len(cards))
	for _, c := range cards {
		out = append(out, engine.Card{ID: c.ID, Name: c.Name, Numbers: c.Numbers})
	}
	return out
}
