package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DoyleJ11/bingo-tracker/internal/engine"
)

// Memory keeps everything in process. Slices preserve insertion order.
type Memory struct {
	mu       sync.RWMutex
	now      func() time.Time
	sessions []Session
	cards    []Card
	drawn    []DrawnNumber
	patterns map[string]engine.PatternType
}

func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		now:      now,
		patterns: make(map[string]engine.PatternType),
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) CreateSession(ctx context.Context, name string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Session{}, ErrEmptyName
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Session{ID: newID(), Name: name, CreatedAt: m.now().UTC()}
	m.sessions = append(m.sessions, s)
	return s, nil
}

func (m *Memory) ListSessions(ctx context.Context) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.sessions), nil
}

func (m *Memory) GetSession(ctx context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return Session{}, ErrNotFound
}

func (m *Memory) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.sessions)
	m.sessions = slices.DeleteFunc(m.sessions, func(s Session) bool { return s.ID == id })
	if len(m.sessions) == n {
		return ErrNotFound
	}
	m.cards = slices.DeleteFunc(m.cards, func(c Card) bool { return c.SessionID == id })
	m.drawn = slices.DeleteFunc(m.drawn, func(d DrawnNumber) bool { return d.SessionID == id })
	delete(m.patterns, id)
	return nil
}

func (m *Memory) SaveCard(ctx context.Context, in CardInput) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", ErrEmptyName
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := Card{
		ID:        newID(),
		SessionID: in.SessionID,
		Name:      name,
		Numbers:   in.Numbers,
		CreatedAt: m.now().UTC(),
	}
	m.cards = append(m.cards, c)
	return c.ID, nil
}

func (m *Memory) UpdateCard(ctx context.Context, id string, upd CardUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.cards, func(c Card) bool { return c.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return ErrEmptyName
		}
		m.cards[i].Name = name
	}
	m.cards[i].Numbers = upd.Numbers
	return nil
}

func (m *Memory) DeleteCard(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.cards)
	m.cards = slices.DeleteFunc(m.cards, func(c Card) bool { return c.ID == id })
	if len(m.cards) == n {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) GetCard(ctx context.Context, id string) (Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return Card{}, ErrNotFound
}

func (m *Memory) ListCards(ctx context.Context, sessionID string) ([]Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Card{}
	for _, c := range m.cards {
		if c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) AddDrawn(ctx context.Context, sessionID string, value int) (DrawnNumber, error) {
	if err := checkDrawnValue(value); err != nil {
		return DrawnNumber{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.drawn {
		if d.SessionID == sessionID && d.Value == value {
			return DrawnNumber{}, ErrAlreadyDrawn
		}
	}
	d := DrawnNumber{SessionID: sessionID, Value: value, CreatedAt: m.now().UTC()}
	m.drawn = append(m.drawn, d)
	return d, nil
}

func (m *Memory) ListDrawn(ctx context.Context, sessionID string) ([]DrawnNumber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []DrawnNumber{}
	for _, d := range m.drawn {
		if d.SessionID == sessionID {
			out = append(out, d)
		}
	}
	// stable: equal timestamps keep the order they were added in
	slices.SortStableFunc(out, func(a, b DrawnNumber) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (m *Memory) RemoveDrawn(ctx context.Context, sessionID string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.drawn)
	m.drawn = slices.DeleteFunc(m.drawn, func(d DrawnNumber) bool {
		return d.SessionID == sessionID && d.Value == value
	})
	if len(m.drawn) == n {
		return ErrNotFound
	}
	return nil
}

func (m *Memory) UndoLastDrawn(ctx context.Context, sessionID string) (DrawnNumber, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	last := -1
	for i, d := range m.drawn {
		if d.SessionID != sessionID {
			continue
		}
		if last < 0 || !d.CreatedAt.Before(m.drawn[last].CreatedAt) {
			last = i
		}
	}
	if last < 0 {
		return DrawnNumber{}, false, nil
	}
	d := m.drawn[last]
	m.drawn = slices.Delete(m.drawn, last, last+1)
	return d, true, nil
}

func (m *Memory) GetPattern(ctx context.Context, sessionID string) (engine.PatternType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.patterns[sessionID]; ok {
		return p, nil
	}
	return DefaultPattern, nil
}

func (m *Memory) SetPattern(ctx context.Context, sessionID string, p engine.PatternType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns[sessionID] = p
	return nil
}
