package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/bingo-tracker/internal/engine"
)

// opener builds an empty store whose timestamps come from now.
type opener func(t *testing.T, now func() time.Time) Store

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fixedClock returns start and advances by step on every call.
func fixedClock(start time.Time, step time.Duration) func() time.Time {
	cur := start.Add(-step)
	return func() time.Time {
		cur = cur.Add(step)
		return cur
	}
}

func stepClock() func() time.Time { return fixedClock(t0, time.Second) }

// runStoreSuite checks the behaviour every Store has to share.
func runStoreSuite(t *testing.T, open opener) {
	t.Run("SessionLifecycle", func(t *testing.T) { testSessionLifecycle(t, open) })
	t.Run("DeleteSessionCascades", func(t *testing.T) { testDeleteSessionCascades(t, open) })
	t.Run("CardCRUD", func(t *testing.T) { testCardCRUD(t, open) })
	t.Run("AddDrawnRules", func(t *testing.T) { testAddDrawnRules(t, open) })
	t.Run("DrawnOrderAndUndo", func(t *testing.T) { testDrawnOrderAndUndo(t, open) })
	t.Run("UndoPrefersLaterInsertOnTie", func(t *testing.T) { testUndoPrefersLaterInsertOnTie(t, open) })
	t.Run("Pattern", func(t *testing.T) { testPattern(t, open) })
	t.Run("CardOrderOnTie", func(t *testing.T) { testCardOrderOnTie(t, open) })
}

func testSessionLifecycle(t *testing.T, open opener) {
	ctx := context.Background()
	m := open(t, stepClock())

	_, err := m.CreateSession(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyName)

	a, err := m.CreateSession(ctx, "  Friday night ")
	require.NoError(t, err)
	assert.Equal(t, "Friday night", a.Name)
	assert.NotEmpty(t, a.ID)

	b, err := m.CreateSession(ctx, "Saturday")
	require.NoError(t, err)

	all, err := m.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)

	got, err := m.GetSession(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, b.Name, got.Name)
	assert.True(t, b.CreatedAt.Equal(got.CreatedAt))

	_, err = m.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testDeleteSessionCascades(t *testing.T, open opener) {
	ctx := context.Background()
	m := open(t, stepClock())

	keep, _ := m.CreateSession(ctx, "keep")
	drop, _ := m.CreateSession(ctx, "drop")

	_, err := m.SaveCard(ctx, CardInput{SessionID: drop.ID, Name: "c1"})
	require.NoError(t, err)
	keepCard, err := m.SaveCard(ctx, CardInput{SessionID: keep.ID, Name: "c2"})
	require.NoError(t, err)
	_, err = m.AddDrawn(ctx, drop.ID, 10)
	require.NoError(t, err)
	_, err = m.AddDrawn(ctx, keep.ID, 10)
	require.NoError(t, err)
	require.NoError(t, m.SetPattern(ctx, drop.ID, engine.PatternX))

	require.NoError(t, m.DeleteSession(ctx, drop.ID))
	assert.ErrorIs(t, m.DeleteSession(ctx, drop.ID), ErrNotFound)

	cards, _ := m.ListCards(ctx, drop.ID)
	assert.Empty(t, cards)
	drawn, _ := m.ListDrawn(ctx, drop.ID)
	assert.Empty(t, drawn)
	p, _ := m.GetPattern(ctx, drop.ID)
	assert.Equal(t, DefaultPattern, p)

	cards, _ = m.ListCards(ctx, keep.ID)
	require.Len(t, cards, 1)
	assert.Equal(t, keepCard, cards[0].ID)
	drawn, _ = m.ListDrawn(ctx, keep.ID)
	assert.Len(t, drawn, 1)
}

func testCardCRUD(t *testing.T, open opener) {
	ctx := context.Background()
	m := open(t, stepClock())

	var g engine.Grid
	g[0][0] = "7"

	_, err := m.SaveCard(ctx, CardInput{SessionID: "s", Name: ""})
	assert.ErrorIs(t, err, ErrEmptyName)

	first, err := m.SaveCard(ctx, CardInput{SessionID: "s", Name: "first", Numbers: g})
	require.NoError(t, err)
	second, err := m.SaveCard(ctx, CardInput{SessionID: "s", Name: "second"})
	require.NoError(t, err)

	cards, err := m.ListCards(ctx, "s")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, []string{first, second}, []string{cards[0].ID, cards[1].ID})
	assert.Equal(t, "7", cards[0].Numbers[0][0])

	g[0][0] = "8"
	renamed := " renamed "
	require.NoError(t, m.UpdateCard(ctx, first, CardUpdate{Name: &renamed, Numbers: g}))
	c, err := m.GetCard(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "renamed", c.Name)
	assert.Equal(t, "8", c.Numbers[0][0])

	// nil name keeps the old one
	require.NoError(t, m.UpdateCard(ctx, first, CardUpdate{Numbers: g}))
	c, _ = m.GetCard(ctx, first)
	assert.Equal(t, "renamed", c.Name)

	blank := ""
	assert.ErrorIs(t, m.UpdateCard(ctx, first, CardUpdate{Name: &blank}), ErrEmptyName)
	assert.ErrorIs(t, m.UpdateCard(ctx, "missing", CardUpdate{}), ErrNotFound)

	require.NoError(t, m.DeleteCard(ctx, first))
	assert.ErrorIs(t, m.DeleteCard(ctx, first), ErrNotFound)
	_, err = m.GetCard(ctx, first)
	assert.ErrorIs(t, err, ErrNotFound)

	cards, _ = m.ListCards(ctx, "other")
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func testAddDrawnRules(t *testing.T, open opener) {
	ctx := context.Background()
	m := open(t, stepClock())

	for _, v := range []int{0, 76, -3} {
		_, err := m.AddDrawn(ctx, "s", v)
		assert.ErrorIs(t, err, ErrOutOfRange, "value %d", v)
	}

	d, err := m.AddDrawn(ctx, "s", 75)
	require.NoError(t, err)
	assert.Equal(t, 75, d.Value)

	_, err = m.AddDrawn(ctx, "s", 75)
	assert.ErrorIs(t, err, ErrAlreadyDrawn)

	// other sessions are independent
	_, err = m.AddDrawn(ctx, "t", 75)
	assert.NoError(t, err)
}

func testDrawnOrderAndUndo(t *testing.T, open opener) {
	ctx := context.Background()
	m := open(t, stepClock())

	for _, v := range []int{12, 3, 40} {
		_, err := m.AddDrawn(ctx, "s", v)
		require.NoError(t, err)
	}

	drawn, err := m.ListDrawn(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []int{12, 3, 40}, Values(drawn))

	last, ok, err := m.UndoLastDrawn(ctx, "s")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 40, last.Value)

	require.NoError(t, m.RemoveDrawn(ctx, "s", 12))
	assert.ErrorIs(t, m.RemoveDrawn(ctx, "s", 12), ErrNotFound)

	drawn, _ = m.ListDrawn(ctx, "s")
	assert.Equal(t, []int{3}, Values(drawn))

	_, _, _ = m.UndoLastDrawn(ctx, "s")
	_, ok, err = m.UndoLastDrawn(ctx, "s")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testUndoPrefersLaterInsertOnTie(t *testing.T, open opener) {
	ctx := context.Background()
	m := open(t, fixedClock(t0, 0))

	_, _ = m.AddDrawn(ctx, "s", 5)
	_, _ = m.AddDrawn(ctx, "s", 9)

	last, ok, err := m.UndoLastDrawn(ctx, "s")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9, last.Value)
}

func testPattern(t *testing.T, open opener) {
	ctx := context.Background()
	m := open(t, stepClock())

	p, err := m.GetPattern(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, engine.PatternFull, p)

	require.NoError(t, m.SetPattern(ctx, "s", engine.PatternCorners))
	p, _ = m.GetPattern(ctx, "s")
	assert.Equal(t, engine.PatternCorners, p)

	// second write replaces the first
	require.NoError(t, m.SetPattern(ctx, "s", engine.PatternX))
	p, _ = m.GetPattern(ctx, "s")
	assert.Equal(t, engine.PatternX, p)

	p, _ = m.GetPattern(ctx, "t")
	assert.Equal(t, DefaultPattern, p)
}

func testCardOrderOnTie(t *testing.T, open opener) {
	ctx := context.Background()
	m := open(t, fixedClock(t0, 0))

	var want []string
	for _, name := range []string{"a", "b", "c", "d"} {
		id, err := m.SaveCard(ctx, CardInput{SessionID: "s", Name: name})
		require.NoError(t, err)
		want = append(want, id)
	}

	cards, err := m.ListCards(ctx, "s")
	require.NoError(t, err)
	got := make([]string, 0, len(cards))
	for _, c := range cards {
		got = append(got, c.ID)
	}
	assert.Equal(t, want, got)
}
