package board

import (
	"context"

	"github.com/DoyleJ11/bingo-tracker/internal/engine"
)

type Msg interface{ isBoardMsg() }

// Input is everything a board is derived from. It is always replaced whole.
type Input struct {
	Cards   []engine.Card
	Drawn   []int
	Pattern engine.PatternType
	Sort    engine.SortMode
}

// Loader reads the current input for a board. On error it still returns
// whatever could be read.
type Loader func(ctx context.Context) (Input, error)

// Refresh makes the board reload its input. Reloads run on the loop, so the
// last one always reflects the latest writes.
type Refresh struct{}

func (Refresh) isBoardMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isBoardMsg() {}

type Leave struct{ ClientID string }

func (Leave) isBoardMsg() {}

type Shutdown struct{}

func (Shutdown) isBoardMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isBoardMsg() {}

type Snapshot struct {
	Version int
	Board   engine.Board
	Err     error // set when the last reload could not read everything
}

type View struct {
	Version    int
	NumClients int
	Board      engine.Board
}

// Board owns the live view of one session. All state lives in the loop
// goroutine; callers talk to it through Send.
type Board struct {
	inbox   chan Msg
	load    Loader
	board   engine.Board
	loadErr error
	loaded  bool
	version int
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewBoard starts a board and queues its first load ahead of any other
// message.
func NewBoard(parent context.Context, load Loader) *Board {
	ctx, cancel := context.WithCancel(parent)

	b := &Board{
		inbox:   make(chan Msg, 64),
		load:    load,
		board:   evaluate(Input{}),
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
	}
	b.inbox <- Refresh{}

	go b.loop()
	return b
}

func evaluate(in Input) engine.Board {
	return engine.Evaluate(in.Cards, in.Drawn, in.Pattern, in.Sort)
}

func (b *Board) loop() {
	for {
		select {
		case <-b.ctx.Done():
			b.shutdown()
			return

		case m := <-b.inbox:
			switch msg := m.(type) {
			case Join:
				b.clients[msg.ClientID] = msg.Outbox
				b.send(msg.ClientID, msg.Outbox, b.snapshot())

			case Leave:
				if ch, ok := b.clients[msg.ClientID]; ok {
					close(ch)
					delete(b.clients, msg.ClientID)
				}

			case Refresh:
				b.reload()

			case GetState:
				msg.Reply <- View{
					Version:    b.version,
					NumClients: len(b.clients),
					Board:      b.board,
				}

			case Shutdown:
				b.shutdown()
				return
			}
		}
	}
}

// reload reads fresh input and publishes it. The first load is version 0.
func (b *Board) reload() {
	in, err := b.load(b.ctx)
	b.board = evaluate(in)
	b.loadErr = err
	if b.loaded {
		b.version++
	}
	b.loaded = true
	b.broadcast(b.snapshot())
}

func (b *Board) snapshot() Snapshot {
	return Snapshot{Version: b.version, Board: b.board, Err: b.loadErr}
}

func (b *Board) shutdown() {
	for id, ch := range b.clients {
		close(ch) // no more snapshots
		delete(b.clients, id)
	}
	b.cancel()
}

func (b *Board) broadcast(snap Snapshot) {
	for id, ch := range b.clients {
		b.send(id, ch, snap)
	}
}

// send drops the client when its outbox is full.
func (b *Board) send(id string, ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
	default:
		close(ch)
		delete(b.clients, id)
	}
}

// Send delivers m unless the board has already stopped.
func (b *Board) Send(m Msg) bool {
	if b.ctx.Err() != nil {
		return false
	}
	select {
	case b.inbox <- m:
		return true
	case <-b.ctx.Done():
		return false
	}
}

// Done is closed once the board stops.
func (b *Board) Done() <-chan struct{} { return b.ctx.Done() }

// State asks the loop for its current view.
func (b *Board) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if !b.Send(GetState{Reply: reply}) {
		return View{}, context.Canceled
	}
	select {
	case v := <-reply:
		return v, nil
	case <-b.Done():
		return View{}, context.Canceled
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}
