package hub

import (
	"context"

	"github.com/DoyleJ11/bingo-tracker/internal/board"
)

type HubMsg interface{ isHubMsg() }

type GetBoard struct {
	SessionID string
	Reply     chan *board.Board
}

// EnsureBoard returns the session's board, starting one that reads through
// Load if there is none yet.
type EnsureBoard struct {
	SessionID string
	Load      board.Loader // only used if creation happens
	Reply     chan *board.Board
}

// RemoveBoard stops the session's board and forgets it.
type RemoveBoard struct {
	SessionID string
}

type ShutdownHub struct{}

func (GetBoard) isHubMsg()    {}
func (EnsureBoard) isHubMsg() {}
func (RemoveBoard) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox  chan HubMsg
	boards map[string]*board.Board
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		boards: make(map[string]*board.Board),
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetBoard:
				msg.Reply <- h.boards[msg.SessionID] // may be nil

			case EnsureBoard:
				if b := h.boards[msg.SessionID]; b != nil {
					msg.Reply <- b
					break
				}
				b := board.NewBoard(h.ctx, msg.Load)
				h.boards[msg.SessionID] = b
				msg.Reply <- b

			case RemoveBoard:
				if b := h.boards[msg.SessionID]; b != nil {
					b.Send(board.Shutdown{})
					delete(h.boards, msg.SessionID)
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, b := range h.boards {
		b.Send(board.Shutdown{})
	}
	clear(h.boards)
	h.cancel()
}

// Send delivers m unless the hub has stopped.
func (h *Hub) Send(m HubMsg) bool {
	if h.ctx.Err() != nil {
		return false
	}
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

// Get returns the session's board or nil.
func (h *Hub) Get(sessionID string) *board.Board {
	reply := make(chan *board.Board, 1)
	if !h.Send(GetBoard{SessionID: sessionID, Reply: reply}) {
		return nil
	}
	return h.await(reply)
}

// Ensure returns the session's board, creating it around load when missing.
// It returns nil once the hub has stopped.
func (h *Hub) Ensure(sessionID string, load board.Loader) *board.Board {
	reply := make(chan *board.Board, 1)
	if !h.Send(EnsureBoard{SessionID: sessionID, Load: load, Reply: reply}) {
		return nil
	}
	return h.await(reply)
}

func (h *Hub) await(reply chan *board.Board) *board.Board {
	select {
	case b := <-reply:
		return b
	case <-h.ctx.Done():
		return nil
	}
}
