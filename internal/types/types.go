package types

import "github.com/DoyleJ11/bingo-tracker/internal/engine"

const (
	MsgStateSnapshot = "StateSnapshot"
	MsgError         = "Error"
)

type ServerMessage struct {
	Type    string        `json:"type"` // "StateSnapshot" | "Error"
	Version int           `json:"version,omitempty"`
	Board   *engine.Board `json:"board,omitempty"`
	Error   string        `json:"error,omitempty"`
}
