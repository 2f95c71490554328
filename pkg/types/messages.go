// Package types holds the JSON bodies of the HTTP API.
//
// The websocket feed at /sessions/{id}/feed only sends, never receives:
//
// StateSnapshot:
//
//	version: number            // bumps on every change to the session
//	board:
//	  pattern: string          // full | row | col | corners | cross | x | l | u | c | custom
//	  sort: "insertion" | "progress"
//	  drawn: number[]          // in the order they were called
//	  winners: string[]        // card ids with the pattern complete
//	  cards: [{ card, index, patternCells, markedCells, progress, leader }]
//
// Error follows a snapshot that was built from incomplete data:
//
//	version: number
//	error: "board data incomplete"
package types

import "github.com/DoyleJ11/bingo-tracker/internal/engine"

type CreateSessionRequest struct {
	Name string `json:"name"`
}

type CardRequest struct {
	Name    *string    `json:"name"`
	Numbers [][]string `json:"numbers"`
}

type ValidateRequest struct {
	Numbers        [][]string `json:"numbers"`
	CenterNumbered bool       `json:"centerNumbered"`
}

const (
	LayoutFlat = "flat" // every value in one run, row-major
	LayoutGrid = "grid" // one card row per line
	LayoutRow  = "row"  // a single row typed into Numbers
)

type PasteRequest struct {
	Text           string     `json:"text"`
	CenterNumbered bool       `json:"centerNumbered"`
	Layout         string     `json:"layout,omitempty"`
	Row            int        `json:"row,omitempty"`
	Numbers        [][]string `json:"numbers,omitempty"`
}

type DrawRequest struct {
	Value int `json:"value"`
}

type PatternRequest struct {
	Pattern string `json:"pattern"`
}

type PatternResponse struct {
	Pattern engine.PatternType `json:"pattern"`
	Label   string             `json:"label"`
}

// CellsRequest asks which cells a pattern covers. A mask, when given, is a
// hand-drawn selection and takes the place of the named pattern.
type CellsRequest struct {
	Pattern        string                          `json:"pattern,omitempty"`
	Mask           *[engine.Size][engine.Size]bool `json:"mask,omitempty"`
	CenterNumbered bool                            `json:"centerNumbered"`
}

type CellsResponse struct {
	Cells engine.CellSet `json:"cells"`
}

type UndoResponse struct {
	Undone bool `json:"undone"`
	Value  int  `json:"value,omitempty"`
}

type ErrorResponse struct {
	Error  string                   `json:"error"`
	Errors []engine.ValidationError `json:"errors,omitempty"`
}
