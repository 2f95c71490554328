package engine

import "errors"

var ErrUnknownPattern = errors.New("unknown pattern")
var ErrUnknownSortMode = errors.New("unknown sort mode")
var ErrPasteCountMismatch = errors.New("paste count mismatch")
var ErrBadGridShape = errors.New("grid must be 5x5")

const (
	Size   = 5
	Center = 2

	MinNumber = 1
	MaxNumber = 75

	// FreeMarker fills a blocked center cell.
	FreeMarker = "-"
)

// Grid is a card's cells, row-major. Cells hold "", FreeMarker or a number.
type Grid [Size][Size]string

type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

type PatternType string

const (
	PatternFull    PatternType = "full"
	PatternRow     PatternType = "row"
	PatternCol     PatternType = "col"
	PatternCorners PatternType = "corners"
	PatternCross   PatternType = "cross"
	PatternX       PatternType = "x"
	PatternL       PatternType = "l"
	PatternU       PatternType = "u"
	PatternC       PatternType = "c"
	PatternCustom  PatternType = "custom"
)

type SortMode string

const (
	SortInsertion SortMode = "insertion"
	SortProgress  SortMode = "progress"
)

// DrawnSet holds the values called so far in a session.
type DrawnSet map[int]bool

func NewDrawnSet(values ...int) DrawnSet {
	s := make(DrawnSet, len(values))
	for _, v := range values {
		s[v] = true
	}
	return s
}

func (d DrawnSet) Has(v int) bool { return d[v] }

// Card is the engine's view of a persisted card.
type Card struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Numbers Grid   `json:"numbers"`
}

// Entry is one card of a board together with its computed progress.
type Entry struct {
	Card     Card     `json:"card"`
	Index    int      `json:"index"`
	Pattern  CellSet  `json:"patternCells"`
	Marked   CellSet  `json:"markedCells"`
	Progress Progress `json:"progress"`
	Leader   bool     `json:"leader"`
}

// Board is the derived state of a session: every card scored against the
// selected pattern and ordered for display.
type Board struct {
	Pattern PatternType `json:"pattern"`
	Sort    SortMode    `json:"sort"`
	Drawn   []int       `json:"drawn"`
	Entries []Entry     `json:"cards"`
	Winners []string    `json:"winners"`
}

// Evaluate rebuilds a Board from scratch. cards must be in insertion order;
// drawn keeps the order numbers were called in.
func Evaluate(cards []Card, drawn []int, p PatternType, mode SortMode) Board {
	set := NewDrawnSet(drawn...)
	entries := make([]Entry, 0, len(cards))
	winners := []string{}

	for i, card := range cards {
		cells, progress := EvaluateCard(card.Numbers, p, set)
		entries = append(entries, Entry{
			Card:     card,
			Index:    i,
			Pattern:  cells,
			Marked:   MarkedCells(card.Numbers, set),
			Progress: progress,
		})
		if progress.Winning {
			winners = append(winners, card.ID)
		}
	}

	entries = MarkLeaders(entries)
	return Board{
		Pattern: p,
		Sort:    mode,
		Drawn:   append([]int{}, drawn...),
		Entries: Rank(entries, mode),
		Winners: winners,
	}
}
