package engine

import (
	"regexp"
	"strconv"
	"strings"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// IsBlockedCenter is the one place that decides whether (row, col) is a center
// cell taken out of play. The resolver, validator, paste ingestion and progress
// all go through it.
func IsBlockedCenter(row, col int, centerNumbered bool) bool {
	return !centerNumbered && row == Center && col == Center
}

// CenterNumbered derives a card's own free-space status from its center cell.
func CenterNumbered(g Grid) bool {
	v := strings.TrimSpace(g[Center][Center])
	return v != "" && v != FreeMarker && !strings.EqualFold(v, "free")
}

// RequiredCells is how many cells a complete card fills in.
func RequiredCells(centerNumbered bool) int {
	if centerNumbered {
		return Size * Size
	}
	return Size*Size - 1
}

// NewEmptyGrid returns a blank card, with the marker in a blocked center.
func NewEmptyGrid(centerNumbered bool) Grid {
	var g Grid
	if !centerNumbered {
		g[Center][Center] = FreeMarker
	}
	return g
}

// GridFromRows checks shape and copies rows into a Grid.
func GridFromRows(rows [][]string) (Grid, error) {
	var g Grid
	if len(rows) != Size {
		return g, ErrBadGridShape
	}
	for r, row := range rows {
		if len(row) != Size {
			return g, ErrBadGridShape
		}
		copy(g[r][:], row)
	}
	return g, nil
}

// Rows is the inverse of GridFromRows.
func (g Grid) Rows() [][]string {
	rows := make([][]string, Size)
	for r := range g {
		rows[r] = append([]string(nil), g[r][:]...)
	}
	return rows
}

// cellNumber returns the number printed in a cell, if any.
func cellNumber(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if !digitsOnly.MatchString(v) {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// MarkedCells reports every cell whose number has been drawn, pattern or not.
func MarkedCells(g Grid, drawn DrawnSet) CellSet {
	marked := NewCellSet()
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if n, ok := cellNumber(g[r][c]); ok && drawn.Has(n) {
				marked[Coord{Row: r, Col: c}] = struct{}{}
			}
		}
	}
	return marked
}
