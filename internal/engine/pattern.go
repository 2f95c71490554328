package engine

import (
	"fmt"
	"strings"
)

// Patterns lists every pattern id in display order.
var Patterns = []PatternType{
	PatternFull,
	PatternRow,
	PatternCol,
	PatternCorners,
	PatternCross,
	PatternX,
	PatternL,
	PatternU,
	PatternC,
	PatternCustom,
}

var patternLabels = map[PatternType]string{
	PatternFull:    "Full card",
	PatternRow:     "First row",
	PatternCol:     "First column",
	PatternCorners: "Four corners",
	PatternCross:   "Cross",
	PatternX:       "X",
	PatternL:       "L",
	PatternU:       "U",
	PatternC:       "C",
	PatternCustom:  "Custom",
}

func (p PatternType) Label() string {
	if l, ok := patternLabels[p]; ok {
		return l
	}
	return string(p)
}

// ParsePattern accepts a pattern id; "column" is kept as an alias of "col".
func ParsePattern(s string) (PatternType, error) {
	id := PatternType(strings.ToLower(strings.TrimSpace(s)))
	if id == "column" {
		return PatternCol, nil
	}
	if _, ok := patternLabels[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPattern, s)
	}
	return id, nil
}

// ResolveCells maps a pattern to the cells a card must match. When the
// center is not numbered it is never part of the result. Custom patterns
// resolve to an empty set.
func ResolveCells(p PatternType, centerNumbered bool) CellSet {
	var cells CellSet
	switch p {
	case PatternFull:
		cells = allCells()
	case PatternRow:
		cells = rowCells(0)
	case PatternCol:
		cells = columnCells(0)
	case PatternCorners:
		cells = NewCellSet(
			Coord{Row: 0, Col: 0},
			Coord{Row: 0, Col: Size - 1},
			Coord{Row: Size - 1, Col: 0},
			Coord{Row: Size - 1, Col: Size - 1},
		)
	case PatternCross:
		cells = rowCells(Center).Union(columnCells(Center))
	case PatternX:
		cells = diagonalCells().Union(antiDiagonalCells())
	case PatternL:
		cells = columnCells(0).Union(rowCells(Size - 1))
	case PatternU:
		cells = columnCells(0).Union(columnCells(Size-1), rowCells(Size-1))
	case PatternC:
		cells = columnCells(0).Union(rowCells(0), rowCells(Size-1))
	default:
		return NewCellSet()
	}
	return withoutBlockedCenter(cells, centerNumbered)
}

// MaskCells turns a hand-drawn 5x5 selection into a cell set.
func MaskCells(mask [Size][Size]bool, centerNumbered bool) CellSet {
	cells := NewCellSet()
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if mask[r][c] {
				cells[Coord{Row: r, Col: c}] = struct{}{}
			}
		}
	}
	return withoutBlockedCenter(cells, centerNumbered)
}

func withoutBlockedCenter(cells CellSet, centerNumbered bool) CellSet {
	if centerNumbered {
		return cells
	}
	return cells.Without(Coord{Row: Center, Col: Center})
}
