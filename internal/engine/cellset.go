package engine

import (
	"encoding/json"
	"sort"
)

// CellSet is a set of grid coordinates. Every pattern is built by combining
// CellSets, which is what keeps overlapping lines from being counted twice.
type CellSet map[Coord]struct{}

func NewCellSet(coords ...Coord) CellSet {
	s := make(CellSet, len(coords))
	for _, c := range coords {
		s[c] = struct{}{}
	}
	return s
}

func (s CellSet) Has(c Coord) bool {
	_, ok := s[c]
	return ok
}

func (s CellSet) Len() int { return len(s) }

// Union returns a new set holding the cells of s and all others.
func (s CellSet) Union(others ...CellSet) CellSet {
	out := make(CellSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	for _, o := range others {
		for c := range o {
			out[c] = struct{}{}
		}
	}
	return out
}

// Without returns a copy of s minus c.
func (s CellSet) Without(c Coord) CellSet {
	out := s.Union()
	delete(out, c)
	return out
}

// Coords lists the cells in row-major order. The order carries no meaning
// beyond making output stable.
func (s CellSet) Coords() []Coord {
	out := make([]Coord, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func (s CellSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Coords())
}

func (s *CellSet) UnmarshalJSON(data []byte) error {
	var coords []Coord
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	*s = NewCellSet(coords...)
	return nil
}

func rowCells(r int) CellSet {
	s := make(CellSet, Size)
	for c := 0; c < Size; c++ {
		s[Coord{Row: r, Col: c}] = struct{}{}
	}
	return s
}

func columnCells(c int) CellSet {
	s := make(CellSet, Size)
	for r := 0; r < Size; r++ {
		s[Coord{Row: r, Col: c}] = struct{}{}
	}
	return s
}

func diagonalCells() CellSet {
	s := make(CellSet, Size)
	for i := 0; i < Size; i++ {
		s[Coord{Row: i, Col: i}] = struct{}{}
	}
	return s
}

func antiDiagonalCells() CellSet {
	s := make(CellSet, Size)
	for i := 0; i < Size; i++ {
		s[Coord{Row: i, Col: Size - 1 - i}] = struct{}{}
	}
	return s
}

func allCells() CellSet {
	s := make(CellSet, Size*Size)
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			s[Coord{Row: r, Col: c}] = struct{}{}
		}
	}
	return s
}
