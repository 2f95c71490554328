package engine

import (
	"fmt"
	"strconv"
	"strings"
)

type ErrorKind string

const (
	KindFormat      ErrorKind = "format"
	KindGlobalRange ErrorKind = "global-range"
	KindRange       ErrorKind = "range"
	KindDuplicate   ErrorKind = "duplicate"
)

type ValidationError struct {
	Row     int       `json:"row"`
	Col     int       `json:"col"`
	Kind    ErrorKind `json:"type"`
	Message string    `json:"message"`
}

type ColumnRange struct {
	Letter string `json:"letter"`
	Min    int    `json:"min"`
	Max    int    `json:"max"`
}

func (r ColumnRange) Contains(n int) bool { return n >= r.Min && n <= r.Max }

// Columns holds the B-I-N-G-O sub-ranges, indexed by column.
var Columns = [Size]ColumnRange{
	{Letter: "B", Min: 1, Max: 15},
	{Letter: "I", Min: 16, Max: 30},
	{Letter: "N", Min: 31, Max: 45},
	{Letter: "G", Min: 46, Max: 60},
	{Letter: "O", Min: 61, Max: 75},
}

// Validate checks every playable cell of g. Empty cells are allowed; a cell
// may collect several errors. Errors come back as data, in row-major order,
// with duplicate errors after the per-cell ones.
func Validate(g Grid, centerNumbered bool) []ValidationError {
	var errs []ValidationError
	seen := map[string][]Coord{}
	var order []string

	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if IsBlockedCenter(r, c, centerNumbered) {
				continue
			}
			raw := g[r][c]
			if strings.TrimSpace(raw) == "" {
				continue
			}
			if _, ok := seen[raw]; !ok {
				order = append(order, raw)
			}
			seen[raw] = append(seen[raw], Coord{Row: r, Col: c})
			errs = append(errs, checkCell(r, c, raw)...)
		}
	}

	for _, v := range order {
		at := seen[v]
		if len(at) < 2 {
			continue
		}
		for _, p := range at {
			errs = append(errs, ValidationError{
				Row:     p.Row,
				Col:     p.Col,
				Kind:    KindDuplicate,
				Message: fmt.Sprintf("duplicate: %s", v),
			})
		}
	}
	return errs
}

func checkCell(r, c int, raw string) []ValidationError {
	if !digitsOnly.MatchString(raw) {
		return []ValidationError{{Row: r, Col: c, Kind: KindFormat, Message: "only positive integers"}}
	}
	n, err := strconv.Atoi(raw)
	if err == nil && n == 0 {
		return []ValidationError{{Row: r, Col: c, Kind: KindFormat, Message: "only positive integers"}}
	}

	// err here can only be a range error: the digits overflow an int.
	var out []ValidationError
	if err != nil || n > MaxNumber {
		out = append(out, ValidationError{
			Row: r, Col: c, Kind: KindGlobalRange,
			Message: fmt.Sprintf("out of %d-%d", MinNumber, MaxNumber),
		})
	}
	col := Columns[c]
	if err != nil || !col.Contains(n) {
		out = append(out, ValidationError{
			Row: r, Col: c, Kind: KindRange,
			Message: fmt.Sprintf("column %s: %d-%d", col.Letter, col.Min, col.Max),
		})
	}
	return out
}

// Missing lists the playable cells that are still empty.
func Missing(g Grid, centerNumbered bool) []Coord {
	var out []Coord
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if IsBlockedCenter(r, c, centerNumbered) {
				continue
			}
			if strings.TrimSpace(g[r][c]) == "" {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

// Submittable reports whether g can be saved: no errors and nothing missing.
func Submittable(g Grid, centerNumbered bool) bool {
	return len(Validate(g, centerNumbered)) == 0 && len(Missing(g, centerNumbered)) == 0
}

// Summary counts validation errors by kind.
type Summary struct {
	Format      int `json:"format"`
	GlobalRange int `json:"globalRange"`
	Range       int `json:"range"`
	Duplicate   int `json:"duplicate"`
}

func Summarize(errs []ValidationError) Summary {
	var s Summary
	for _, e := range errs {
		switch e.Kind {
		case KindFormat:
			s.Format++
		case KindGlobalRange:
			s.GlobalRange++
		case KindRange:
			s.Range++
		case KindDuplicate:
			s.Duplicate++
		}
	}
	return s
}

func (s Summary) Total() int { return s.Format + s.GlobalRange + s.Range + s.Duplicate }

func (s Summary) String() string {
	var parts []string
	if s.Range > 0 {
		parts = append(parts, fmt.Sprintf("%d out of column range", s.Range))
	}
	if s.Duplicate > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicated", s.Duplicate))
	}
	if s.Format > 0 {
		parts = append(parts, fmt.Sprintf("%d invalid format", s.Format))
	}
	if s.GlobalRange > 0 {
		parts = append(parts, fmt.Sprintf("%d out of 1-75", s.GlobalRange))
	}
	return strings.Join(parts, ", ")
}
