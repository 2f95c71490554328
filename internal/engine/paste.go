package engine

import (
	"fmt"
	"strings"
	"unicode"
)

// PasteCountError means a paste held fewer numbers than a card needs.
// Nothing from such a paste is applied.
type PasteCountError struct {
	Required int
	Got      int
}

func (e *PasteCountError) Error() string {
	return fmt.Sprintf("need %d values, got %d", e.Required, e.Got)
}

func (e *PasteCountError) Unwrap() error { return ErrPasteCountMismatch }

type PasteResult struct {
	Grid          Grid              `json:"numbers"`
	Invalid       int               `json:"invalid"`
	Excess        int               `json:"excess"`
	SkippedCenter bool              `json:"skippedCenter"`
	Errors        []ValidationError `json:"errors"`
}

func splitTokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// ParsePaste fills a whole card from clipboard text. Tokens are split on
// whitespace and commas; non-numeric tokens are dropped and counted, extra
// numbers past the card size are truncated and counted.
func ParsePaste(text string, centerNumbered bool) (PasteResult, error) {
	tokens := splitTokens(text)
	numeric := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if digitsOnly.MatchString(t) {
			numeric = append(numeric, t)
		}
	}

	required := RequiredCells(centerNumbered)
	if len(numeric) < required {
		return PasteResult{}, &PasteCountError{Required: required, Got: len(numeric)}
	}

	res := PasteResult{
		Invalid: len(tokens) - len(numeric),
		Excess:  len(numeric) - required,
	}
	i := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if IsBlockedCenter(r, c, centerNumbered) {
				res.Grid[r][c] = FreeMarker
				res.SkippedCenter = true
				continue
			}
			res.Grid[r][c] = numeric[i]
			i++
		}
	}
	res.Errors = Validate(res.Grid, centerNumbered)
	return res, nil
}

// MapRowInput writes one typed row into a copy of g. On the center row of a
// card with a blocked center, the first two and the last two values land
// around the marker.
func MapRowInput(g Grid, row int, text string, centerNumbered bool) Grid {
	if row < 0 || row >= Size {
		return g
	}
	vals := strings.Fields(text)
	at := func(i int) string {
		if i >= 0 && i < len(vals) {
			return vals[i]
		}
		return ""
	}

	if IsBlockedCenter(row, Center, centerNumbered) {
		left := min(2, len(vals))
		right := max(left, len(vals)-2)
		g[row] = [Size]string{at(0), at(1), FreeMarker, at(right), at(right + 1)}
		return g
	}
	for c := 0; c < Size; c++ {
		g[row][c] = at(c)
	}
	return g
}

// ParseGridPaste reads up to five lines of up to five numbers each, the
// way a card is copied out of a spreadsheet. Numbers outside their column's
// range are left out and counted.
func ParseGridPaste(text string, centerNumbered bool) (Grid, int) {
	g := NewEmptyGrid(centerNumbered)
	ignored := 0

	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	row := 0
	for _, line := range lines {
		if row == Size {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		col := 0
		for _, t := range splitTokens(line) {
			if col == Size {
				break
			}
			n, ok := cellNumber(t)
			if !ok {
				continue
			}
			if !IsBlockedCenter(row, col, centerNumbered) {
				if Columns[col].Contains(n) {
					g[row][col] = t
				} else {
					ignored++
				}
			}
			col++
		}
		row++
	}
	return g, ignored
}
