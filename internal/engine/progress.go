package engine

type Progress struct {
	Matched   int     `json:"matched"`
	Total     int     `json:"total"`
	Remaining int     `json:"remaining"`
	Percent   float64 `json:"percent"`
	Winning   bool    `json:"winning"`
}

// ComputeProgress counts how many of cells hold a drawn number on g.
// The card's own center status wins over whatever cells was resolved with:
// a blocked center is never counted.
func ComputeProgress(g Grid, cells CellSet, drawn DrawnSet) Progress {
	centerNumbered := CenterNumbered(g)

	var p Progress
	for at := range cells {
		if !at.InBounds() || IsBlockedCenter(at.Row, at.Col, centerNumbered) {
			continue
		}
		p.Total++
		if n, ok := cellNumber(g[at.Row][at.Col]); ok && drawn.Has(n) {
			p.Matched++
		}
	}

	p.Remaining = p.Total - p.Matched
	if p.Total > 0 {
		p.Percent = float64(p.Matched) / float64(p.Total)
	}
	p.Winning = p.Total > 0 && p.Remaining == 0
	return p
}

// EvaluateCard resolves p for this card's center status and scores it.
func EvaluateCard(g Grid, p PatternType, drawn DrawnSet) (CellSet, Progress) {
	cells := ResolveCells(p, CenterNumbered(g))
	return cells, ComputeProgress(g, cells, drawn)
}
