package engine

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortInsertion:
		return SortInsertion, nil
	case SortProgress:
		return SortProgress, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSortMode, s)
	}
}

// Rank orders entries for display without touching the input slice.
// SortProgress puts the highest percent first; equal percents keep their
// original relative order.
func Rank(entries []Entry, mode SortMode) []Entry {
	out := slices.Clone(entries)
	switch mode {
	case SortProgress:
		slices.SortStableFunc(out, func(a, b Entry) int {
			if c := cmp.Compare(b.Progress.Percent, a.Progress.Percent); c != 0 {
				return c
			}
			return cmp.Compare(a.Index, b.Index)
		})
	default:
		slices.SortStableFunc(out, func(a, b Entry) int {
			return cmp.Compare(a.Index, b.Index)
		})
	}
	return out
}

// MarkLeaders flags the entries sharing the highest percent. Nothing is
// flagged while every card is still at zero.
func MarkLeaders(entries []Entry) []Entry {
	out := slices.Clone(entries)
	best := 0.0
	for _, e := range out {
		best = max(best, e.Progress.Percent)
	}
	for i := range out {
		out[i].Leader = best > 0 && out[i].Progress.Percent == best
	}
	return out
}
