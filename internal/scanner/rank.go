package scanner

import (
	"cmp"
	"slices"
	"strings"

	"scan_bot/internal/models"
)

// NoCutoff is the cutoff reported when the top list is empty.
const NoCutoff = 0.0

// Rank returns the n best entries by score (ties broken by ticker) and the
// score of the last one. The input slice is not reordered.
func Rank(entries []models.RankedEntry, n int) ([]models.RankedEntry, float64) {
	if n <= 0 || len(entries) == 0 {
		return []models.RankedEntry{}, NoCutoff
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, compareRanked)

	top := sorted[:min(n, len(sorted))]
	return top, top[len(top)-1].Score
}

func compareRanked(a, b models.RankedEntry) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return strings.Compare(a.Ticker, b.Ticker)
}
