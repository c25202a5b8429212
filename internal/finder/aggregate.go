package finder

import (
	"slices"
	"strings"
)

// collect flattens the per-file match lists into one slice.
// When ordered, files are sorted by path; matches within a file are already
// in line order.
func collect(perFile [][]Match, ordered bool) []Match {
	total := 0
	groups := perFile[:0]
	for _, ms := range perFile {
		if len(ms) == 0 {
			continue
		}
		total += len(ms)
		groups = append(groups, ms)
	}

	if ordered {
		slices.SortStableFunc(groups, func(a, b []Match) int {
			return strings.Compare(a[0].Path, b[0].Path)
		})
	}

	out := make([]Match, 0, total)
	for _, ms := range groups {
		out = append(out, ms...)
	}
	return out
}
