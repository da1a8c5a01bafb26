package view

import (
	"slices"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Matches reports whether any filterable column of item fuzzy-matches
// pattern. Matching ignores case and Unicode normalisation and allows gaps
// between the pattern characters.
func Matches[T any](item T, pattern string, cols Columns[T]) bool {
	for _, c := range cols {
		if !c.Filterable {
			continue
		}
		if fuzzy.RankMatchNormalizedFold(pattern, c.Accessor(item)) >= 0 {
			return true
		}
	}
	return false
}

// Compute derives a view from raw. Without a pattern every row passes; rows
// keep raw order unless state names a sortable column, in which case they are
// stably sorted ascending and reversed for Desc. raw is never modified.
func Compute[T any](raw []T, state SearchState, cols Columns[T]) []T {
	pattern := strings.TrimSpace(state.PatternText())

	out := make([]T, 0, len(raw))
	if pattern == "" {
		out = append(out, raw...)
	} else {
		for _, item := range raw {
			if Matches(item, pattern, cols) {
				out = append(out, item)
			}
		}
	}

	if state.Sort == nil || state.Sort.Col < 0 || state.Sort.Col >= len(cols) {
		return out
	}
	col := cols[state.Sort.Col]
	if !col.Sortable {
		return out
	}
	slices.SortStableFunc(out, col.Compare)
	if state.Sort.Dir == Desc {
		slices.Reverse(out)
	}
	return out
}
