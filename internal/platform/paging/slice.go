package paging

import "sort"

// Slice is the in-memory row source: it keeps the rows after the cursor,
// orders them descending and returns at most limit of them. rows is not
// modified.
func Slice[T any](rows []T, keys Keys[T], after *Cursor, limit int) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if after != nil && !after.Admits(keys.Primary(r), keys.Tie(r)) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return keys.Before(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
