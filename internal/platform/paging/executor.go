package paging

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Page is one page of a descending keyset traversal. NextCursor is nil on the
// last page. TotalCount is set only by queries that count.
type Page[T any] struct {
	Items      []T     `json:"items"`
	NextCursor *Cursor `json:"next_cursor"`
	TotalCount *int64  `json:"total_count,omitempty"`
}

// FetchFunc returns at most limit rows strictly after the cursor (all rows
// when after is nil) in descending key order.
type FetchFunc[T any] func(ctx context.Context, after *Cursor, limit int) ([]T, error)

// CountFunc counts the filtered row source, ignoring any cursor.
type CountFunc func(ctx context.Context) (int64, error)

// Query binds a row source to its key accessors.
type Query[T any] struct {
	Keys  Keys[T]
	Fetch FetchFunc[T]
	Count CountFunc
}

// Execute returns the page described by req. The count, when present, runs
// concurrently with the fetch. Errors from either are returned unchanged and
// no page is produced.
func Execute[T any](ctx context.Context, req Request, q Query[T]) (Page[T], error) {
	if err := req.Validate(); err != nil {
		return Page[T]{}, err
	}

	g, gctx := errgroup.WithContext(ctx)

	var total int64
	if q.Count != nil {
		g.Go(func() error {
			n, err := q.Count(gctx)
			if err != nil {
				return err
			}
			total = n
			return nil
		})
	}

	var rows []T
	g.Go(func() error {
		var err error
		rows, err = q.Fetch(gctx, req.Cursor, req.Limit+1)
		return err
	})

	if err := g.Wait(); err != nil {
		return Page[T]{}, err
	}

	page := Page[T]{Items: rows}
	if len(rows) > req.Limit {
		page.Items = rows[:req.Limit]
		next := q.Keys.Cursor(page.Items[req.Limit-1])
		page.NextCursor = &next
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	if q.Count != nil {
		page.TotalCount = &total
	}
	return page, nil
}

// Map converts the items of a page, keeping its cursor and count.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Items: make([]U, len(p.Items)), NextCursor: p.NextCursor, TotalCount: p.TotalCount}
	for i, it := range p.Items {
		out.Items[i] = fn(it)
	}
	return out
}
