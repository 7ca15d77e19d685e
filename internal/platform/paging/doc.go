// Package paging implements keyset pagination shared by every list endpoint.
//
// Collections are walked in descending order of a compound key: a primary
// timestamp and a unique tie-break id. A page boundary is the key of the last
// row returned, never a row offset, so rows inserted or updated outside the
// range already returned never cause duplicates or gaps.
//
// Row sources receive the cursor and a fetch limit and must return rows that
// satisfy the cursor predicate in descending order. Postgres row sources build
// the predicate with Where.Keyset; in-memory row sources use Slice.
package paging
