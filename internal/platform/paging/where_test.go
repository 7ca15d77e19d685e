package paging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWhere_SQL(t *testing.T) {
	var w Where
	sql, args := w.SQL()
	assert.Empty(t, sql)
	assert.Empty(t, args)

	w = w.And("v.visibility = ?", "public").
		AndIf(false, "v.category_id = ?", "skipped").
		AndIf(true, "v.user_id = ?", "u1")
	sql, args = w.SQL()
	assert.Equal(t, " WHERE v.visibility = $1 AND v.user_id = $2", sql)
	assert.Equal(t, []any{"public", "u1"}, args)
}

func TestWhere_AndDoesNotAlias(t *testing.T) {
	base := Where{}.And("a = ?", 1)
	left := base.And("b = ?", 2)
	right := base.And("c = ?", 3)

	ls, la := left.SQL()
	rs, ra := right.SQL()
	assert.Equal(t, " WHERE a = $1 AND b = $2", ls)
	assert.Equal(t, []any{1, 2}, la)
	assert.Equal(t, " WHERE a = $1 AND c = $2", rs)
	assert.Equal(t, []any{1, 3}, ra)
}

func TestWhere_Keyset(t *testing.T) {
	w := Where{}.And("c.video_id = ?", "vid")

	sql, args := w.Keyset("c.updated_at", "c.id", nil, 11)
	assert.Equal(t, " WHERE c.video_id = $1 ORDER BY c.updated_at DESC, c.id DESC LIMIT $2", sql)
	assert.Equal(t, []any{"vid", 11}, args)

	at := time.Unix(1700000000, 0).UTC()
	sql, args = w.Keyset("c.updated_at", "c.id", &Cursor{Primary: at, Tie: idA}, 11)
	assert.Equal(t,
		" WHERE c.video_id = $1 AND (c.updated_at < $2 OR (c.updated_at = $3 AND c.id < $4))"+
			" ORDER BY c.updated_at DESC, c.id DESC LIMIT $5", sql)
	assert.Equal(t, []any{"vid", at, at, idA, 11}, args)

	// The count query built from the same Where ignores the cursor.
	countSQL, countArgs := w.SQL()
	assert.Equal(t, " WHERE c.video_id = $1", countSQL)
	assert.Equal(t, []any{"vid"}, countArgs)
}

func TestWhere_KeysetNoFilters(t *testing.T) {
	sql, args := Where{}.Keyset("p.updated_at", "p.id", nil, 3)
	assert.Equal(t, " ORDER BY p.updated_at DESC, p.id DESC LIMIT $1", sql)
	assert.Equal(t, []any{3}, args)
}

func TestWhere_Shift(t *testing.T) {
	w := Where{}.And("c.video_id = ?", "vid")

	sql, args := w.Shift(1).Keyset("c.updated_at", "c.id", &Cursor{Primary: time.Unix(10, 0), Tie: idB}, 4)
	assert.Equal(t,
		" WHERE c.video_id = $2 AND (c.updated_at < $3 OR (c.updated_at = $4 AND c.id < $5))"+
			" ORDER BY c.updated_at DESC, c.id DESC LIMIT $6", sql)
	assert.Len(t, args, 5)

	sql, _ = Where{}.Shift(2).Keyset("p.updated_at", "p.id", nil, 4)
	assert.Equal(t, " ORDER BY p.updated_at DESC, p.id DESC LIMIT $3", sql)

	// Shifting the page query leaves the count query untouched.
	countSQL, _ := w.SQL()
	assert.Equal(t, " WHERE c.video_id = $1", countSQL)
}
