package paging

import (
	"strconv"
	"strings"
)

// Where is a conjunction of optional SQL predicates. Clauses use '?'
// placeholders; SQL and Keyset renumber them to $n in order. A Where is a
// value: the count query and the page query of one endpoint are both derived
// from the same Where so they always agree on the filtered set.
type Where struct {
	clauses []string
	args    []any
	offset  int
}

// And appends a clause. args must match its '?' placeholders.
func (w Where) And(clause string, args ...any) Where {
	out := Where{
		clauses: make([]string, len(w.clauses), len(w.clauses)+1),
		args:    make([]any, len(w.args), len(w.args)+len(args)),
		offset:  w.offset,
	}
	copy(out.clauses, w.clauses)
	copy(out.args, w.args)
	out.clauses = append(out.clauses, clause)
	out.args = append(out.args, args...)
	return out
}

// AndIf appends the clause only when cond holds.
func (w Where) AndIf(cond bool, clause string, args ...any) Where {
	if !cond {
		return w
	}
	return w.And(clause, args...)
}

// Shift reserves the first n placeholders for arguments the caller binds
// ahead of the predicate, such as a viewer id used in the select list.
func (w Where) Shift(n int) Where {
	w.offset = n
	return w
}

// SQL renders " WHERE ..." (empty when there are no clauses) and its args.
func (w Where) SQL() (string, []any) {
	if len(w.clauses) == 0 {
		return "", nil
	}
	args := make([]any, len(w.args))
	copy(args, w.args)
	return " WHERE " + renumber(strings.Join(w.clauses, " AND "), w.offset+1), args
}

// Keyset renders the predicate plus the cursor filter, descending order and
// limit for one page.
func (w Where) Keyset(primaryCol, tieCol string, after *Cursor, limit int) (string, []any) {
	page := w
	if after != nil {
		page = page.And("("+primaryCol+" < ? OR ("+primaryCol+" = ? AND "+tieCol+" < ?))",
			after.Primary, after.Primary, after.Tie)
	}
	sql, args := page.SQL()
	args = append(args, limit)
	sql += " ORDER BY " + primaryCol + " DESC, " + tieCol + " DESC LIMIT $" + strconv.Itoa(w.offset+len(args))
	return sql, args
}

func renumber(s string, start int) string {
	var b strings.Builder
	n := start
	for i := 0; i < len(s); i++ {
		if s[i] == '?' {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
