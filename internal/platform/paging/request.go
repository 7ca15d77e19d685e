package paging

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit applies when a request carries no limit.
	DefaultLimit = 20
	// MaxLimit is the largest page any endpoint serves.
	MaxLimit = 100
)

// Request is a single page request. A nil Cursor asks for the first page.
type Request struct {
	Limit  int
	Cursor *Cursor
}

// First returns a first-page request of the given size.
func First(limit int) Request {
	return Request{Limit: limit}
}

// Validate rejects limits outside 1..MaxLimit.
func (r Request) Validate() error {
	if r.Limit < 1 || r.Limit > MaxLimit {
		return &ValidationError{
			Field:  "limit",
			Reason: fmt.Sprintf("must be between 1 and %d, got %d", MaxLimit, r.Limit),
		}
	}
	return nil
}

// ParseRequest builds a Request from raw query-string values.
func ParseRequest(limitRaw, cursorRaw string) (Request, error) {
	req := Request{Limit: DefaultLimit}
	if s := strings.TrimSpace(limitRaw); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Request{}, &ValidationError{Field: "limit", Reason: "must be an integer"}
		}
		req.Limit = n
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	c, err := DecodeCursor(strings.TrimSpace(cursorRaw))
	if err != nil {
		return Request{}, err
	}
	req.Cursor = c
	return req, nil
}
