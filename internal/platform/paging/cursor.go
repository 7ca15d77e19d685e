package paging

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Cursor is the compound key of the last row of a page. The next page holds
// the rows strictly after it in descending (Primary, Tie) order.
type Cursor struct {
	Primary time.Time
	Tie     string
}

// wireCursor is the CBOR payload of a token. The timestamp travels as unix
// nanoseconds so the round trip keeps full precision.
type wireCursor struct {
	Primary int64  `cbor:"1,keyasint"`
	Tie     string `cbor:"2,keyasint"`
}

// Admits reports whether a row with the given key belongs after the cursor.
func (c Cursor) Admits(primary time.Time, tie string) bool {
	if primary.Before(c.Primary) {
		return true
	}
	return primary.Equal(c.Primary) && tie < c.Tie
}

// Encode returns the opaque token for the cursor.
func (c Cursor) Encode() (string, error) {
	b, err := cbor.Marshal(wireCursor{Primary: c.Primary.UnixNano(), Tie: c.Tie})
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor parses a token produced by Encode. An empty token means "first
// page" and yields a nil cursor.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	var w wireCursor
	if err := cbor.Unmarshal(b, &w); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if w.Primary <= 0 {
		return nil, &DecodeError{Err: errors.New("missing primary key")}
	}
	// Every tie-break column in this system is a uuid. The canonical form
	// keeps string comparison in Admits consistent with uuid ordering.
	id, err := uuid.Parse(w.Tie)
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("tie key: %w", err)}
	}
	return &Cursor{Primary: time.Unix(0, w.Primary).UTC(), Tie: id.String()}, nil
}

func (c Cursor) MarshalJSON() ([]byte, error) {
	token, err := c.Encode()
	if err != nil {
		return nil, err
	}
	return json.Marshal(token)
}

func (c *Cursor) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err != nil {
		return &DecodeError{Err: err}
	}
	dec, err := DecodeCursor(token)
	if err != nil {
		return err
	}
	if dec == nil {
		return &DecodeError{Err: errors.New("empty token")}
	}
	*c = *dec
	return nil
}

// Keys extracts the compound key of a row type.
type Keys[T any] struct {
	Primary func(T) time.Time
	Tie     func(T) string
}

// Cursor builds the cursor pointing at row.
func (k Keys[T]) Cursor(row T) Cursor {
	return Cursor{Primary: k.Primary(row), Tie: k.Tie(row)}
}

// Before reports whether a sorts before b in the descending walk.
func (k Keys[T]) Before(a, b T) bool {
	pa, pb := k.Primary(a), k.Primary(b)
	if !pa.Equal(pb) {
		return pa.After(pb)
	}
	return k.Tie(a) > k.Tie(b)
}
