package paging

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	idA = "0b8f5a9e-3c1d-4c55-9e53-5a0a4f8d9a01"
	idB = "7d2f0c1a-8e4b-4f2a-a1c3-6b9e2d4f0c02"
)

func TestCursor_EncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		c    Cursor
	}{
		{name: "second precision", c: Cursor{Primary: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), Tie: idA}},
		{name: "microsecond precision", c: Cursor{Primary: time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC), Tie: idB}},
		{name: "nanosecond precision", c: Cursor{Primary: time.Date(1999, 12, 31, 23, 59, 59, 999999999, time.UTC), Tie: idA}},
		{name: "non utc zone", c: Cursor{Primary: time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("x", 3600)), Tie: idB}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := tt.c.Encode()
			require.NoError(t, err)
			require.NotEmpty(t, token)

			got, err := DecodeCursor(token)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.c.Primary.Equal(got.Primary))
			assert.Equal(t, tt.c.Tie, got.Tie)
		})
	}
}

func TestDecodeCursor_Empty(t *testing.T) {
	c, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestDecodeCursor_CanonicalTie(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	const canonical = "cccccccc-0000-4000-8000-000000000000"
	tests := []struct {
		name string
		tie  string
	}{
		{name: "upper case", tie: "CCCCCCCC-0000-4000-8000-000000000000"},
		{name: "braces", tie: "{cccccccc-0000-4000-8000-000000000000}"},
		{name: "urn", tie: "urn:uuid:cccccccc-0000-4000-8000-000000000000"},
		{name: "no hyphens", tie: "cccccccc000040008000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := cbor.Marshal(wireCursor{Primary: at.UnixNano(), Tie: tt.tie})
			require.NoError(t, err)

			c, err := DecodeCursor(base64.RawURLEncoding.EncodeToString(b))
			require.NoError(t, err)
			assert.Equal(t, canonical, c.Tie)
			assert.True(t, c.Admits(at, "bbbbbbbb-0000-4000-8000-000000000000"), "smaller tie on the same primary")
		})
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	raw := func(w any) string {
		b, err := cbor.Marshal(w)
		require.NoError(t, err)
		return base64.RawURLEncoding.EncodeToString(b)
	}
	tests := []struct {
		name  string
		token string
	}{
		{name: "not base64", token: "!!!not-base64!!!"},
		{name: "not cbor", token: base64.RawURLEncoding.EncodeToString([]byte{0xff, 0x00, 0x13})},
		{name: "wrong shape", token: raw([]string{"a", "b"})},
		{name: "missing primary", token: raw(wireCursor{Tie: idA})},
		{name: "tie not uuid", token: raw(wireCursor{Primary: time.Now().UnixNano(), Tie: "e4"})},
		{name: "missing tie", token: raw(wireCursor{Primary: time.Now().UnixNano()})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeCursor(tt.token)
			require.Error(t, err)
			assert.Nil(t, c)

			var de *DecodeError
			assert.True(t, errors.As(err, &de))
			assert.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}

func TestCursor_JSON(t *testing.T) {
	c := Cursor{Primary: time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC), Tie: idA}

	b, err := json.Marshal(Page[int]{Items: []int{1}, NextCursor: &c})
	require.NoError(t, err)

	var decoded struct {
		Items      []int   `json:"items"`
		NextCursor *Cursor `json:"next_cursor"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.NotNil(t, decoded.NextCursor)
	assert.True(t, c.Primary.Equal(decoded.NextCursor.Primary))
	assert.Equal(t, c.Tie, decoded.NextCursor.Tie)

	b, err = json.Marshal(Page[int]{Items: []int{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"next_cursor":null}`, string(b))

	var bad Cursor
	assert.ErrorIs(t, json.Unmarshal([]byte(`"???"`), &bad), ErrInvalidCursor)
	assert.ErrorIs(t, json.Unmarshal([]byte(`""`), &bad), ErrInvalidCursor)
}

func TestCursor_Admits(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := Cursor{Primary: at, Tie: idB}

	assert.True(t, c.Admits(at.Add(-time.Second), idB), "older primary")
	assert.True(t, c.Admits(at, idA), "same primary, smaller tie")
	assert.False(t, c.Admits(at, idB), "the cursor row itself")
	assert.False(t, c.Admits(at.Add(time.Second), idA), "newer primary")
	assert.False(t, c.Admits(at, "ffffffff-ffff-4fff-bfff-ffffffffffff"), "same primary, larger tie")
}
