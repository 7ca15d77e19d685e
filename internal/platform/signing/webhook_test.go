package signing

import (
	"encoding/base64"
	"errors"
	"strconv"
	"testing"
	"time"
)

var fixedNow = time.Unix(1_700_000_000, 0)

func TestVerifier_Valid(t *testing.T) {
	payload := []byte(`{"type":"video.asset.ready"}`)
	v := Verifier{Secret: "mux-secret", Now: func() time.Time { return fixedNow }}

	if err := v.Verify(payload, Header(fixedNow.Unix(), payload, "mux-secret")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifier_Failures(t *testing.T) {
	payload := []byte(`{"type":"video.asset.ready"}`)
	v := Verifier{Secret: "mux-secret", Now: func() time.Time { return fixedNow }}

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"empty", "", ErrInvalidHeader},
		{"no signature", "t=" + strconv.FormatInt(fixedNow.Unix(), 10), ErrInvalidHeader},
		{"bad timestamp", "t=abc,v1=00", ErrInvalidHeader},
		{"wrong secret", Header(fixedNow.Unix(), payload, "other"), ErrNoValidSignature},
		{"stale", Header(fixedNow.Add(-time.Hour).Unix(), payload, "mux-secret"), ErrTimestampExpired},
		{"future", Header(fixedNow.Add(time.Hour).Unix(), payload, "mux-secret"), ErrTimestampExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := v.Verify(payload, tc.header); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestVerifier_TamperedPayload(t *testing.T) {
	v := Verifier{Secret: "s", Now: func() time.Time { return fixedNow }}
	h := Header(fixedNow.Unix(), []byte(`{"a":1}`), "s")
	if err := v.Verify([]byte(`{"a":2}`), h); !errors.Is(err, ErrNoValidSignature) {
		t.Fatalf("expected ErrNoValidSignature, got %v", err)
	}
}

func TestMessageVerifier(t *testing.T) {
	secret := "whsec_" + base64.StdEncoding.EncodeToString([]byte("identity-provider-secret"))
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	ts := strconv.FormatInt(fixedNow.Unix(), 10)

	sig, err := SignMessage("msg_1", fixedNow.Unix(), payload, secret)
	if err != nil {
		t.Fatal(err)
	}
	v := MessageVerifier{Secret: secret, Now: func() time.Time { return fixedNow }}

	if err := v.Verify(payload, "msg_1", ts, "v1,bogus v1,"+sig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Verify(payload, "msg_2", ts, "v1,"+sig); !errors.Is(err, ErrNoValidSignature) {
		t.Fatalf("expected ErrNoValidSignature for other id, got %v", err)
	}
	if err := v.Verify(payload, "msg_1", "", "v1,"+sig); !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("expected ErrInvalidHeader, got %v", err)
	}
	old := strconv.FormatInt(fixedNow.Add(-10*time.Minute).Unix(), 10)
	if err := v.Verify(payload, "msg_1", old, "v1,"+sig); !errors.Is(err, ErrTimestampExpired) {
		t.Fatalf("expected ErrTimestampExpired, got %v", err)
	}
}
