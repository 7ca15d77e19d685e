// Package signing verifies signed webhook deliveries from the hosted video
// pipeline and the identity provider.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance bounds the age of a signed delivery.
const DefaultTolerance = 5 * time.Minute

var (
	ErrInvalidHeader    = errors.New("signing: invalid signature header")
	ErrNoValidSignature = errors.New("signing: no valid signature found")
	ErrTimestampExpired = errors.New("signing: timestamp outside tolerance")
)

// Verifier checks "t=<unix>,v1=<hex hmac>" headers where the MAC covers
// "<t>.<payload>".
type Verifier struct {
	Secret    string
	Tolerance time.Duration
	Now       func() time.Time
}

func (v Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Verify returns nil when one of the v1 signatures matches.
func (v Verifier) Verify(payload []byte, header string) error {
	ts, sigs, err := parseHeader(header)
	if err != nil {
		return err
	}
	if err := checkTolerance(v.now(), time.Unix(ts, 0), v.Tolerance); err != nil {
		return err
	}
	expected := Sign(ts, payload, v.Secret)
	for _, sig := range sigs {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrNoValidSignature
}

// Sign computes the v1 signature for a payload sent at unix time ts.
func Sign(ts int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d", ts)
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Header renders a signature header for ts and payload. Used by tests and
// local tooling that replays deliveries.
func Header(ts int64, payload []byte, secret string) string {
	return "t=" + strconv.FormatInt(ts, 10) + ",v1=" + Sign(ts, payload, secret)
}

func parseHeader(header string) (int64, []string, error) {
	if strings.TrimSpace(header) == "" {
		return 0, nil, ErrInvalidHeader
	}
	var ts int64
	var sigs []string
	for _, pair := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			n, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidHeader
			}
			ts = n
		case "v1":
			sigs = append(sigs, kv[1])
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return 0, nil, ErrInvalidHeader
	}
	return ts, sigs, nil
}

func checkTolerance(now, sent time.Time, tolerance time.Duration) error {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	diff := now.Sub(sent)
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return ErrTimestampExpired
	}
	return nil
}

// MessageVerifier checks identity-provider deliveries signed with the
// "<id>.<timestamp>.<payload>" scheme: the signature header holds
// space-separated "v1,<base64 hmac>" entries and the secret is base64, with
// an optional "whsec_" prefix.
type MessageVerifier struct {
	Secret    string
	Tolerance time.Duration
	Now       func() time.Time
}

// Verify checks one delivery. id and timestamp come from their own headers.
func (v MessageVerifier) Verify(payload []byte, id, timestamp, signatures string) error {
	if id == "" || timestamp == "" || signatures == "" {
		return ErrInvalidHeader
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidHeader
	}
	now := time.Now()
	if v.Now != nil {
		now = v.Now()
	}
	if err := checkTolerance(now, time.Unix(ts, 0), v.Tolerance); err != nil {
		return err
	}
	expected, err := SignMessage(id, ts, payload, v.Secret)
	if err != nil {
		return err
	}
	for _, entry := range strings.Fields(signatures) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrNoValidSignature
}

// SignMessage computes the base64 v1 signature of one delivery.
func SignMessage(id string, ts int64, payload []byte, secret string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return "", fmt.Errorf("signing: decode secret: %w", err)
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
