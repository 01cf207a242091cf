package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const separator = "."

// Result is the outcome of verifying a token. Only Valid grants access.
type Result int

const (
	// Malformed means the token or secret is structurally unusable.
	Malformed Result = iota
	// Invalid means the token is well formed but the signature does not match.
	Invalid
	// Valid means the signature matches the current secret.
	Valid
)

func (r Result) String() string {
	switch r {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "malformed"
	}
}

// OK reports whether the result grants access.
func (r Result) OK() bool {
	return r == Valid
}

// Codec issues and verifies session tokens for a single secret.
// It is immutable after construction and safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the clock used for issuance timestamps (for tests).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec returns a codec signing with secret.
func NewCodec(secret string, opts ...Option) *Codec {
	c := &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue returns a new token "<issued_at>.<hex signature>" where issued_at is
// the current time in milliseconds since the epoch.
func (c *Codec) Issue() string {
	issuedAt := strconv.FormatInt(c.now().UnixMilli(), 10)
	return issuedAt + separator + sign(c.secret, issuedAt)
}

// Verify checks token against the codec's secret.
func (c *Codec) Verify(token string) Result {
	return verify(token, c.secret)
}

// Verify checks token against secret. It never panics; every structural
// problem is reported as Malformed.
func Verify(token, secret string) Result {
	return verify(token, []byte(secret))
}

func verify(token string, secret []byte) Result {
	if len(secret) == 0 || token == "" {
		return Malformed
	}
	parts := strings.Split(token, separator)
	if len(parts) != 2 {
		return Malformed
	}
	issuedAt, signature := parts[0], parts[1]
	if issuedAt == "" || signature == "" {
		return Malformed
	}

	// Both sides are reduced to fixed-size digests so the comparison below
	// never short-circuits on a length difference.
	got := sha256.Sum256([]byte(signature))
	want := sha256.Sum256([]byte(sign(secret, issuedAt)))
	if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
		return Invalid
	}
	return Valid
}

// IssuedAt extracts the issuance time of a token without verifying it.
// It is informational only; access decisions never depend on it.
func IssuedAt(token string) (time.Time, bool) {
	issuedAt, _, found := strings.Cut(token, separator)
	if !found {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(issuedAt, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func sign(secret []byte, message string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
