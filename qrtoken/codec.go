// Package qrtoken implements the signed, time-limited session token that
// is rendered as a QR code. A token binds a session ID to its issue time
// with an HMAC-SHA256 signature over "sessionID:issuedAtMillis".
package qrtoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultMaxAge bounds how long an issued token remains scannable.
const DefaultMaxAge = 10 * time.Minute

// ErrInvalidToken is returned for any malformed, tampered, or expired
// token. Callers get no detail about which check failed.
var ErrInvalidToken = errors.New("invalid or expired code")

const tokenParts = 3

// Codec issues and validates session tokens with a shared secret.
type Codec struct {
	secret  []byte
	maxAge  time.Duration
	nowTime func() time.Time
}

// Option modifies a Codec.
type Option func(*Codec)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

// WithMaxAge overrides the default token age limit.
func WithMaxAge(maxAge time.Duration) Option {
	return func(c *Codec) {
		c.maxAge = maxAge
	}
}

// New creates a Codec. The secret comes from deployment configuration and
// must not be empty.
func New(secret string, options ...Option) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("[qrtoken.New] signing secret is required")
	}

	codec := &Codec{
		secret:  []byte(secret),
		maxAge:  DefaultMaxAge,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(codec)
	}
	return codec, nil
}

// Issue returns a token of the form "sessionID:issuedAtMillis:signature".
func (c *Codec) Issue(sessionID string) string {
	issuedAt := c.nowTime().UnixMilli()
	data := sessionID + ":" + strconv.FormatInt(issuedAt, 10)
	return data + ":" + c.sign(data)
}

// Validate checks a token's structure, signature, and age. It returns the
// embedded session ID and issue time, or ErrInvalidToken for any failure.
func (c *Codec) Validate(token string) (string, time.Time, error) {
	parts := strings.Split(token, ":")
	if len(parts) != tokenParts {
		return "", time.Time{}, ErrInvalidToken
	}

	sessionID, timestampStr, signature := parts[0], parts[1], parts[2]
	issuedAtMillis, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}

	expected := c.sign(sessionID + ":" + timestampStr)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", time.Time{}, ErrInvalidToken
	}

	if c.nowTime().UnixMilli()-issuedAtMillis > c.maxAge.Milliseconds() {
		return "", time.Time{}, ErrInvalidToken
	}

	return sessionID, time.UnixMilli(issuedAtMillis), nil
}

func (c *Codec) sign(data string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
