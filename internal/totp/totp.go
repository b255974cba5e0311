// Package totp generates time-based one-time passwords from a Base32 secret.
package totp

import (
	"encoding/base32"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Params is the fixed TOTP configuration. It is not user-configurable and is
// never taken from a scanned otpauth URI.
type Params struct {
	Algorithm otp.Algorithm
	Digits    otp.Digits
	Period    uint
}

// DefaultParams is SHA1, 6 digits, 30 second period.
var DefaultParams = Params{
	Algorithm: otp.AlgorithmSHA1,
	Digits:    otp.DigitsSix,
	Period:    30,
}

// Token is a generated code. The zero value means no token is available.
type Token string

// NoToken is the absent token.
const NoToken Token = ""

// Absent reports whether no token is available.
func (t Token) Absent() bool {
	return t == NoToken
}

// Format splits the code in two halves for display ("123 456"). An absent
// token renders as dashes.
func (t Token) Format() string {
	if t.Absent() {
		return strings.Repeat("-", DefaultParams.Digits.Length())
	}
	s := string(t)
	half := len(s) / 2
	return s[:half] + " " + s[half:]
}

// Normalize strips all whitespace from a secret and upper-cases it.
func Normalize(secret string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, secret))
}

// Decode validates a normalized secret as RFC 4648 Base32. Missing padding is
// tolerated.
func Decode(secret string) ([]byte, error) {
	if n := len(secret) % 8; n != 0 {
		secret += strings.Repeat("=", 8-n)
	}
	key, err := base32.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	if len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

// Engine produces tokens for the current wall-clock time.
type Engine struct {
	params Params
	now    func() time.Time // injectable clock for testing
}

// NewEngine creates an Engine using DefaultParams and the system clock.
func NewEngine() *Engine {
	return &Engine{params: DefaultParams, now: time.Now}
}

// NewEngineWithClock creates an Engine reading time from now.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{params: DefaultParams, now: now}
}

// Params returns the engine's fixed parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Generate returns the token for secret at the current time. An empty secret
// yields NoToken and no error. A malformed secret yields ErrInvalidSecret.
// Nothing is cached; every call reads the clock.
func (e *Engine) Generate(secret string) (Token, error) {
	return e.GenerateAt(secret, e.now())
}

// GenerateAt returns the token for secret at t.
func (e *Engine) GenerateAt(secret string, t time.Time) (Token, error) {
	secret = Normalize(secret)
	if secret == "" {
		return NoToken, nil
	}
	if _, err := Decode(secret); err != nil {
		return NoToken, err
	}

	code, err := totp.GenerateCodeCustom(secret, t, totp.ValidateOpts{
		Period:    e.params.Period,
		Digits:    e.params.Digits,
		Algorithm: e.params.Algorithm,
	})
	if err != nil {
		return NoToken, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return Token(code), nil
}

// Remaining returns the whole seconds left in the period containing t, in
// [1, period]. It is derived from absolute wall-clock time.
func Remaining(t time.Time, period uint) int {
	p := int64(period)
	elapsed := t.Unix()
	return int(p - ((elapsed%p)+p)%p)
}
