package scan

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aaearon/authlive/internal/totp"
)

// SchemeOTPAuth is the only accepted payload scheme.
const SchemeOTPAuth = "otpauth"

// Payload is what authlive keeps from a scanned otpauth URI.
type Payload struct {
	Secret string
	// Ignored lists parameters present in the URI that disagree with the
	// fixed TOTP configuration, as "key=value". They are not honored.
	Ignored []string
}

// ParseURI validates an otpauth URI and extracts its secret parameter, e.g.
// otpauth://totp/LABEL?secret=BASE32SECRET&issuer=...
func ParseURI(payload string) (Payload, error) {
	u, err := url.Parse(strings.TrimSpace(payload))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %w: %v", ErrInvalidQRFormat, ErrUnparsablePayload, err)
	}
	if u.Scheme == "" {
		return Payload{}, fmt.Errorf("%w: %w", ErrInvalidQRFormat, ErrUnparsablePayload)
	}
	if u.Scheme != SchemeOTPAuth {
		return Payload{}, fmt.Errorf("%w: scheme %q", ErrInvalidQRFormat, u.Scheme)
	}

	q, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %w: %v", ErrInvalidQRFormat, ErrUnparsablePayload, err)
	}
	secret := q.Get("secret")
	if secret == "" {
		return Payload{}, ErrMissingSecret
	}

	return Payload{Secret: secret, Ignored: ignoredParams(u.Host, q)}, nil
}

func ignoredParams(kind string, q url.Values) []string {
	var ignored []string
	if kind != "" && !strings.EqualFold(kind, "totp") {
		ignored = append(ignored, "type="+kind)
	}

	p := totp.DefaultParams
	if v := q.Get("algorithm"); v != "" && !strings.EqualFold(v, p.Algorithm.String()) {
		ignored = append(ignored, "algorithm="+v)
	}
	if v := q.Get("digits"); v != "" && v != strconv.Itoa(p.Digits.Length()) {
		ignored = append(ignored, "digits="+v)
	}
	if v := q.Get("period"); v != "" && v != strconv.FormatUint(uint64(p.Period), 10) {
		ignored = append(ignored, "period="+v)
	}
	return ignored
}
