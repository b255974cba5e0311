package totp

import "errors"

// ErrInvalidSecret is returned when a secret fails Base32 decoding.
var ErrInvalidSecret = errors.New("invalid secret")
