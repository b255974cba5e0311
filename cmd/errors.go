package cmd

import "github.com/aaearon/authlive/internal/authenticator"

// userError prints as the message shown in the interactive screen while
// still matching the underlying error with errors.Is.
type userError struct {
	err error
}

func (e *userError) Error() string {
	return authenticator.Message(e.err)
}

func (e *userError) Unwrap() error {
	return e.err
}

func asUserError(err error) error {
	if err == nil {
		return nil
	}
	return &userError{err: err}
}
