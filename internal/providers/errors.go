package providers

import "errors"

type authError struct {
	provider string
	message  string
	err      error
}

func (e *authError) Error() string {
	return "authentication error (" + e.provider + "): " + e.message
}

func (e *authError) Unwrap() error { return e.err }

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}
