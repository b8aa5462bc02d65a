package results

import "errors"

var (
	ErrDuplicateSession = errors.New("session already recorded")
	ErrTooManyResults   = errors.New("more results than result slots")
	ErrHeaderMismatch   = errors.New("results file header does not match")
	ErrLocked           = errors.New("results file is locked")
	ErrUnknownDriver    = errors.New("unknown results driver")
)
