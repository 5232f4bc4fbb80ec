package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRates means the store holds no rate records at all.
	ErrNoRates = errors.New("no rates recorded")
	// ErrRateNotFound means no rate row exists for a (date, currency) pair.
	ErrRateNotFound = errors.New("rate not found")
)

// InputError is a client-caused failure: a malformed or out-of-domain request
// parameter. Handlers map it to a 400; everything else is a 500.
type InputError struct {
	msg string
}

func (e *InputError) Error() string {
	return e.msg
}

func NewInputError(format string, args ...any) *InputError {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}

func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
