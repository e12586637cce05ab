package chain

import (
	"context"
	"errors"

	"token-casino/internal/retry"
)

// ClassifiedError wraps a remote failure with its retry class and a stable
// snake_case code. Classification happens once, here at the boundary; the
// core never inspects error message text.
type ClassifiedError struct {
	Class retry.Class
	Code  string
	Err   error
}

func (e *ClassifiedError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return e.Code + ": " + e.Err.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

func transientErr(code string, err error) error {
	return &ClassifiedError{Class: retry.Transient, Code: code, Err: err}
}

func fatalErr(code string, err error) error {
	return &ClassifiedError{Class: retry.Fatal, Code: code, Err: err}
}

func unknownErr(code string, err error) error {
	return &ClassifiedError{Class: retry.Unknown, Code: code, Err: err}
}

// Classify maps an error from a BalanceSource call to its retry class.
// Unwrapped errors default to transient; a cancelled caller context is fatal
// because retrying it cannot succeed.
func Classify(err error) retry.Class {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	if errors.Is(err, context.Canceled) {
		return retry.Fatal
	}
	return retry.Transient
}

// IsUnknown reports whether the call's remote outcome is indeterminate.
func IsUnknown(err error) bool {
	return Classify(err) == retry.Unknown
}
