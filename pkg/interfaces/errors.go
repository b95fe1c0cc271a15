package interfaces

import (
	"errors"
	"fmt"
)

// FunctionEvaluationError is returned when a template function cannot produce a
// result for the supplied arguments. Cause is the human-readable reason.
type FunctionEvaluationError struct {
	Function string
	Cause    string
	Err      error
}

func (e *FunctionEvaluationError) Error() string {
	cause := e.Cause
	if cause == "" && e.Err != nil {
		cause = e.Err.Error()
	}
	if cause == "" {
		cause = "evaluation failed"
	}
	if e.Function == "" {
		return "template function: " + cause
	}
	return fmt.Sprintf("template function %q: %s", e.Function, cause)
}

func (e *FunctionEvaluationError) Unwrap() error {
	return e.Err
}

// NewEvaluationError builds an evaluation error with a formatted cause.
func NewEvaluationError(function, format string, args ...any) *FunctionEvaluationError {
	return &FunctionEvaluationError{
		Function: function,
		Cause:    fmt.Sprintf(format, args...),
	}
}

// WrapEvaluationError converts err into an evaluation error attributed to
// function. Errors that already carry an evaluation error are returned as is,
// with the function name filled in when missing.
func WrapEvaluationError(function string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *FunctionEvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Function == "" {
			evalErr.Function = function
		}
		return err
	}
	return &FunctionEvaluationError{
		Function: function,
		Cause:    err.Error(),
		Err:      err,
	}
}

// IsEvaluationError reports whether err carries a FunctionEvaluationError.
func IsEvaluationError(err error) bool {
	var evalErr *FunctionEvaluationError
	return errors.As(err, &evalErr)
}
