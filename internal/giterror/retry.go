package giterror

import "fmt"

// RetryError records how many attempts were spent before giving up on a request.
type RetryError struct {
	Err         error
	Attempt     int
	MaxAttempts int
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("attempt %d/%d: %v", e.Attempt, e.MaxAttempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }

// WithRetryInfo annotates err with the attempt counter.
func WithRetryInfo(err error, attempt, maxAttempts int) error {
	if err == nil {
		return nil
	}
	return &RetryError{Err: err, Attempt: attempt, MaxAttempts: maxAttempts}
}

// ActionableError pairs an error with a hint for the operator.
type ActionableError struct {
	Err    error
	Action string
}

func (e *ActionableError) Error() string {
	return fmt.Sprintf("%v (%s)", e.Err, e.Action)
}

func (e *ActionableError) Unwrap() error { return e.Err }

// WithUserAction attaches an operator hint to err.
func WithUserAction(err error, action string) error {
	if err == nil {
		return nil
	}
	return &ActionableError{Err: err, Action: action}
}
