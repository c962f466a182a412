package evaluation

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when original and embedded data disagree on N
	ErrLengthMismatch = errors.New("sample count mismatch between spaces")

	// ErrNonFinite is returned when the input contains NaN or Inf values
	ErrNonFinite = errors.New("input contains non-finite values")

	// ErrUndefined is returned when a metric is numerically undefined
	ErrUndefined = errors.New("metric undefined for input")

	// ErrNotComputed is returned when a metric's prerequisite is unavailable
	ErrNotComputed = errors.New("prerequisite structure not computed")
)

// EvalError represents an evaluation-specific error with context
type EvalError struct {
	Op      string // Operation that failed
	Err     error  // Underlying error
	Context string // Additional context
}

func (e *EvalError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Context)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// NewEvalError creates a new EvalError
func NewEvalError(op string, err error, context string) error {
	return &EvalError{
		Op:      op,
		Err:     err,
		Context: context,
	}
}

// IsUndefined checks if an error marks a numerically undefined metric
func IsUndefined(err error) bool {
	return errors.Is(err, ErrUndefined)
}

// IsFatal checks if an error should abort the whole evaluation call
func IsFatal(err error) bool {
	return errors.Is(err, ErrLengthMismatch) || errors.Is(err, ErrNonFinite)
}
