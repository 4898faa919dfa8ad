package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrOperationFailed matches every failed API call: non-2xx status or transport failure.
	ErrOperationFailed = errors.New("operation failed")

	// ErrMalformedResponse matches a 2xx response whose body did not have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)

// OperationError is returned when the server answers with a non-success status or
// cannot be reached. It deliberately carries no status code or response body.
type OperationError struct {
	Op     string
	status int
	cause  error
}

func (e *OperationError) Error() string {
	return "failed to " + e.Op
}

// Is reports whether target is ErrOperationFailed.
func (e *OperationError) Is(target error) bool {
	return target == ErrOperationFailed
}

func (e *OperationError) Unwrap() error {
	return e.cause
}

// MalformedError is returned when a successful response fails decoding or validation.
type MalformedError struct {
	Op  string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("failed to %s: malformed response: %v", e.Op, e.Err)
}

// Is reports whether target is ErrMalformedResponse.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedResponse
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// IsOperationFailed returns true if err is a failed API call.
func IsOperationFailed(err error) bool {
	return errors.Is(err, ErrOperationFailed)
}

// IsMalformed returns true if err is a malformed response.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}
