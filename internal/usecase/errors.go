package usecase

import "errors"

// ValidationError is bad or missing caller input. Maps to 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// UpstreamError is a failed, timed out or malformed voice API call. Maps to 500.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func IsUpstreamError(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

// InternalFault is any other failure inside a use case, usually the store.
type InternalFault struct {
	Op  string
	Err error
}

func (e *InternalFault) Error() string {
	return "internal fault: " + e.Op + ": " + e.Err.Error()
}

func (e *InternalFault) Unwrap() error {
	return e.Err
}
