package extract

import (
	"errors"
	"fmt"
)

// Reason classifies why an extraction stage failed.
type Reason string

const (
	ReasonFileNotFound     Reason = "file_not_found"
	ReasonInvalidOrCorrupt Reason = "invalid_or_corrupt"
	ReasonTooLarge         Reason = "too_large"
	ReasonUnknown          Reason = "unknown"
)

// Error is an extraction failure carrying the reason code and the
// offending path for diagnostics.
type Error struct {
	Reason Reason
	Path   string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an extraction error for a path.
func NewError(reason Reason, path, msg string, err error) *Error {
	return &Error{Reason: reason, Path: path, Msg: msg, Err: err}
}

// ReasonOf extracts the reason code from an error, defaulting to unknown.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonUnknown
}
