package chartsync

import (
	"errors"
	"fmt"
)

const (
	CodeConfiguration        = "CONFIGURATION"
	CodeCoordinateResolution = "COORDINATE_RESOLUTION"
	CodeInvalidArgument      = "INVALID_ARGUMENT"
	CodeValidation           = "VALIDATION"
	CodeLayoutNotFound       = "LAYOUT_NOT_FOUND"
	CodePaneNotFound         = "PANE_NOT_FOUND"
	CodeSnapshotNotFound     = "SNAPSHOT_NOT_FOUND"
	CodeRenderFailure        = "RENDER_FAILURE"
	CodeBrowserUnavailable   = "BROWSER_UNAVAILABLE"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// NewError builds a CodedError.
func NewError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// HasCode reports whether err wraps a CodedError with the given code.
func HasCode(err error, code string) bool {
	var coded *CodedError
	return errors.As(err, &coded) && coded.Code == code
}

// IsConfiguration reports a bad or missing pane construction input.
func IsConfiguration(err error) bool { return HasCode(err, CodeConfiguration) }

// IsCoordinateResolution reports a projection that could not be resolved.
func IsCoordinateResolution(err error) bool { return HasCode(err, CodeCoordinateResolution) }

// IsInvalidArgument reports malformed synchronization input.
func IsInvalidArgument(err error) bool { return HasCode(err, CodeInvalidArgument) }
