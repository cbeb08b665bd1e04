package flag

import (
	"fmt"
	"strings"
)

// ConflictMessage is reported when more than one automation flag is given.
const ConflictMessage = "Only one automation flag (--auto, --mock-yes, --mock-no) may be specified at a time"

// UsageError reports a malformed command line, such as a missing image.
type UsageError struct {
	Msg string
	Err error
}

func (e *UsageError) Error() string {
	if e.Err != nil && e.Msg != "" {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// ConflictError reports that mutually exclusive automation flags were combined.
type ConflictError struct {
	Flags []string
}

func (e *ConflictError) Error() string {
	return ConflictMessage
}

// Detail lists the offending flags, e.g. "--auto, --mock-yes".
func (e *ConflictError) Detail() string {
	return strings.Join(e.Flags, ", ")
}
