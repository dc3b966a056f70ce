package ai

import (
	"errors"
	"fmt"
)

// Kind classifies why an AI call produced no usable value.
type Kind string

const (
	// KindProvider means the completion request itself failed.
	KindProvider Kind = "provider"
	// KindMalformed means the response held the expected shape but it did not parse.
	KindMalformed Kind = "malformed"
	// KindNoMatch means the response held no JSON value or digits at all.
	KindNoMatch Kind = "no_match"
)

// Error is returned by every Client operation alongside the zero fallback value.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ai %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("ai %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of an *Error in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return ""
}
