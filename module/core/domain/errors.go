package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Structural misuse of the state machine. Fatal to the single call,
// never retried automatically.
var (
	ErrVisitNotFound     = errors.New("visit not found")
	ErrActivityNotFound  = errors.New("activity not found")
	ErrInvalidTransition = errors.New("invalid transition")
)

// Recoverable conditions: the caller fixes the precondition or payload
// and retries the same transition.
var (
	ErrMandatoryActivitiesIncomplete = errors.New("all mandatory activities must be completed before finishing visit")
	ErrLocationUnavailable           = errors.New("no location available")
)

// InvalidCoordinatesError reports a malformed or out-of-range lat/lon.
// Coordinates are never silently clamped.
type InvalidCoordinatesError struct {
	Who string // "agent" or "customer"
}

func (e *InvalidCoordinatesError) Error() string {
	return fmt.Sprintf("invalid %s coordinates", e.Who)
}

// RequirementsUnmetError lists preconditions blocking startActivity.
type RequirementsUnmetError struct {
	Missing []string
}

func (e *RequirementsUnmetError) Error() string {
	return "unmet requirements: " + strings.Join(e.Missing, ", ")
}

// InvalidActivityDataError lists payload validation failures from
// completeActivity.
type InvalidActivityDataError struct {
	Errors []string
}

func (e *InvalidActivityDataError) Error() string {
	return "invalid activity data: " + strings.Join(e.Errors, ", ")
}
