package engine

import (
	"errors"
	"fmt"
)

// RuntimeError is an engine failure with a stable code.
//
// Contract violations by the caller (advancing before a load, an unknown
// event, a bad switch direction, no playhead to act on) are returned as
// RuntimeError. Traversal failures are not returned; they are recorded on
// the playhead's last step and message log with the codes below.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Playhead identifies the affected playhead, when there is one.
	Playhead string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeNotLoaded indicates an operation before a successful Load.
	ErrCodeNotLoaded RuntimeErrorCode = "NOT_LOADED"

	// ErrCodeNoPlayhead indicates there is no playhead to act on.
	ErrCodeNoPlayhead RuntimeErrorCode = "NO_PLAYHEAD"

	// ErrCodeUnknownEvent indicates an advance event other than
	// song_ended or skip_forward.
	ErrCodeUnknownEvent RuntimeErrorCode = "UNKNOWN_EVENT"

	// ErrCodeBadDirection indicates a switch direction other than +1 or -1.
	ErrCodeBadDirection RuntimeErrorCode = "BAD_DIRECTION"

	// ErrCodeTraversalLimit indicates edge traversal hit its step cap.
	ErrCodeTraversalLimit RuntimeErrorCode = "TRAVERSAL_LIMIT"

	// ErrCodeNoEligibleEdge indicates a node with no traversable edge.
	ErrCodeNoEligibleEdge RuntimeErrorCode = "NO_ELIGIBLE_EDGE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Playhead != "" {
		return fmt.Sprintf("%s: %s (playhead=%s)", e.Code, e.Message, e.Playhead)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is a RuntimeError with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsContractError returns true for errors caused by caller misuse rather
// than by the loaded data.
func IsContractError(err error) bool {
	var re *RuntimeError
	if !errors.As(err, &re) {
		return false
	}
	switch re.Code {
	case ErrCodeNotLoaded, ErrCodeNoPlayhead, ErrCodeUnknownEvent, ErrCodeBadDirection:
		return true
	}
	return false
}

func errNotLoaded(op string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeNotLoaded,
		Message: op + " called before a playtree was loaded",
	}
}

func errNoPlayhead(op string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeNoPlayhead,
		Message: op + " needs a playhead but the loaded playtree has none",
	}
}

func errUnknownEvent(ev Event) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownEvent,
		Message: fmt.Sprintf("unknown advance event %q", string(ev)),
	}
}

func errBadDirection(d Direction) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeBadDirection,
		Message: fmt.Sprintf("switch direction must be +1 or -1, got %d", int(d)),
		Details: map[string]string{"direction": fmt.Sprintf("%d", int(d))},
	}
}

func errNoEligibleEdge(playhead, node string) *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeNoEligibleEdge,
		Message:  fmt.Sprintf("node %q has no eligible outgoing edge", node),
		Playhead: playhead,
		Details:  map[string]string{"node": node},
	}
}
