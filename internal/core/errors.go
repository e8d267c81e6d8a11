package core

import "errors"

var (
	// ErrNotFound marks a lookup for a missing user, agent, conversation or
	// moment. Callers map it to their own "missing resource" condition.
	ErrNotFound = errors.New("resource not found")

	// ErrUpstreamModel marks a failed model call. It is the only hard failure
	// a chat turn can surface; the caller may retry the whole turn.
	ErrUpstreamModel = errors.New("upstream model call failed")

	// ErrInvalidTransition marks confirm/cancel on a moment whose state does
	// not admit the operation (completed, or confirm on cancelled).
	ErrInvalidTransition = errors.New("invalid status transition")
)
