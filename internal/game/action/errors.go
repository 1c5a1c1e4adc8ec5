package action

import "errors"

var (
	// ErrBadRequest is returned for a request missing its target fields.
	ErrBadRequest = errors.New("malformed action request")
	// ErrNoBasicAttack is returned for an attack request by an actor without a basic attack.
	ErrNoBasicAttack = errors.New("no basic attack in kit")
	// ErrStopped is the abort reason of an explicit stop request.
	ErrStopped = errors.New("stopped")
	// ErrSuperseded is the abort reason when a newer request replaces the current action.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrInterrupted is the generic abort reason.
	ErrInterrupted = errors.New("interrupted")
)
