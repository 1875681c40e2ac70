package models

import "errors"

// Business errors surfaced to the client with a 400. Everything else that
// bubbles out of a controller transaction is an internal error.
var (
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidMillingRatio = errors.New("output rice cannot exceed input paddy")
	ErrUntrackedParty      = errors.New("party does not track inventory")
	ErrAlreadyReverted     = errors.New("record already reverted")
	ErrNotReversible       = errors.New("record cannot be reverted")
	ErrUnknownRole         = errors.New("unknown party role")
)
