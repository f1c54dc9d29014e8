// Package game holds the bowling rules: roll validation, frame scoring and
// the game lifecycle. Everything here is pure; callers own persistence.
package game

import "errors"

var (
	ErrInvalidRoll     = errors.New("invalid roll")
	ErrSlotDisabled    = errors.New("roll slot not available")
	ErrOutOfRange      = errors.New("frame or roll index out of range")
	ErrFrameOrder      = errors.New("earlier frame not complete")
	ErrNotWaiting      = errors.New("game is not waiting for players")
	ErrNotInProgress   = errors.New("game is not in progress")
	ErrGameCompleted   = errors.New("game already completed")
	ErrDuplicatePlayer = errors.New("player already in game")
	ErrPlayerNotFound  = errors.New("player not in game")
	ErrNoPlayers       = errors.New("at least one player required")
	ErrInvalidPlayer   = errors.New("player id required")
	ErrUnknownCommand  = errors.New("unknown command")
)

// IsRejection reports whether err is a rules refusal rather than an I/O failure.
func IsRejection(err error) bool {
	return IsRollRejection(err) || IsLifecycleRejection(err)
}

// IsRollRejection reports refusals produced by roll validation.
func IsRollRejection(err error) bool {
	return errors.Is(err, ErrInvalidRoll) ||
		errors.Is(err, ErrSlotDisabled) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrFrameOrder)
}

// IsLifecycleRejection reports refusals produced by the state machine.
func IsLifecycleRejection(err error) bool {
	return errors.Is(err, ErrNotWaiting) ||
		errors.Is(err, ErrNotInProgress) ||
		errors.Is(err, ErrGameCompleted) ||
		errors.Is(err, ErrDuplicatePlayer) ||
		errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrNoPlayers) ||
		errors.Is(err, ErrInvalidPlayer) ||
		errors.Is(err, ErrUnknownCommand)
}
