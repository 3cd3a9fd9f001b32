package game

import "errors"

// Error kinds returned by session operations. Handlers map these to HTTP
// status codes with errors.Is; none of them terminate the session.
var (
	// ErrNotFound marks an unknown session or player.
	ErrNotFound = errors.New("not found")

	// ErrNotYourTurn marks an action attempted by a non-active participant.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrInvalidSelection marks an empty or unmatched card selection, or an
	// otherwise malformed request payload.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrState marks an action the current phase or resources disallow,
	// e.g. no discards remaining or a match that is not full yet.
	ErrState = errors.New("invalid state")

	// ErrInsufficientGold marks a purchase the player cannot afford.
	ErrInsufficientGold = errors.New("insufficient gold")
)
