package board

import "errors"

// Sentinel errors callers can match with errors.Is.
var (
	// ErrInvalidFEN indicates a malformed FEN string.
	ErrInvalidFEN = errors.New("invalid FEN")

	// ErrNoPiece indicates a move whose source square holds no piece of
	// the side to move.
	ErrNoPiece = errors.New("no piece of the active color on source square")
)
