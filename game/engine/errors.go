package engine

import "errors"

var (
	// ErrInvalidDirection is returned when a movement letter is not one of U, D, L, R.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrDuplicateOffice is returned when a map declares two offices with the same id.
	ErrDuplicateOffice = errors.New("duplicate office id")

	// ErrZeroLengthGatherer is returned when collision math is asked about a
	// gatherer whose start and end coincide.
	ErrZeroLengthGatherer = errors.New("gatherer segment has zero length")

	// ErrEmptyPlayerName is returned when a join request carries a blank name.
	ErrEmptyPlayerName = errors.New("player name is empty")

	// ErrMapNotFound is returned when a map id is not part of the world.
	ErrMapNotFound = errors.New("map not found")

	// ErrUnknownToken is returned when no player owns the presented token.
	ErrUnknownToken = errors.New("unknown token")
)
