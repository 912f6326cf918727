package universe

import "errors"

var (
	//ErrOutOfRange is returned when a coordinate is outside the grid dimensions
	ErrOutOfRange = errors.New("coordinates out of range")
	//ErrInvalidSize is returned when a grid dimension is less than one
	ErrInvalidSize = errors.New("invalid grid size")
	//ErrMalformedData is returned when a serialized grid cannot be decoded
	ErrMalformedData = errors.New("malformed grid data")
	//ErrPlaying is returned by the Universe when an operation needs the player to be stopped
	ErrPlaying = errors.New("universe is playing")
)
