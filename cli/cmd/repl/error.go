package repl

import "errors"

// Sentinel errors.
var (
	ErrOutOfBounds  = errors.New("index out of range")
	ErrEditDeclined = errors.New("decline edit")
	ErrNoRunfile    = errors.New("no Runfile loaded")
	ErrNoSession    = errors.New("no session")
)
