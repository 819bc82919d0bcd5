package app

import "errors"

var (
	ErrNameTaken        = errors.New("name already taken in this room")
	ErrNotInRoom        = errors.New("not in a room")
	ErrAlreadyJoined    = errors.New("already in a room")
	ErrInvalidRoom      = errors.New("room cannot be empty")
	ErrTransportFailure = errors.New("transport failure")
)
