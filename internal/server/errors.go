package server

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomFull     = errors.New("room is full")
	ErrSeatTaken    = errors.New("player id already seated and connected")
	ErrNotSeated    = errors.New("player is not seated in this room")
	ErrRoomHalted   = errors.New("room halted after a voided hand")
)
