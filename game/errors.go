package game

import "errors"

var (
	ErrNotInRoom  = errors.New("not-in-room")
	ErrRoomClosed = errors.New("room-closed")
)
