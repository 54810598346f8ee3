package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrRoomNotFound  = errors.New("room not found")
	ErrNoRooms       = errors.New("no rooms exist")
	ErrAlreadyExists = errors.New("already exists")
	ErrNotOwner      = errors.New("user is not the owner")
	ErrNotMember     = errors.New("user not in the room")
)
