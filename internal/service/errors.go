package service

import "errors"

// Business errors returned by the services. The HTTP layer maps each to
// a status code in one place.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrAuthenticationFailed = errors.New("invalid username or password")
	ErrRegistrationFailed   = errors.New("username already exists")
	ErrRoomNotFound         = errors.New("room not found")
	ErrInvalidRoomCode      = errors.New("invalid room code")
	ErrAlreadyMember        = errors.New("you are already a member of this room")
	ErrNotRoomMember        = errors.New("access denied to this room")
	ErrNotRoomOwner         = errors.New("only the room owner can delete this room")
	ErrOwnerCannotLeave     = errors.New("room owner cannot leave, delete the room instead")
	ErrItemNotFound         = errors.New("item not found")
	ErrInternalServer       = errors.New("internal server error")
)
