package core

import "errors"

var (
	// ErrChannelNotFound means no channel carries the requested name.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrNotMember means the user has not joined the channel it is
	// trying to activate.
	ErrNotMember = errors.New("not a member of channel")
	// ErrUnknownUser means the user id is not registered in the store.
	ErrUnknownUser = errors.New("unknown user")
)
