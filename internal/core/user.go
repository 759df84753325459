package core

// UserID identifies a logged-in user for the lifetime of its connection.
// IDs are allocated from a monotonic counter and never reused.
type UserID uint64

// User is a chat participant created at login and discarded on disconnect.
// Usernames are display-only and not required to be unique.
type User struct {
	ID       UserID
	Username string
}

// Conn is the outbound half of a client connection as the store sees it.
// Implementations must serialize their own writes; the store never writes
// while holding its lock.
type Conn interface {
	WriteLine(line string) error
	Close() error
}
