package tcp

import "fmt"

// Exact server->client protocol lines. Clients match on these strings, so
// they are part of the external interface.
const (
	msgLoginRejected    = "expected: LOGIN - dropping connection. Please try again!"
	msgChannelList      = "Available channels: "
	msgChannelNotFound  = "Requested server not found."
	msgUnknownCommand   = "unknown command"
	msgNoActiveChannels = "you are not active in any channel."
)

const loginPrefix = "LOGIN "

func welcomeLine(username string) string {
	return fmt.Sprintf("Welcome, %s, you successfully logged in!", username)
}

func joinedLine(channel string) string {
	return fmt.Sprintf("you have successfully joined %s!", channel)
}

func mustJoinFirstLine(channel string) string {
	return fmt.Sprintf("you must join %s first!", channel)
}
