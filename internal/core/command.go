package core

import "strings"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin subscribes the caller to a channel by name.
	CommandJoin CommandKind = iota
	// CommandActive marks the caller active in a joined channel.
	CommandActive
	// CommandInactive clears the caller from every active set.
	CommandInactive
	// CommandMessage routes text to the caller's active channels.
	CommandMessage
	// CommandQuit ends the session gracefully.
	CommandQuit
	// CommandUnknown is anything the parser does not recognize.
	CommandUnknown
)

// Command is one parsed protocol line.
type Command struct {
	Kind    CommandKind
	Channel string
	Text    string
}

// ParseCommand turns a raw protocol line into a Command. It is a pure
// function: no I/O, no state. Trailing CR/LF is stripped before matching.
func ParseCommand(line string) Command {
	line = strings.TrimRight(line, "\r\n")

	if name, ok := strings.CutPrefix(line, "JOIN "); ok {
		return Command{Kind: CommandJoin, Channel: name}
	}
	if text, ok := strings.CutPrefix(line, "MESSAGE "); ok {
		return Command{Kind: CommandMessage, Text: text}
	}
	if name, ok := strings.CutPrefix(line, "ACTIVE "); ok {
		return Command{Kind: CommandActive, Channel: name}
	}
	if line == "INACTIVE" {
		return Command{Kind: CommandInactive}
	}
	if line == "QUIT" {
		return Command{Kind: CommandQuit}
	}
	return Command{Kind: CommandUnknown}
}
