package core

import "fmt"

// ChannelID identifies a channel within the store.
type ChannelID uint64

// ChannelKind describes how a channel is meant to be used.
type ChannelKind int

const (
	// KindPublic is an open channel anyone may join.
	KindPublic ChannelKind = iota
	// KindGroupChat is a conversation between a fixed group.
	KindGroupChat
	// KindDirectMessage is a two-party conversation.
	KindDirectMessage
	// KindBroadcast is a one-to-many announcement channel.
	KindBroadcast
)

// String returns the lowercase name of the kind.
func (k ChannelKind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindGroupChat:
		return "groupchat"
	case KindDirectMessage:
		return "directmessage"
	case KindBroadcast:
		return "broadcast"
	default:
		return fmt.Sprintf("ChannelKind(%d)", int(k))
	}
}

// ParseChannelKind maps a config string onto a ChannelKind.
func ParseChannelKind(s string) (ChannelKind, error) {
	switch s {
	case "public":
		return KindPublic, nil
	case "groupchat":
		return KindGroupChat, nil
	case "directmessage":
		return KindDirectMessage, nil
	case "broadcast":
		return KindBroadcast, nil
	default:
		return 0, fmt.Errorf("unknown channel kind %q", s)
	}
}

// Channel is a named group with a stable membership list and a transient
// active subset. Members is ordered by join time and holds each user at most
// once; active is always a subset of members.
type Channel struct {
	ID      ChannelID
	Name    string
	Kind    ChannelKind
	Members []UserID
	active  map[UserID]struct{}
}

func newChannel(id ChannelID, name string, kind ChannelKind) *Channel {
	return &Channel{
		ID:     id,
		Name:   name,
		Kind:   kind,
		active: make(map[UserID]struct{}),
	}
}

func (c *Channel) isMember(id UserID) bool {
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return false
}

// addMember appends the user if absent. Returns true if newly added.
func (c *Channel) addMember(id UserID) bool {
	if c.isMember(id) {
		return false
	}
	c.Members = append(c.Members, id)
	return true
}

// removeMember drops the user from both the member list and the active set.
func (c *Channel) removeMember(id UserID) {
	for i, m := range c.Members {
		if m == id {
			c.Members = append(c.Members[:i], c.Members[i+1:]...)
			break
		}
	}
	delete(c.active, id)
}

func (c *Channel) isActive(id UserID) bool {
	_, ok := c.active[id]
	return ok
}
