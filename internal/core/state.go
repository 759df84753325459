package core

import (
	"sort"
	"sync"
)

// State is the single shared aggregate of users, connections, channels and
// message logs. One coarse mutex guards every field; critical sections stay
// short and never touch the network. Socket writes happen on handles
// snapshotted under the lock and performed after release, so a stalled
// consumer can never block other sessions.
type State struct {
	mu            sync.Mutex
	nextUserID    UserID
	nextChannelID ChannelID
	users         map[UserID]*User
	conns         map[UserID]Conn
	channels      map[ChannelID]*Channel
	messages      map[ChannelID][]Message
}

// NewState returns an empty store.
func NewState() *State {
	return &State{
		nextUserID:    1,
		nextChannelID: 1,
		users:         make(map[UserID]*User),
		conns:         make(map[UserID]Conn),
		channels:      make(map[ChannelID]*Channel),
		messages:      make(map[ChannelID][]Message),
	}
}

// SeedChannel creates a channel with the next free id. Intended for the
// bootstrap path before the acceptor starts, but safe at any time.
func (s *State) SeedChannel(name string, kind ChannelKind) ChannelID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextChannelID
	s.nextChannelID++
	s.channels[id] = newChannel(id, name, kind)
	return id
}

// ChannelNames lists channel names ordered by channel id.
func (s *State) ChannelNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]ChannelID, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, s.channels[id].Name)
	}
	return names
}

// Register allocates the next user id and records the user together with its
// connection handle. A Conn entry exists for a user id iff that user is
// currently connected.
func (s *State) Register(username string, conn Conn) UserID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextUserID
	s.nextUserID++
	s.users[id] = &User{ID: id, Username: username}
	s.conns[id] = conn
	return id
}

// Unregister removes the user, its connection entry and its channel
// membership (active and member sets both; identity is the ephemeral numeric
// id, so membership does not outlive the session). The removed connection
// handle is returned so the caller can close it; nil if the id was not
// registered.
func (s *State) Unregister(id UserID) Conn {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.conns[id]
	if !ok {
		return nil
	}
	delete(s.conns, id)
	delete(s.users, id)
	for _, ch := range s.channels {
		ch.removeMember(id)
	}
	return conn
}

// Username reports the display name for a registered user id.
func (s *State) Username(id UserID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return "", false
	}
	return u.Username, true
}

// JoinChannel adds the user to the channel with the given exact name.
// Joining an already-joined channel is a no-op success. Joining does not
// activate; ACTIVE is a separate, explicit step.
func (s *State) JoinChannel(name string, id UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.channelByName(name)
	if ch == nil {
		return ErrChannelNotFound
	}
	ch.addMember(id)
	return nil
}

// SetActive marks the user active in the named channel. The user must
// already be a member; active membership is always a subset of membership.
func (s *State) SetActive(name string, id UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.channelByName(name)
	if ch == nil {
		return ErrChannelNotFound
	}
	if !ch.isMember(id) {
		return ErrNotMember
	}
	ch.active[id] = struct{}{}
	return nil
}

// SetInactive clears the user from the active set of every channel it
// belongs to. Membership itself is untouched.
func (s *State) SetInactive(id UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.channels {
		delete(ch.active, id)
	}
}

// channelByName does a linear scan; channel counts are small. Callers hold
// the lock.
func (s *State) channelByName(name string) *Channel {
	for _, ch := range s.channels {
		if ch.Name == name {
			return ch
		}
	}
	return nil
}

// MemberIDs returns a copy of a channel's member list, for tests and the
// stats surface.
func (s *State) MemberIDs(name string) ([]UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.channelByName(name)
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	out := make([]UserID, len(ch.Members))
	copy(out, ch.Members)
	return out, nil
}

// ChannelLog returns a copy of a channel's message log.
func (s *State) ChannelLog(name string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.channelByName(name)
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	out := make([]Message, len(s.messages[ch.ID]))
	copy(out, s.messages[ch.ID])
	return out, nil
}

// ChannelStats is a read-only snapshot of one channel for the stats surface.
type ChannelStats struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Members  int    `json:"members"`
	Active   int    `json:"active"`
	Messages int    `json:"messages"`
}

// Stats is a read-only snapshot of the whole store.
type Stats struct {
	Users    int            `json:"users"`
	Channels []ChannelStats `json:"channels"`
}

// Snapshot captures current counts under the lock. Purely informational; the
// snapshot may be stale by the time the caller renders it.
func (s *State) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Users: len(s.users)}

	ids := make([]ChannelID, 0, len(s.channels))
	for id := range s.channels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		ch := s.channels[id]
		st.Channels = append(st.Channels, ChannelStats{
			Name:     ch.Name,
			Kind:     ch.Kind.String(),
			Members:  len(ch.Members),
			Active:   len(ch.active),
			Messages: len(s.messages[id]),
		})
	}
	return st
}
