package core

import (
	"fmt"
	"time"
)

// delivery is one snapshotted recipient write, taken under the lock and
// performed after release.
type delivery struct {
	conn Conn
	line string
}

// Broadcast routes text to every channel the author is currently active in.
// Under the lock it appends the message to each such channel's log and
// snapshots the connection handles of the channels' active members; the
// actual writes happen after the lock is released. The author is not
// excluded: an author active in a targeted channel receives its own message
// back. A user active in more than one targeted channel receives one line
// per channel.
//
// Returns the number of channels the message was routed to; zero means the
// author is active nowhere and nothing was logged or sent. Per-recipient
// write failures are contained: the recipient is skipped and its own session
// will notice the dead socket and clean up.
func (s *State) Broadcast(author UserID, text string) (int, error) {
	s.mu.Lock()

	u, ok := s.users[author]
	if !ok {
		s.mu.Unlock()
		return 0, ErrUnknownUser
	}
	line := fmt.Sprintf("%s: %s", u.Username, text)

	channels := 0
	var deliveries []delivery
	for _, ch := range s.channels {
		if !ch.isActive(author) {
			continue
		}
		channels++
		s.messages[ch.ID] = append(s.messages[ch.ID], Message{
			AuthorID:  author,
			Text:      text,
			CreatedAt: time.Now(),
		})
		for member := range ch.active {
			if conn, connected := s.conns[member]; connected {
				deliveries = append(deliveries, delivery{conn: conn, line: line})
			}
		}
	}
	s.mu.Unlock()

	for _, d := range deliveries {
		// Errors are the recipient's problem, never the sender's.
		_ = d.conn.WriteLine(d.line)
	}
	return channels, nil
}
