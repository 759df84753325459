package core

import "time"

// Message is one chat message as appended to a channel log. Logs are
// append-only; append order, not CreatedAt, is authoritative for delivery
// order.
type Message struct {
	AuthorID  UserID
	Text      string
	CreatedAt time.Time
}
