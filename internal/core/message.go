package core

import "time"

// MaxMessageBytes bounds the size of a chat message body.
const MaxMessageBytes = 4096

// Message is the domain model for a chat message. SenderName is the
// display name captured at send time; it does not track later renames.
type Message struct {
	ID         int64
	SessionID  string
	SenderID   string
	SenderName string
	Text       string
	CreatedAt  time.Time
}
