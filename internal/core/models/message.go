package models

import "time"

// Role identifies who authored a chat message
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one entry in a chat conversation. Messages are append-only:
// once created their content and timestamp never change.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
}

// Clock returns the hour:minute rendering shown next to a message
func (m Message) Clock() string {
	return m.Timestamp.Format("15:04")
}
