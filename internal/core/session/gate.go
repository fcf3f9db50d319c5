package session

import "github.com/neilberkman/ragchat/internal/core/models"

// Gate is the upload gate of a chat session
type Gate int

const (
	// Blocked: no file is attached and no file hint was given; chatting is disabled
	Blocked Gate = iota
	// Ready: at least one file is attached, or a file hint is present
	Ready
)

func (g Gate) String() string {
	if g == Ready {
		return "ready"
	}
	return "blocked"
}

// DeriveGate is the single source of truth for the upload gate. It is a pure
// function of the active list, the stored list for the session and the hint.
func DeriveGate(active, stored []models.Attachment, hint string) Gate {
	if len(active) == 0 && len(stored) == 0 && hint == "" {
		return Blocked
	}
	return Ready
}
