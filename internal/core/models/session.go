package models

import (
	"errors"
	"strings"
)

// Session identifies one chat conversation with the backend
type Session struct {
	ID       string // Opaque id used in the backend path /chat/{id}
	FileHint string // Optional file name carried over from navigation; display only
}

// Validate checks if the session id can be used as a single path segment
func (s *Session) Validate() error {
	if s.ID == "" {
		return errors.New("session id is required")
	}
	if strings.ContainsAny(s.ID, "/?#") {
		return errors.New("session id must be a single path segment")
	}
	return nil
}

// ShortID returns the first 8 characters of the id for headers
func (s *Session) ShortID() string {
	if r := []rune(s.ID); len(r) > 8 {
		return string(r[:8])
	}
	return s.ID
}
