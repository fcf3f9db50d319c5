package session

import (
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"
)

const (
	minSessionID = 100000
	maxSessionID = 999999

	// maxDraws bounds the redraws when a candidate id already has files
	maxDraws = 8
)

// NewSessionID draws a 6-digit session id in [100000, 999999].
//
// Ids are not confirmed by the backend and may collide across processes.
// When store is non-nil, ids that already hold files in this process are
// skipped, up to maxDraws attempts.
func NewSessionID(store FileStore) string {
	var id string
	for i := 0; i < maxDraws; i++ {
		id = strconv.Itoa(minSessionID + rand.IntN(maxSessionID-minSessionID+1))
		if store == nil {
			return id
		}
		if files, ok := store.Get(id); !ok || len(files) == 0 {
			return id
		}
	}
	return id
}

// NewMessageID returns a locally unique message identifier
func NewMessageID() string {
	return uuid.NewString()
}
