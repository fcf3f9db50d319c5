package session

import (
	"github.com/neilberkman/ragchat/internal/core/models"
	"github.com/patrickmn/go-cache"
)

// FileStore keeps the attachments of each session by session id so that
// reopening a session restores its files.
type FileStore interface {
	Get(sessionID string) ([]models.Attachment, bool)
	Set(sessionID string, files []models.Attachment)
	Delete(sessionID string)
}

// MemoryStore is a process-lifetime FileStore. Entries never expire.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// Get returns a copy of the files stored for sessionID
func (s *MemoryStore) Get(sessionID string) ([]models.Attachment, bool) {
	x, found := s.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	files := x.([]models.Attachment)
	return append([]models.Attachment(nil), files...), true
}

// Set replaces the entry for sessionID. An empty list deletes the entry.
func (s *MemoryStore) Set(sessionID string, files []models.Attachment) {
	if len(files) == 0 {
		s.cache.Delete(sessionID)
		return
	}
	s.cache.Set(sessionID, append([]models.Attachment(nil), files...), cache.NoExpiration)
}

func (s *MemoryStore) Delete(sessionID string) {
	s.cache.Delete(sessionID)
}
