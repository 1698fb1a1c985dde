package feedstub

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/feedupload/internal/common"
	"github.com/dmitrijs2005/feedupload/internal/feed"
)

// Store keeps records and uploaded objects in memory.
type Store struct {
	mu      sync.RWMutex
	records map[string]feed.Record
	objects map[string][]byte
}

func NewStore() *Store {
	return &Store{
		records: make(map[string]feed.Record),
		objects: make(map[string][]byte),
	}
}

// CreateRecord stores a new record and returns its ID.
func (s *Store) CreateRecord(title, status string) feed.Record {
	r := feed.Record{ID: feed.ID(uuid.NewString()), Title: title, Status: status}

	s.mu.Lock()
	s.records[string(r.ID)] = r
	s.mu.Unlock()
	return r
}

func (s *Store) Record(id string) (feed.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return feed.Record{}, common.ErrorNotFound
	}
	return r, nil
}

// UpdateRecord replaces title, status and attachment of an existing record.
func (s *Store) UpdateRecord(id, title, status string, a *feed.Attachment) (feed.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return feed.Record{}, common.ErrorNotFound
	}
	r.Title = title
	r.Status = status
	if a != nil {
		cp := *a
		r.Attachment = &cp
	}
	s.records[id] = r
	return r, nil
}

func (s *Store) Records() []feed.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]feed.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out
}

func (s *Store) PutObject(key string, data []byte) {
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
}

func (s *Store) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	return b, ok
}
