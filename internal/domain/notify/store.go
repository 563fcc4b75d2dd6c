package notify

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Store keeps the current notification per id
type Store interface {
	Put(n Notification)
	Get(id uint32) (Notification, bool)
	List() []Notification
}

// MemoryStore is a synchronized in-process Store that fans out updates
type MemoryStore struct {
	mu       sync.RWMutex
	items    map[uint32]Notification
	watchers map[int]func(Notification)
	nextID   int
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:    make(map[uint32]Notification),
		watchers: make(map[int]func(Notification)),
	}
}

// Put creates or replaces a notification and notifies watchers
func (s *MemoryStore) Put(n Notification) {
	s.mu.Lock()
	s.items[n.ID] = n
	watchers := lo.Values(s.watchers)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(n)
	}
}

// Get returns the notification with the given id
func (s *MemoryStore) Get(id uint32) (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.items[id]
	return n, ok
}

// List returns all notifications, most recently updated first
func (s *MemoryStore) List() []Notification {
	s.mu.RLock()
	list := lo.Values(s.items)
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
	return list
}

// Watch registers fn for every future Put. The returned func unregisters it.
func (s *MemoryStore) Watch(fn func(Notification)) func() {
	s.mu.Lock()
	key := s.nextID
	s.nextID++
	s.watchers[key] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, key)
		s.mu.Unlock()
	}
}
