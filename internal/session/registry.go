package session

import "sync"

// Registry is a service-owned concurrent map enforcing at most one active
// session per key, and per member within a kind: a user inside a pair
// session cannot also hold their own session of the same kind.
type Registry struct {
	mu       sync.Mutex
	active   map[Key]Session
	byMember map[Key]Key
}

func NewRegistry() *Registry {
	return &Registry{
		active:   map[Key]Session{},
		byMember: map[Key]Key{},
	}
}

// CreateIfAbsent builds and registers a session for key if neither the key
// nor any member is busy. On conflict it returns the blocking session and
// false, and the factory result is discarded.
func (r *Registry) CreateIfAbsent(key Key, factory func() Session) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.active[key]; ok {
		return existing, false
	}
	s := factory()
	for _, member := range s.Members() {
		if busyKey, ok := r.byMember[UserKey(s.Kind(), member)]; ok {
			return r.active[busyKey], false
		}
	}
	r.active[key] = s
	for _, member := range s.Members() {
		r.byMember[UserKey(s.Kind(), member)] = key
	}
	return s, true
}

func (r *Registry) Get(key Key) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.active[key]
	return s, ok
}

// FindByMember returns the active session of the given kind that userID is
// part of, whether they own it or are the second party.
func (r *Registry) FindByMember(kind, userID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.byMember[UserKey(kind, userID)]
	if !ok {
		return nil, false
	}
	s, ok := r.active[key]
	return s, ok
}

// RemoveIfSame removes the entry for key only if it still holds exactly this
// session instance. Exactly one of the racing resolution paths (user action
// or expiration) observes true.
func (r *Registry) RemoveIfSame(key Key, s Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.active[key]
	if !ok || current != s {
		return false
	}
	delete(r.active, key)
	for _, member := range s.Members() {
		mk := UserKey(s.Kind(), member)
		if r.byMember[mk] == key {
			delete(r.byMember, mk)
		}
	}
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
