package formhttp

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/goliatone/go-formkit/pkg/form"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Store keeps sessions in memory. Every successful Get extends the session's
// lifetime by the store TTL.
type Store struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewStore creates a store whose entries expire after ttl of inactivity.
// A non-positive ttl selects DefaultSessionTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Store{
		cache: gocache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// Put stores sess under its id.
func (s *Store) Put(sess *form.Session) {
	s.cache.Set(sess.ID(), sess, s.ttl)
}

// Get returns the session and refreshes its expiry.
func (s *Store) Get(id string) (*form.Session, bool) {
	raw, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	sess, ok := raw.(*form.Session)
	if !ok {
		return nil, false
	}
	s.cache.Set(id, sess, s.ttl)
	return sess, true
}

// Delete drops a session.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

// Len reports the number of live sessions, expired ones included until the
// janitor runs.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// OnEvicted registers fn to run when a session expires or is deleted.
func (s *Store) OnEvicted(fn func(id string)) {
	s.cache.OnEvicted(func(key string, _ any) {
		fn(key)
	})
}
