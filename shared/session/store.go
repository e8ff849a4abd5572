package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Store is the process wide registry of sessions. Entries live until they are
// deleted or the process exits.
//
// Updates to one session are serialized by a per-session mutex; different
// sessions never contend beyond the short map lookup.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	seq     uint64
	now     func() time.Time
}

type entry struct {
	mu      sync.Mutex
	seq     uint64
	session Session
	deleted bool
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Create registers s under a fresh token and returns the token. Any ID already
// set on s is replaced.
func (st *Store) Create(s Session) string {
	token := uuid.NewString()
	now := st.now().UTC()

	s = s.Clone()
	s.ID = token
	s.CreatedAt = now
	s.UpdatedAt = now

	st.mu.Lock()
	defer st.mu.Unlock()

	st.seq++
	st.entries[token] = &entry{seq: st.seq, session: s}

	return token
}

// Get returns a copy of the session.
func (st *Store) Get(token string) (Session, error) {
	e, ok := st.lookup(token)
	if !ok {
		return Session{}, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return Session{}, ErrNotFound
	}

	return e.session.Clone(), nil
}

// Update applies mutate to a copy of the session and commits the copy only when
// mutate returns nil. The mutator runs while the session is locked and must not
// block on slow work.
func (st *Store) Update(token string, mutate func(*Session) error) error {
	e, ok := st.lookup(token)
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return ErrNotFound
	}

	next := e.session.Clone()
	if err := mutate(&next); err != nil {
		return err
	}

	next.ID = e.session.ID
	next.CreatedAt = e.session.CreatedAt
	next.UpdatedAt = st.now().UTC()
	e.session = next

	return nil
}

func (st *Store) Delete(token string) error {
	st.mu.Lock()
	e, ok := st.entries[token]
	if ok {
		delete(st.entries, token)
	}
	st.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	// an Update that already looked the entry up must not resurrect it
	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()

	return nil
}

// List returns the tokens of all live sessions in creation order.
func (st *Store) List() []string {
	st.mu.RLock()
	type item struct {
		token string
		seq   uint64
	}
	items := make([]item, 0, len(st.entries))
	for token, e := range st.entries {
		items = append(items, item{token: token, seq: e.seq})
	}
	st.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].seq < items[j].seq })

	tokens := make([]string, len(items))
	for i, it := range items {
		tokens[i] = it.token
	}

	return tokens
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.entries)
}

func (st *Store) lookup(token string) (*entry, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	e, ok := st.entries[token]
	return e, ok
}
