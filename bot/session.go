package bot

import (
	"sync"
	"time"

	"github.com/yeremiapane/kafe-cerita-bot/models"
)

// DefaultSessionTTL adalah batas waktu sesi tanpa aktivitas.
const DefaultSessionTTL = 30 * time.Minute

type Session struct {
	State            State
	Order            Order
	LastInquiredItem *models.Menu
	UpdatedAt        time.Time
}

func (s *Session) clone() Session {
	c := *s
	c.Order = s.Order.clone()
	if s.LastInquiredItem != nil {
		item := *s.LastInquiredItem
		c.LastInquiredItem = &item
	}
	return c
}

// SessionStore menyimpan state percakapan dan pesanan per user.
// Sesi yang kedaluwarsa diperlakukan seperti tidak ada dan dihapus saat terdeteksi.
type SessionStore interface {
	GetState(userID string) State
	SetState(userID string, state State)
	ResetOrder(userID string)
	GetLastInquiredItem(userID string) *models.Menu
	SetLastInquiredItem(userID string, item models.Menu)
	// Snapshot mengembalikan salinan sesi yang masih hidup.
	Snapshot(userID string) (Session, bool)
	// Mutate menjalankan fn secara atomik pada sesi yang masih hidup.
	// Perubahan hanya disimpan bila fn tidak mengembalikan error.
	Mutate(userID string, fn func(*Session) error) error
	Expire(userID string)
	ActiveSessions() int
}

type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

type StoreOption func(*MemorySessionStore)

func WithTTL(ttl time.Duration) StoreOption {
	return func(s *MemorySessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *MemorySessionStore) {
		s.now = now
	}
}

func NewMemorySessionStore(opts ...StoreOption) *MemorySessionStore {
	s := &MemorySessionStore{
		sessions: make(map[string]*Session),
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// liveLocked mengembalikan sesi yang belum kedaluwarsa. Caller wajib memegang s.mu.
func (s *MemorySessionStore) liveLocked(userID string) (*Session, bool) {
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	if s.now().Sub(sess.UpdatedAt) > s.ttl {
		delete(s.sessions, userID)
		return nil, false
	}
	return sess, true
}

func (s *MemorySessionStore) GetState(userID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.liveLocked(userID)
	if !ok {
		return StateGeneral
	}
	return sess.State
}

func (s *MemorySessionStore) SetState(userID string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.liveLocked(userID)
	if !ok {
		s.sessions[userID] = &Session{State: state, UpdatedAt: now}
		return
	}
	sess.State = state
	sess.UpdatedAt = now
}

func (s *MemorySessionStore) ResetOrder(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.liveLocked(userID); ok {
		sess.Order = Order{}
		sess.UpdatedAt = s.now()
	}
}

func (s *MemorySessionStore) GetLastInquiredItem(userID string) *models.Menu {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.liveLocked(userID)
	if !ok || sess.LastInquiredItem == nil {
		return nil
	}
	item := *sess.LastInquiredItem
	return &item
}

func (s *MemorySessionStore) SetLastInquiredItem(userID string, item models.Menu) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.liveLocked(userID); ok {
		sess.LastInquiredItem = &item
		sess.UpdatedAt = s.now()
	}
}

func (s *MemorySessionStore) Snapshot(userID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.liveLocked(userID)
	if !ok {
		return Session{}, false
	}
	return sess.clone(), true
}

func (s *MemorySessionStore) Mutate(userID string, fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.liveLocked(userID)
	if !ok {
		return ErrNoSession
	}
	working := sess.clone()
	if err := fn(&working); err != nil {
		return err
	}
	working.UpdatedAt = s.now()
	s.sessions[userID] = &working
	return nil
}

func (s *MemorySessionStore) Expire(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// ActiveSessions menghitung sesi yang masih hidup sekaligus membuang yang kedaluwarsa.
func (s *MemorySessionStore) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for userID := range s.sessions {
		if _, ok := s.liveLocked(userID); ok {
			count++
		}
	}
	return count
}
