package dashboard

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runixer/evalboard/internal/evaluator"
	"github.com/runixer/evalboard/internal/i18n"
	"github.com/runixer/evalboard/internal/notify"
)

// Session is the view state bound to one browser.
type Session struct {
	ID      string
	List    *ListView
	Detail  *DetailView
	Notices *notify.Queue

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// SessionOptions configures a SessionStore.
type SessionOptions struct {
	TTL       time.Duration
	Localizer i18n.Localizer
	// PageSize is the evaluator page size used to walk the list; 0 disables paging.
	PageSize int
}

// SessionStore keeps sessions in memory, keyed by a random UUID.
type SessionStore struct {
	client evaluator.Client
	logger *slog.Logger
	opts   SessionOptions
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store. A nil Localizer leaves message keys
// untranslated.
func NewSessionStore(client evaluator.Client, logger *slog.Logger, opts SessionOptions) *SessionStore {
	if opts.Localizer == nil {
		opts.Localizer = func(key string, _ ...interface{}) string { return key }
	}
	return &SessionStore{
		client:   client,
		logger:   logger.With("component", "sessions"),
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the live session with id and marks it as used.
func (s *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	sess.touch(s.now())
	return sess, true
}

// GetOrCreate returns the session for id, creating a fresh one when id is
// unknown or expired. created reports whether a new session was made.
func (s *SessionStore) GetOrCreate(id string) (sess *Session, created bool) {
	if sess, ok := s.Get(id); ok {
		return sess, false
	}
	return s.Create(), true
}

// Create starts a new session with an empty list and detail view.
func (s *SessionStore) Create() *Session {
	notices := &notify.Queue{}
	detail := NewDetailView(s.client, s.logger, notices, s.opts.Localizer)
	sess := &Session{
		ID:       uuid.NewString(),
		Detail:   detail,
		List:     NewListView(s.client, s.logger, notices, s.opts.Localizer, detail, s.opts.PageSize),
		Notices:  notices,
		lastSeen: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	sessionsActive.Inc()
	s.logger.Debug("Session created", "session_id", sess.ID, "sessions", count)
	return sess
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed. A non-positive TTL disables expiry.
func (s *SessionStore) Sweep() int {
	if s.opts.TTL <= 0 {
		return 0
	}
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince(now) > s.opts.TTL {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		sessionsActive.Sub(float64(removed))
		sessionsExpiredTotal.Add(float64(removed))
		s.logger.Info("Expired idle sessions", "count", removed)
	}
	return removed
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
