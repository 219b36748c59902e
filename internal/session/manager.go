/**
 * @description
 * The session manager owns one wizard per visitor. Creating a session builds a
 * fresh Controller and toast Channel; ending it (explicitly or through idle expiry)
 * closes the Channel so no toast timer outlives the session.
 */
package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sohamda/fantasy-football/internal/catalog"
	"github.com/sohamda/fantasy-football/internal/notify"
	"github.com/sohamda/fantasy-football/internal/wizard"
)

var ErrNotFound = errors.New("wizard session not found")

// Session is one visitor's wizard.
type Session struct {
	ID         string
	Controller *wizard.Controller
	Toasts     *notify.Channel
	CreatedAt  time.Time

	lastSeen time.Time
}

// Config holds everything needed to build a session's collaborators.
type Config struct {
	Catalog           *catalog.Catalog
	Registrar         wizard.Registrar
	IdleTimeout       time.Duration
	ControllerOptions []wizard.Option
	ChannelOptions    []notify.Option
	Logger            *slog.Logger
}

// Manager tracks live sessions. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a new wizard at step one.
func (m *Manager) Create() *Session {
	toasts := notify.NewChannel(m.cfg.ChannelOptions...)
	now := m.now()
	s := &Session{
		ID:         uuid.NewString(),
		Controller: wizard.NewController(m.cfg.Catalog, m.cfg.Registrar, toasts, m.cfg.ControllerOptions...),
		Toasts:     toasts,
		CreatedAt:  now,
		lastSeen:   now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("wizard session started", "session_id", s.ID)
	return s
}

// Get returns a live session and marks it as seen.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.lastSeen = m.now()
	return s, nil
}

// End tears down a session. It reports whether the session existed.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.Toasts.Close()
	m.logger.Info("wizard session ended", "session_id", id)
	return true
}

// Sweep ends every session idle for longer than the idle timeout and returns how many it ended.
func (m *Manager) Sweep() int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		// A session with a submission in flight is kept so its outcome toast has somewhere to go.
		if s.lastSeen.Before(cutoff) && !s.Controller.Snapshot().Submitting {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Toasts.Close()
	}
	if len(expired) > 0 {
		m.logger.Info("expired idle wizard sessions", "count", len(expired))
	}
	return len(expired)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close ends every session.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Toasts.Close()
	}
}
