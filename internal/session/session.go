package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"data-analyst-agent/internal/agent/orchestrator"
	"data-analyst-agent/internal/observability"
	pkgLog "data-analyst-agent/pkg/log"
)

const (
	DefaultMaxSessions = 1024
	DefaultTTL         = 30 * time.Minute
)

var ErrSessionNotFound = errors.New("session not found")

// Config bounds the session store.
type Config struct {
	MaxSessions int
	TTL         time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxSessions <= 0 {
		c.MaxSessions = DefaultMaxSessions
	}
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	return c
}

// Manager maps session IDs to per-conversation orchestrators. Sessions
// expire after a TTL of inactivity by creation time, and the least
// recently used session is evicted when the store is full.
type Manager struct {
	l        pkgLog.Logger
	metrics  *observability.Metrics
	factory  func() *orchestrator.Orchestrator
	sessions *expirable.LRU[string, *orchestrator.Orchestrator]
}

// New creates a Manager. factory builds the orchestrator backing each
// new session.
func New(l pkgLog.Logger, metrics *observability.Metrics, factory func() *orchestrator.Orchestrator, cfg Config) *Manager {
	cfg = cfg.withDefaults()
	m := &Manager{l: l, metrics: metrics, factory: factory}
	m.sessions = expirable.NewLRU[string, *orchestrator.Orchestrator](
		cfg.MaxSessions,
		func(id string, _ *orchestrator.Orchestrator) {
			metrics.SessionClosed()
			l.Debugf(context.Background(), "session: closed %s", id)
		},
		cfg.TTL,
	)
	return m
}

// Create opens a new session and returns its ID.
func (m *Manager) Create(ctx context.Context) string {
	id := uuid.NewString()
	m.sessions.Add(id, m.factory())
	m.metrics.SessionOpened()
	m.l.Infof(ctx, "session: created %s", id)
	return id
}

// Get returns the orchestrator for a live session.
func (m *Manager) Get(id string) (*orchestrator.Orchestrator, error) {
	o, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return o, nil
}

// Delete ends a session. Deleting an unknown session is an error so
// callers can report it.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if !m.sessions.Remove(id) {
		return ErrSessionNotFound
	}
	m.l.Infof(ctx, "session: deleted %s", id)
	return nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}
