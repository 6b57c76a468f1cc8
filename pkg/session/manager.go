package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/teevee/internal/logging"
	"github.com/aretw0/teevee/pkg/domain"
	"github.com/aretw0/teevee/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// StartFunc opens a conversation that has no saved state yet.
type StartFunc func(ctx context.Context, sessionID string) (*domain.State, error)

// Manager owns the saved conversations. Every session has its own State and
// its own lock; two sessions never share anything. With a DistributedLocker
// the per-session lock also spans processes sharing one store.
type Manager struct {
	store   ports.StateStore
	local   *keyedMutex
	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker adds a cross-process lock taken after the local one.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) { m.locker = locker }
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager keeps sessions in store.
func NewManager(store ports.StateStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		local:   newKeyedMutex(),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns the saved state of sessionID or domain.ErrSessionNotFound.
func (m *Manager) Load(ctx context.Context, sessionID string) (state *domain.State, err error) {
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err = m.store.Load(ctx, sessionID)
		return err
	})
	return state, err
}

// LoadOrStart resumes sessionID, or opens it with start and saves it at once
// so the id is taken. created reports which of the two happened.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID string, start StartFunc) (state *domain.State, created bool, err error) {
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		saved, err := m.store.Load(ctx, sessionID)
		switch {
		case err == nil:
			state = saved
			m.logger.Debug("session resumed", "session_id", sessionID, "node_id", saved.CurrentNodeID, "turns", saved.TurnCount)
			return nil
		case !errors.Is(err, domain.ErrSessionNotFound):
			return fmt.Errorf("loading session %s: %w", sessionID, err)
		}

		fresh, err := start(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, sessionID, fresh); err != nil {
			return fmt.Errorf("saving new session %s: %w", sessionID, err)
		}
		state, created = fresh, true
		m.logger.Debug("session created", "session_id", sessionID, "node_id", fresh.CurrentNodeID)
		return nil
	})
	return state, created, err
}

// Save stores the state reached after a turn.
func (m *Manager) Save(ctx context.Context, sessionID string, state *domain.State) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, state)
	})
}

// Delete forgets sessionID; the next LoadOrStart opens it anew.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

// WithLock runs fn with exclusive access to sessionID.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	unlock := m.local.Lock(sessionID)
	defer unlock()

	if m.locker == nil {
		return fn(ctx)
	}

	release, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
	if err != nil {
		return fmt.Errorf("locking session %s: %w", sessionID, err)
	}
	defer func() {
		if err := release(ctx); err != nil {
			// The lock expires after lockTTL anyway.
			m.logger.Warn("releasing session lock", "session_id", sessionID, "err", err)
		}
	}()
	return fn(ctx)
}
