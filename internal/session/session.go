// Package session owns the lifecycle of the loaded dataset. There is no
// module-level singleton: the server holds one Manager and hands the current
// snapshot to every query explicitly.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"helioscope/domain/table"
	"helioscope/internal/errors"
)

// Session is one immutable dataset snapshot. Queries compute against a
// snapshot so a concurrent reload cannot change the data mid-request.
type Session struct {
	ID       string
	Dataset  *table.Table
	LoadedAt time.Time
}

// LoadFunc produces a fresh combined dataset, typically loader.LoadAll.
type LoadFunc func() (*table.Table, error)

// Manager guards the current session and rebuilds it on demand.
type Manager struct {
	load LoadFunc

	mu      sync.RWMutex
	current *Session
}

// NewManager creates a manager that uses load to (re)build sessions.
func NewManager(load LoadFunc) *Manager {
	return &Manager{load: load}
}

// Reload builds a fresh session from source files and swaps it in. On
// failure the previous session, if any, stays current.
func (m *Manager) Reload() (*Session, error) {
	dataset, err := m.load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload dataset")
	}

	session := &Session{
		ID:       uuid.New().String(),
		Dataset:  dataset,
		LoadedAt: time.Now(),
	}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	log.Printf("[Session] Dataset loaded: session=%s rows=%d columns=%d",
		session.ID[:8], dataset.NumRows(), dataset.NumColumns())
	return session, nil
}

// Current returns the active session, or an error when no dataset has been
// loaded yet.
func (m *Manager) Current() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil, errors.NoSources("no dataset loaded")
	}
	return m.current, nil
}
