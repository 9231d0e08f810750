// Package session owns the active session identifier and its
// migration. It never moves cached history itself; callers migrate
// cache contents before adopting a new id.
package session

import (
	"github.com/google/uuid"
	"github.com/rmarques/leadchat/internal/logging"
	"github.com/rmarques/leadchat/internal/store"
)

const idKey = "session:id"

// IdentityManager durably tracks which session id is active.
type IdentityManager struct {
	kv  store.KV
	log *logging.Logger

	// current is authoritative once set; storage failures degrade to
	// an in-memory-only id for the lifetime of the instance.
	current string
}

// NewIdentityManager creates an identity manager over kv.
func NewIdentityManager(kv store.KV, log *logging.Logger) *IdentityManager {
	return &IdentityManager{kv: kv, log: log.Sub("session")}
}

// GetOrCreate returns the persisted session id if present, otherwise
// mints a fresh one and persists it. Never fails.
func (m *IdentityManager) GetOrCreate() string {
	if m.current != "" {
		return m.current
	}

	if id, ok := m.kv.Get(idKey); ok && id != "" {
		m.current = id
		return id
	}

	id := uuid.New().String()
	m.current = id
	if err := m.kv.Set(idKey, id); err != nil {
		m.log.Warn().Err(err).Msg("session id not persisted, continuing in-memory")
	}
	m.log.Info().Str("session", id).Msg("minted new session")
	return id
}

// Adopt durably records newID as the active session id. Adopting the
// already-active id is a no-op.
func (m *IdentityManager) Adopt(newID string) {
	if newID == "" || newID == m.current {
		return
	}
	m.log.Info().Str("from", m.current).Str("to", newID).Msg("adopting rotated session")
	m.current = newID
	if err := m.kv.Set(idKey, newID); err != nil {
		m.log.Warn().Err(err).Msg("rotated session id not persisted")
	}
}
