// Package cache persists bounded per-session conversation history.
//
// The cache is an optimization, never a correctness dependency: storage
// and decode failures are absorbed here and degrade to "no history".
package cache

import (
	"encoding/json"
	"time"

	"github.com/rmarques/leadchat/internal/domain"
	"github.com/rmarques/leadchat/internal/logging"
	"github.com/rmarques/leadchat/internal/store"
)

// DefaultLimit is how many messages are retained per session.
const DefaultLimit = 50

const keyPrefix = "history:"

// entry is the persisted shape of a single message.
type entry struct {
	Who       string `json:"who"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Cache stores the last N messages of each session in the KV store,
// one JSON array per session id.
type Cache struct {
	kv    store.KV
	limit int
	log   *logging.Logger
}

// New creates a message cache over kv. A limit <= 0 uses DefaultLimit.
func New(kv store.KV, limit int, log *logging.Logger) *Cache {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Cache{kv: kv, limit: limit, log: log.Sub("cache")}
}

// Load returns the cached messages for sessionID in chat order. An
// absent, unreadable, or structurally invalid entry yields an empty
// slice; one bad element invalidates the whole entry.
func (c *Cache) Load(sessionID string) []domain.Message {
	raw, ok := c.kv.Get(keyPrefix + sessionID)
	if !ok {
		return nil
	}

	var entries []entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.log.Warn().Err(err).Str("session", sessionID).Msg("discarding malformed history")
		return nil
	}

	msgs := make([]domain.Message, 0, len(entries))
	for _, e := range entries {
		m := domain.Message{Who: domain.Sender(e.Who), Text: e.Text}
		if !m.Valid() {
			c.log.Warn().Str("session", sessionID).Msg("discarding history with invalid message")
			return nil
		}
		// An unparseable timestamp keeps the message; order is
		// positional, not temporal.
		m.Timestamp, _ = time.Parse(time.RFC3339, e.Timestamp)
		msgs = append(msgs, m)
	}
	return msgs
}

// Save persists the last limit messages for sessionID. Storage failures
// are swallowed: the live conversation must never depend on the cache.
func (c *Cache) Save(sessionID string, msgs []domain.Message) {
	if len(msgs) > c.limit {
		msgs = msgs[len(msgs)-c.limit:]
	}

	entries := make([]entry, len(msgs))
	for i, m := range msgs {
		entries[i] = entry{
			Who:       string(m.Who),
			Text:      m.Text,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		c.log.Warn().Err(err).Str("session", sessionID).Msg("history marshal failed")
		return
	}
	if err := c.kv.Set(keyPrefix+sessionID, string(data)); err != nil {
		c.log.Warn().Err(err).Str("session", sessionID).Msg("history write failed")
	}
}

// Clear removes the entry for sessionID; no-op if absent.
func (c *Cache) Clear(sessionID string) {
	if err := c.kv.Delete(keyPrefix + sessionID); err != nil {
		c.log.Warn().Err(err).Str("session", sessionID).Msg("history delete failed")
	}
}
