package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rmarques/leadchat/internal/logging"
	"github.com/rmarques/leadchat/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate_MintsAndPersists(t *testing.T) {
	kv := store.NewMemoryKV()
	m := NewIdentityManager(kv, logging.Nop())

	id := m.GetOrCreate()
	require.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	stored, ok := kv.Get("session:id")
	require.True(t, ok)
	assert.Equal(t, id, stored)

	// Stable across calls
	assert.Equal(t, id, m.GetOrCreate())
}

func TestGetOrCreate_ReturnsExisting(t *testing.T) {
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set("session:id", "persisted-id"))

	m := NewIdentityManager(kv, logging.Nop())
	assert.Equal(t, "persisted-id", m.GetOrCreate())
}

func TestAdopt_RecordsNewID(t *testing.T) {
	kv := store.NewMemoryKV()
	m := NewIdentityManager(kv, logging.Nop())
	m.GetOrCreate()

	m.Adopt("card-123456")
	assert.Equal(t, "card-123456", m.GetOrCreate())

	stored, _ := kv.Get("session:id")
	assert.Equal(t, "card-123456", stored)
}

func TestAdopt_SameID_NoOp(t *testing.T) {
	kv := store.NewMemoryKV()
	m := NewIdentityManager(kv, logging.Nop())
	id := m.GetOrCreate()

	m.Adopt(id)
	assert.Equal(t, id, m.GetOrCreate())
}

func TestAdopt_EmptyID_Ignored(t *testing.T) {
	kv := store.NewMemoryKV()
	m := NewIdentityManager(kv, logging.Nop())
	id := m.GetOrCreate()

	m.Adopt("")
	assert.Equal(t, id, m.GetOrCreate())
}

// writeRejectingKV fails every write but reads fine.
type writeRejectingKV struct{ store.KV }

func (writeRejectingKV) Set(string, string) error { return errors.New("disk full") }

func TestGetOrCreate_StorageFailure_DegradesToMemory(t *testing.T) {
	kv := writeRejectingKV{store.NewMemoryKV()}
	m := NewIdentityManager(kv, logging.Nop())

	id := m.GetOrCreate()
	require.NotEmpty(t, id)
	// The instance keeps the id even though nothing was persisted.
	assert.Equal(t, id, m.GetOrCreate())
}
