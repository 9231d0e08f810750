package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rmarques/leadchat/internal/domain"
	"github.com/rmarques/leadchat/internal/logging"
	"github.com/rmarques/leadchat/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) (*Cache, store.KV) {
	t.Helper()
	kv := store.NewMemoryKV()
	return New(kv, 0, logging.Nop()), kv
}

func messages(n int) []domain.Message {
	msgs := make([]domain.Message, n)
	for i := range msgs {
		who := domain.SenderUser
		if i%2 == 1 {
			who = domain.SenderBot
		}
		msgs[i] = domain.Message{Who: who, Text: fmt.Sprintf("msg %d", i), Timestamp: time.Now()}
	}
	return msgs
}

func TestCache_RoundTrip(t *testing.T) {
	c, _ := testCache(t)

	in := messages(3)
	c.Save("s1", in)

	out := c.Load("s1")
	require.Len(t, out, 3)
	for i := range in {
		assert.Equal(t, in[i].Who, out[i].Who)
		assert.Equal(t, in[i].Text, out[i].Text)
	}
}

func TestCache_Load_Absent(t *testing.T) {
	c, _ := testCache(t)
	assert.Empty(t, c.Load("nope"))
}

func TestCache_Save_TrimsOldest(t *testing.T) {
	c, _ := testCache(t)

	in := messages(60)
	c.Save("s1", in)

	out := c.Load("s1")
	require.Len(t, out, DefaultLimit)
	// Oldest dropped first: the slice is the tail of the input.
	assert.Equal(t, in[10].Text, out[0].Text)
	assert.Equal(t, in[59].Text, out[len(out)-1].Text)
}

func TestCache_Load_MalformedJSON(t *testing.T) {
	c, kv := testCache(t)

	require.NoError(t, kv.Set("history:s1", "{not json"))
	assert.Empty(t, c.Load("s1"))
}

func TestCache_Load_OneBadElementInvalidatesAll(t *testing.T) {
	c, kv := testCache(t)

	raw := `[{"who":"user","text":"oi","timestamp":"2025-11-12T14:00:00Z"},{"who":"","text":"x","timestamp":""}]`
	require.NoError(t, kv.Set("history:s1", raw))
	assert.Empty(t, c.Load("s1"))
}

func TestCache_Load_EmptyTextInvalidates(t *testing.T) {
	c, kv := testCache(t)

	raw := `[{"who":"bot","text":"","timestamp":"2025-11-12T14:00:00Z"}]`
	require.NoError(t, kv.Set("history:s1", raw))
	assert.Empty(t, c.Load("s1"))
}

func TestCache_Load_BadTimestampKeepsMessage(t *testing.T) {
	c, kv := testCache(t)

	raw := `[{"who":"bot","text":"oi","timestamp":"not-a-time"}]`
	require.NoError(t, kv.Set("history:s1", raw))

	out := c.Load("s1")
	require.Len(t, out, 1)
	assert.Equal(t, "oi", out[0].Text)
	assert.True(t, out[0].Timestamp.IsZero())
}

func TestCache_Clear(t *testing.T) {
	c, _ := testCache(t)

	c.Save("s1", messages(2))
	c.Clear("s1")
	assert.Empty(t, c.Load("s1"))

	// Clearing an absent entry is a no-op
	c.Clear("s1")
}

// failingKV rejects all writes, like a full or disabled browser store.
type failingKV struct{}

func (failingKV) Get(string) (string, bool) { return "", false }
func (failingKV) Set(string, string) error  { return errors.New("quota exceeded") }
func (failingKV) Delete(string) error       { return errors.New("storage disabled") }

func TestCache_StorageFailuresSwallowed(t *testing.T) {
	c := New(failingKV{}, 0, logging.Nop())

	// None of these may panic or surface an error.
	c.Save("s1", messages(2))
	c.Clear("s1")
	assert.Empty(t, c.Load("s1"))
}
