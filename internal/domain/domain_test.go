package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Valid(t *testing.T) {
	assert.True(t, UserMessage("oi").Valid())
	assert.True(t, BotMessage("olá").Valid())
	assert.False(t, Message{Who: SenderUser}.Valid())
	assert.False(t, Message{Who: "assistant", Text: "x"}.Valid())
	assert.False(t, Message{Text: "x"}.Valid())
}

func TestMessageConstructors_Stamp(t *testing.T) {
	m := UserMessage("oi")
	assert.Equal(t, SenderUser, m.Who)
	assert.False(t, m.Timestamp.IsZero())
}
