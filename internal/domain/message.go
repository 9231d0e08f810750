// Package domain defines the conversation data model shared by the
// controller, the cache, and the CLI.
package domain

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Message is a single entry in the conversation log. Messages are
// immutable once appended; slice order is chat order.
type Message struct {
	Who       Sender    `json:"who"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Valid reports whether the message carries the fields every cached
// entry must have.
func (m Message) Valid() bool {
	return (m.Who == SenderUser || m.Who == SenderBot) && m.Text != ""
}

// UserMessage builds a user-authored message stamped now.
func UserMessage(text string) Message {
	return Message{Who: SenderUser, Text: text, Timestamp: time.Now()}
}

// BotMessage builds a bot-authored message stamped now.
func BotMessage(text string) Message {
	return Message{Who: SenderBot, Text: text, Timestamp: time.Now()}
}
