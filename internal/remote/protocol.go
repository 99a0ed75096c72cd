package remote

import (
	"errors"
	"fmt"
)

// MessageType identifies a frame on the controller socket.
type MessageType string

// Requests flow from the arena to the bot, replies from the bot back.
const (
	MessageReset  MessageType = "reset"
	MessageDecide MessageType = "decide"
	MessageDie    MessageType = "die"
	MessageWin    MessageType = "win"

	MessageAck    MessageType = "ack"
	MessageAction MessageType = "action"
	MessageError  MessageType = "error"
)

// Message is the single JSON frame exchanged in both directions. Replies
// echo the ID of the request they answer.
type Message struct {
	Type  MessageType `json:"type"`
	ID    uint64      `json:"id,omitempty"`
	Value int         `json:"value,omitempty"`
	Error string      `json:"error,omitempty"`
}

// ErrRemote wraps failures reported by the bot itself.
var ErrRemote = errors.New("remote controller error")

func (m Message) err() error {
	if m.Type != MessageError {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRemote, m.Error)
}
