package server

import (
	"encoding/json"
)

// MessageType represents a WebSocket message type with type safety
type MessageType string

const (
	// Client to server messages
	MessageTypeAct     MessageType = "act"
	MessageTypeObserve MessageType = "observe"

	// Server to client messages
	MessageTypeDecision MessageType = "decision"
	MessageTypeAck      MessageType = "ack"
	MessageTypeError    MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is one WebSocket frame. Data carries an sdk.Request from the
// client and an sdk.Decision from the server.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage creates a message with data marshalled as JSON.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	msg := &Message{Type: messageType}
	if data != nil {
		dataBytes, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = dataBytes
	}
	return msg, nil
}

// ack is the body of a successful observe call.
type ack struct {
	OK bool `json:"ok"`
}

type errorBody struct {
	Error string `json:"error"`
}

type healthBody struct {
	Status string `json:"status"`
	Hands  int    `json:"hands_played"`
}
