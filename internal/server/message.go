package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/lox/dixit/internal/game"
)

// MessageType identifies the payload of a websocket message
type MessageType string

const (
	// Client to server
	MessageTypeCommand MessageType = "command"

	// Server to client
	MessageTypeBoard  MessageType = "board"
	MessageTypeError  MessageType = "error"
	MessageTypeClosed MessageType = "closed"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the websocket envelope
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage marshals data into a message stamped with now
func NewMessage(messageType MessageType, data any, now time.Time) (*Message, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: messageType, Data: raw, Timestamp: now}, nil
}

// CommandData is sent by clients to act on the game they are watching
type CommandData struct {
	Command Command `json:"command"`
	CommandRequest
}

// ErrorData describes a rejected request. Code and Name come from game.Code.
type ErrorData struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

func errorData(err error) ErrorData {
	var ge *game.Error
	switch {
	case errors.As(err, &ge):
		return ErrorData{Code: int(ge.Code), Name: ge.Code.String(), Value: ge.Value}
	case errors.Is(err, ErrGameNotFound):
		return ErrorData{Code: int(game.CodeUnknownGame), Name: game.CodeUnknownGame.String(), Message: err.Error()}
	default:
		return ErrorData{Code: -1, Name: "INTERNAL", Message: err.Error()}
	}
}
