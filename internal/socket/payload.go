package socket

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

type MessageType string

const (
	MsgJoinRoom  MessageType = "joinRoom"
	MsgLeaveRoom MessageType = "leaveRoom"
	MsgPing      MessageType = "ping"

	MsgPong  MessageType = "pong"
	MsgError MessageType = "error"
)

// ClientMessage is a client→server frame. Events flowing the other way
// use the fanout.Event envelope.
type ClientMessage struct {
	Type   MessageType `json:"type" validate:"required,oneof=joinRoom leaveRoom ping"`
	RoomID int64       `json:"roomId" validate:"required_unless=Type ping,omitempty,min=1"`
}

var validate = validator.New()

func ParseClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if err := validate.Struct(msg); err != nil {
		return msg, err
	}
	return msg, nil
}

type pongFrame struct {
	Type MessageType `json:"type"`
	TS   int64       `json:"ts"`
}

type errorFrame struct {
	Type  MessageType `json:"type"`
	Error string      `json:"error"`
}

func PongFrame() []byte {
	data, _ := json.Marshal(pongFrame{Type: MsgPong, TS: time.Now().UnixMilli()})
	return data
}

func ErrorFrame(msg string) []byte {
	data, _ := json.Marshal(errorFrame{Type: MsgError, Error: msg})
	return data
}
