package relay

import (
	"fmt"
	"time"
)

// Inbound frame types accepted from clients. Anything else is dropped.
const (
	TypeJoinRoom    = "join_room"
	TypeLeaveRoom   = "leave_room"
	TypeChat        = "chat"
	TypeUpdateShape = "update_shape"
	TypeDeleteShape = "delete_shape"
)

// ClientFrame is the envelope for every inbound websocket frame. Join, leave
// and chat carry the room id at the top level; shape mutations carry it
// inside the payload.
type ClientFrame struct {
	Type    string        `json:"type"`
	RoomId  string        `json:"roomId,omitempty"`
	Message string        `json:"message,omitempty"`
	Payload *ShapePayload `json:"payload,omitempty"`
	client  *Client       `json:"-"`
}

// ShapePayload identifies the shape a mutation targets. Message holds the
// replacement payload for update_shape and is empty for delete_shape.
type ShapePayload struct {
	Id      string `json:"id"`
	RoomId  string `json:"roomId"`
	Message string `json:"message,omitempty"`
}

// roomKey returns the room id the frame addresses regardless of where the
// wire format carries it.
func (f *ClientFrame) roomKey() string {
	switch f.Type {
	case TypeUpdateShape, TypeDeleteShape:
		if f.Payload != nil {
			return f.Payload.RoomId
		}
		return ""
	default:
		return f.RoomId
	}
}

// validate rejects frames with an unknown type or a missing room reference.
// Shape mutations additionally require a shape id.
func (f *ClientFrame) validate() error {
	switch f.Type {
	case TypeJoinRoom, TypeLeaveRoom:
		if f.RoomId == "" {
			return fmt.Errorf("%s: missing roomId", f.Type)
		}
	case TypeChat:
		if f.RoomId == "" {
			return fmt.Errorf("chat: missing roomId")
		}
	case TypeUpdateShape, TypeDeleteShape:
		if f.Payload == nil {
			return fmt.Errorf("%s: missing payload", f.Type)
		}
		if f.Payload.Id == "" || f.Payload.RoomId == "" {
			return fmt.Errorf("%s: payload missing id or roomId", f.Type)
		}
	default:
		return fmt.Errorf("unknown frame type %q", f.Type)
	}

	return nil
}

// ServerFrame is the envelope for every outbound websocket frame.
type ServerFrame struct {
	Type    string        `json:"type"`
	RoomId  string        `json:"roomId,omitempty"`
	Message *ChatBody     `json:"message,omitempty"`
	Payload *ShapePayload `json:"payload,omitempty"`
}

// ChatBody is the enriched message attached to outbound chat frames.
type ChatBody struct {
	Text      string    `json:"text"`
	User      Author    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

type Author struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

func ChatEvent(roomId, text string, author Author, ts time.Time) *ServerFrame {
	return &ServerFrame{
		Type:   TypeChat,
		RoomId: roomId,
		Message: &ChatBody{
			Text:      text,
			User:      author,
			Timestamp: ts,
		},
	}
}

func UpdateShapeEvent(roomId, shapeId, message string) *ServerFrame {
	return &ServerFrame{
		Type: TypeUpdateShape,
		Payload: &ShapePayload{
			Id:      shapeId,
			RoomId:  roomId,
			Message: message,
		},
	}
}

func DeleteShapeEvent(roomId, shapeId string) *ServerFrame {
	return &ServerFrame{
		Type: TypeDeleteShape,
		Payload: &ShapePayload{
			Id:     shapeId,
			RoomId: roomId,
		},
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
