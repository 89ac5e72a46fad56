package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// DisplayName returns the name shown next to a user's events,
// falling back to the email address for accounts without a username.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.EmailAddress != "" {
		return u.EmailAddress
	}
	return "Anonymous"
}

type Room struct {
	Id         int       `json:"id"`
	ExternalId string    `json:"external_id"`
	Name       string    `json:"name"`
	OwnerId    int       `json:"owner_id"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

const (
	ShapeRect   = "rect"
	ShapeCircle = "circle"
	ShapeLine   = "line"
	ShapePencil = "pencil"
	ShapeText   = "text"
)

// Shape is a drawing primitive. The variants (rect, circle, line, pencil,
// text) are flattened into a single struct; only the fields relevant to a
// variant are populated. Id is assigned by the creating client and is the
// sole handle for update/delete addressing.
type Shape struct {
	Id      string  `json:"id"`
	Type    string  `json:"type"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	CenterX float64 `json:"centerX,omitempty"`
	CenterY float64 `json:"centerY,omitempty"`
	Radius  float64 `json:"radius,omitempty"`
	EndX    float64 `json:"endX,omitempty"`
	EndY    float64 `json:"endY,omitempty"`
	Points  []Point `json:"points,omitempty"`
	Content string  `json:"content,omitempty"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ChatMessage struct {
	Id        int       `json:"id"`
	RoomId    int       `json:"room_id"`
	UserId    int       `json:"user_id"`
	Message   string    `json:"message"`
	ShapeId   string    `json:"shape_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
