package database

import "time"

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Room struct {
	Id         int
	ExternalId string
	Name       string
	OwnerId    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Chat is one durable row per chat/shape mutation. ShapeId is extracted from
// the message payload at write time so update/delete can address records with
// an exact, indexed match instead of scanning serialized payload text.
type Chat struct {
	Id        int
	RoomId    int
	UserId    int
	ShapeId   string
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type CreateRoomParams struct {
	Name       string
	ExternalId string
	OwnerId    int
}
