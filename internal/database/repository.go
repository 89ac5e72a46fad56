package database

// Repository is the persistence gateway consumed by the HTTP API and the
// relay. The relay only requires that a write has been acknowledged before
// the corresponding event is broadcast.
type Repository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	CreateRoom(params CreateRoomParams) (Room, error)
	GetRoomByExternalId(externalId string) (Room, error)
	DeleteRoom(id int) error
	CreateChat(chat Chat) (Chat, error)
	GetChats(roomId, limit int) ([]Chat, error)
	UpdateShapeChats(roomId int, shapeId, message string) (int64, error)
	DeleteShapeChats(roomId int, shapeId string) (int64, error)
}
