package database

import (
	"time"
)

func (db *PgRepository) CreateAccount(params CreateAccountParams) (User, error) {
	now := time.Now().UTC()
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, username, email, created_at, updated_at",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		now,
		now,
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgRepository) GetAccountById(id int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, created_at, updated_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	now := time.Now().UTC()
	res := db.conn.QueryRow(
		"INSERT INTO rooms (name, external_id, owner_id, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, name, external_id, owner_id, created_at, updated_at",
		params.Name,
		params.ExternalId,
		params.OwnerId,
		now,
		now,
	)

	var room Room
	err := res.Scan(
		&room.Id,
		&room.Name,
		&room.ExternalId,
		&room.OwnerId,
		&room.CreatedAt,
		&room.UpdatedAt,
	)

	return room, err
}

func (db *PgRepository) GetRoomByExternalId(externalId string) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT id, external_id, name, owner_id, created_at, updated_at FROM rooms "+
			"WHERE external_id = $1 LIMIT 1",
		externalId,
	)

	var room Room
	err := row.Scan(
		&room.Id,
		&room.ExternalId,
		&room.Name,
		&room.OwnerId,
		&room.CreatedAt,
		&room.UpdatedAt,
	)

	return room, err
}

func (db *PgRepository) DeleteRoom(id int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec("DELETE FROM chats WHERE room_id = $1", id)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM rooms WHERE id = $1", id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (db *PgRepository) CreateChat(chat Chat) (Chat, error) {
	res := db.conn.QueryRow(
		"INSERT INTO chats (room_id, user_id, shape_id, message, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, room_id, user_id, shape_id, message, created_at, updated_at",
		chat.RoomId,
		chat.UserId,
		chat.ShapeId,
		chat.Message,
		chat.CreatedAt,
		chat.CreatedAt,
	)

	var created Chat
	err := res.Scan(
		&created.Id,
		&created.RoomId,
		&created.UserId,
		&created.ShapeId,
		&created.Message,
		&created.CreatedAt,
		&created.UpdatedAt,
	)

	return created, err
}

func (db *PgRepository) GetChats(roomId, limit int) ([]Chat, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := db.conn.Query(
		"SELECT id, room_id, user_id, shape_id, message, created_at, updated_at FROM chats "+
			"WHERE room_id = $1 ORDER BY id ASC LIMIT $2",
		roomId,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats = make([]Chat, 0, limit)
	for rows.Next() {
		var chat Chat
		if err = rows.Scan(
			&chat.Id,
			&chat.RoomId,
			&chat.UserId,
			&chat.ShapeId,
			&chat.Message,
			&chat.CreatedAt,
			&chat.UpdatedAt,
		); err != nil {
			break
		}

		chats = append(chats, chat)
	}

	return chats, err
}

// UpdateShapeChats replaces the payload of the records matching the shape id
// exactly. Update is destructive: history reflects only the latest payload.
func (db *PgRepository) UpdateShapeChats(roomId int, shapeId, message string) (int64, error) {
	res, err := db.conn.Exec(
		"UPDATE chats SET message = $3, updated_at = $4 WHERE room_id = $1 AND shape_id = $2",
		roomId,
		shapeId,
		message,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (db *PgRepository) DeleteShapeChats(roomId int, shapeId string) (int64, error) {
	res, err := db.conn.Exec(
		"DELETE FROM chats WHERE room_id = $1 AND shape_id = $2",
		roomId,
		shapeId,
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
