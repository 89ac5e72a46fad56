package database

import (
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	args := m.Called(params)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRepository) GetRoomByExternalId(externalId string) (Room, error) {
	args := m.Called(externalId)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockRepository) DeleteRoom(id int) error {
	args := m.Called(id)
	return args.Error(0)
}
func (m *MockRepository) CreateChat(chat Chat) (Chat, error) {
	args := m.Called(chat)
	return args.Get(0).(Chat), args.Error(1)
}
func (m *MockRepository) GetChats(roomId, limit int) ([]Chat, error) {
	args := m.Called(roomId, limit)
	return args.Get(0).([]Chat), args.Error(1)
}
func (m *MockRepository) UpdateShapeChats(roomId int, shapeId, message string) (int64, error) {
	args := m.Called(roomId, shapeId, message)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockRepository) DeleteShapeChats(roomId int, shapeId string) (int64, error) {
	args := m.Called(roomId, shapeId)
	return args.Get(0).(int64), args.Error(1)
}
