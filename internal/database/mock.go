package database

import (
	"github.com/stretchr/testify/mock"
)

type MockDmHubRepository struct {
	mock.Mock
}

func (m *MockDmHubRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockDmHubRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockDmHubRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockDmHubRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockDmHubRepository) GetUserByUsername(username string) (User, error) {
	args := m.Called(username)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockDmHubRepository) ListUsers() ([]User, error) {
	args := m.Called()
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockDmHubRepository) GetMessageThread(userA, userB string) ([]Message, error) {
	args := m.Called(userA, userB)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockDmHubRepository) GetMessageGroup(name string) (*Group, error) {
	args := m.Called(name)
	if group, ok := args.Get(0).(*Group); ok {
		return group, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockDmHubRepository) GetGroupForConnection(connectionId string) (*Group, error) {
	args := m.Called(connectionId)
	if group, ok := args.Get(0).(*Group); ok {
		return group, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockDmHubRepository) AddGroup(name string) (*Group, error) {
	args := m.Called(name)
	if group, ok := args.Get(0).(*Group); ok {
		return group, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockDmHubRepository) AddConnection(groupName string, conn Connection) error {
	args := m.Called(groupName, conn)
	return args.Error(0)
}
func (m *MockDmHubRepository) RemoveConnection(connectionId string) error {
	args := m.Called(connectionId)
	return args.Error(0)
}
func (m *MockDmHubRepository) AddMessage(msg Message) (Message, error) {
	args := m.Called(msg)
	return args.Get(0).(Message), args.Error(1)
}
