package database

type DmHubRepository interface {
	Ping() error
	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	GetUserByUsername(username string) (User, error)
	ListUsers() ([]User, error)
	GetMessageThread(userA, userB string) ([]Message, error)
	GetMessageGroup(name string) (*Group, error)
	GetGroupForConnection(connectionId string) (*Group, error)
	AddGroup(name string) (*Group, error)
	AddConnection(groupName string, conn Connection) error
	RemoveConnection(connectionId string) error
	AddMessage(msg Message) (Message, error)
}
