package database

import (
	"database/sql"
	"time"
)

type User struct {
	Id           int
	Username     string
	DisplayName  string
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Group is a persisted conversation group. Name is the canonical group name
// for the two participants; Connections holds the currently subscribed
// transport connections.
type Group struct {
	Id          int
	Name        string
	Connections []Connection
	CreatedAt   time.Time
}

// Connection is a group membership record. A connection id belongs to at most
// one group at a time.
type Connection struct {
	Id       string
	Username string
}

type Message struct {
	Id                int
	ExternalId        string
	SenderUsername    string
	RecipientUsername string
	Content           string
	CreatedAt         time.Time
	ReadAt            sql.NullTime
}

type CreateAccountParams struct {
	Username     string
	DisplayName  string
	EmailAddress string
	PasswordHash string
}
