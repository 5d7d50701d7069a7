package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name,omitempty"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

type Message struct {
	Id                string     `json:"id"`
	SenderUsername    string     `json:"sender_username"`
	RecipientUsername string     `json:"recipient_username"`
	Content           string     `json:"content"`
	CreatedAt         time.Time  `json:"created_at"`
	ReadAt            *time.Time `json:"read_at,omitempty"`
}

// GroupConnection is a single member of a conversation group: one live
// transport connection and the username that owns it.
type GroupConnection struct {
	Id       string `json:"id"`
	Username string `json:"username"`
}

// GroupSnapshot is the full membership of a conversation group at a point in
// time. It is broadcast to the group whenever membership changes.
type GroupSnapshot struct {
	Name        string            `json:"name"`
	Connections []GroupConnection `json:"connections"`
}
