package server

import (
	"net/http"
	"time"

	"github.com/npezzotti/go-dmhub/internal/types"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ClientMessage struct {
	BaseMessage
	Send   *SendMessage `json:"send,omitempty"`
	client *Client      `json:"-"`
}

type SendMessage struct {
	RecipientUsername string `json:"recipient_username" validate:"required,max=128"`
	Content           string `json:"content" validate:"required,max=4000"`
}

type ServerMessage struct {
	BaseMessage
	Response      *Response            `json:"response,omitempty"`
	UpdatedGroup  *types.GroupSnapshot `json:"updated_group,omitempty"`
	MessageThread []types.Message      `json:"message_thread,omitempty"`
	Message       *types.Message       `json:"message,omitempty"`
	Notification  *Notification        `json:"notification,omitempty"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
}

type Notification struct {
	MessageAlert *MessageAlert `json:"message_alert,omitempty"`
}

// MessageAlert tells a recipient's other live connections that a new message
// arrived in a conversation they are not currently viewing.
type MessageAlert struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

func NoErrAccepted(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusAccepted,
		},
	}
}

func UpdatedGroup(snapshot *types.GroupSnapshot) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		UpdatedGroup: snapshot,
	}
}

func MessageThread(messages []types.Message) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		MessageThread: messages,
	}
}

func NewMessage(id int, msg *types.Message) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Message: msg,
	}
}

func NewMessageReceived(username, displayName string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Notification: &Notification{
			MessageAlert: &MessageAlert{
				Username:    username,
				DisplayName: displayName,
			},
		},
	}
}

func ErrCannotMessageSelf(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "cannot send messages to yourself",
		},
	}
}

func ErrRecipientNotFound(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        "recipient not found",
		},
	}
}

func ErrSendFailed(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "failed to send message",
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
