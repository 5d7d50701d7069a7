package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/npezzotti/go-dmhub/internal/types"
)

func TestNoErrAccepted(t *testing.T) {
	result := NoErrAccepted(1)

	assert.NotNil(t, result.Response, "expected response to be non-nil")
	assert.Equal(t, 1, result.Id, "expected Id to match")
	assert.WithinDuration(t, Now(), result.Timestamp, time.Second, "expected Timestamp to be recent")
	assert.Equal(t, http.StatusAccepted, result.Response.ResponseCode)
	assert.Empty(t, result.Response.Error)
}

func TestErrCannotMessageSelf(t *testing.T) {
	result := ErrCannotMessageSelf(3)

	assert.Equal(t, 3, result.Id)
	assert.Equal(t, http.StatusBadRequest, result.Response.ResponseCode)
	assert.Equal(t, "cannot send messages to yourself", result.Response.Error)
}

func TestErrRecipientNotFound(t *testing.T) {
	result := ErrRecipientNotFound(4)

	assert.Equal(t, 4, result.Id)
	assert.Equal(t, http.StatusNotFound, result.Response.ResponseCode)
	assert.Equal(t, "recipient not found", result.Response.Error)
}

func TestErrSendFailed(t *testing.T) {
	result := ErrSendFailed(5)

	assert.Equal(t, 5, result.Id)
	assert.Equal(t, http.StatusInternalServerError, result.Response.ResponseCode)
}

func TestErrInvalidMessage(t *testing.T) {
	t.Run("positive id is kept", func(t *testing.T) {
		result := ErrInvalidMessage(2)
		assert.Equal(t, 2, result.Id)
		assert.Equal(t, http.StatusBadRequest, result.Response.ResponseCode)
	})

	t.Run("negative id is dropped", func(t *testing.T) {
		result := ErrInvalidMessage(-1)
		assert.Zero(t, result.Id)
	})
}

func TestNewMessageReceived(t *testing.T) {
	result := NewMessageReceived("alice", "Alice")

	assert.NotNil(t, result.Notification, "expected a notification payload")
	assert.NotNil(t, result.Notification.MessageAlert)
	assert.Equal(t, "alice", result.Notification.MessageAlert.Username)
	assert.Equal(t, "Alice", result.Notification.MessageAlert.DisplayName)
}

func TestServerMessageSerialization(t *testing.T) {
	msg := UpdatedGroup(&types.GroupSnapshot{
		Name: "bob-alice",
		Connections: []types.GroupConnection{
			{Id: "conn-a", Username: "alice"},
		},
	})

	raw, err := json.Marshal(msg)
	assert.NoError(t, err, "expected no error during serialization")

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "updated_group")
	assert.NotContains(t, decoded, "response", "expected empty payloads to be omitted")
	assert.NotContains(t, decoded, "message")
}

func TestNow(t *testing.T) {
	now := Now()
	assert.Equal(t, time.UTC, now.Location(), "expected timestamps in UTC")
	assert.Equal(t, now, now.Round(time.Millisecond), "expected millisecond precision")
}
