package server

import (
	"database/sql"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/npezzotti/go-dmhub/internal/database"
	"github.com/npezzotti/go-dmhub/internal/stats"
	"github.com/npezzotti/go-dmhub/internal/types"
)

const (
	MetricActiveConnections     = "ActiveConnections"
	MetricOnlineUsers           = "OnlineUsers"
	MetricMessagesSent          = "MessagesSent"
	MetricMessagesRead          = "MessagesRead"
	MetricPresenceNotifications = "PresenceNotifications"
	MetricGroupUpdatesBroadcast = "GroupUpdatesBroadcast"
)

// MessageHub orchestrates the two-party conversation protocol: connection
// join/leave, membership broadcasts, and message fan-out. Sessions run
// concurrently; shared state lives behind the tracker, registry and the
// clients map, each with its own lock.
type MessageHub struct {
	log         *log.Logger
	db          database.DmHubRepository
	stats       stats.StatsProvider
	registry    *ConnectionRegistry
	tracker     *PresenceTracker
	groups      *ConversationGroupStore
	validate    *validator.Validate
	clients     map[string]*Client
	clientsLock sync.RWMutex
}

func NewMessageHub(logger *log.Logger, db database.DmHubRepository, sp stats.StatsProvider) *MessageHub {
	h := &MessageHub{
		log:      logger,
		db:       db,
		stats:    sp,
		registry: NewConnectionRegistry(),
		tracker:  NewPresenceTracker(),
		groups:   NewConversationGroupStore(logger, db),
		validate: validator.New(),
		clients:  make(map[string]*Client),
	}

	sp.RegisterMetric(MetricActiveConnections)
	sp.RegisterMetric(MetricOnlineUsers)
	sp.RegisterMetric(MetricMessagesSent)
	sp.RegisterMetric(MetricMessagesRead)
	sp.RegisterMetric(MetricPresenceNotifications)
	sp.RegisterMetric(MetricGroupUpdatesBroadcast)

	return h
}

// Tracker exposes the presence tracker for read-only consumers such as the
// presence API.
func (h *MessageHub) Tracker() *PresenceTracker {
	return h.tracker
}

// Join runs the connect path for a client: resolve the canonical group for
// the two parties, persist the membership, broadcast the updated group, then
// deliver the conversation history to the joining connection only. On error
// the client never joined: nothing is broadcast and the caller must close the
// transport.
func (h *MessageHub) Join(c *Client) error {
	groupName := CanonicalGroupName(c.user.Username, c.peer)

	h.addClient(c)
	h.registry.Add(c.id, c.user.Username)
	if h.tracker.Connect(c.user.Username, c.id) {
		h.stats.Incr(MetricOnlineUsers)
	}
	h.stats.Incr(MetricActiveConnections)

	group, err := h.groups.AddConnection(groupName, database.Connection{
		Id:       c.id,
		Username: c.user.Username,
	})
	if err != nil {
		h.log.Printf("join group %q: %v", groupName, err)
		h.dropClient(c)
		return err
	}

	h.log.Printf("connection %q (%s) joined group %q", c.id, c.user.Username, groupName)
	h.broadcastGroup(group, UpdatedGroup(groupSnapshot(group)))

	thread, err := h.db.GetMessageThread(c.user.Username, c.peer)
	if err != nil {
		h.log.Println("GetMessageThread:", err)
		c.queueMessage(ErrInternalError(0))
		return nil
	}
	c.queueMessage(MessageThread(messageDtos(thread)))

	return nil
}

// Leave runs the disconnect path. The transport is already tearing down, so
// failures are logged and swallowed: the connection state is always released,
// but no membership update is broadcast unless the removal committed.
func (h *MessageHub) Leave(c *Client) {
	if !h.dropClient(c) {
		return
	}

	group, err := h.groups.RemoveConnectionByConnectionId(c.id)
	if err != nil {
		h.log.Printf("leave group for connection %q: %v", c.id, err)
		return
	}

	h.log.Printf("connection %q (%s) left group %q", c.id, c.user.Username, group.Name)
	h.broadcastGroup(group, UpdatedGroup(groupSnapshot(group)))
}

// SendMessage runs the send protocol for one message: validate, resolve the
// parties, decide delivery, persist, then broadcast. The sequence is strictly
// ordered within a single send; independent sends run concurrently. A message
// is never announced to the group unless it committed.
func (h *MessageHub) SendMessage(msg *ClientMessage) {
	c := msg.client
	send := msg.Send

	if err := h.validate.Struct(send); err != nil {
		c.queueMessage(ErrInvalidMessage(msg.Id))
		return
	}

	if strings.EqualFold(c.user.Username, send.RecipientUsername) {
		c.queueMessage(ErrCannotMessageSelf(msg.Id))
		return
	}

	sender, err := h.db.GetUserByUsername(c.user.Username)
	if err != nil {
		h.log.Println("GetUserByUsername:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	recipient, err := h.db.GetUserByUsername(send.RecipientUsername)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.queueMessage(ErrRecipientNotFound(msg.Id))
		} else {
			h.log.Println("GetUserByUsername:", err)
			c.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	message := database.Message{
		ExternalId:        uuid.NewString(),
		SenderUsername:    sender.Username,
		RecipientUsername: recipient.Username,
		Content:           send.Content,
		CreatedAt:         Now(),
	}

	groupName := CanonicalGroupName(sender.Username, recipient.Username)
	group, err := h.db.GetMessageGroup(groupName)
	if err != nil {
		h.log.Println("GetMessageGroup:", err)
		c.queueMessage(ErrInternalError(msg.Id))
		return
	}

	if groupHasUser(group, recipient.Username) {
		// recipient is actively viewing the thread, mark as already seen
		message.ReadAt = sql.NullTime{Time: Now(), Valid: true}
		h.stats.Incr(MetricMessagesRead)
	} else if conns := h.tracker.GetConnections(recipient.Username); len(conns) > 0 {
		// recipient is online elsewhere, alert their other connections
		h.fanOut(conns, NewMessageReceived(sender.Username, sender.DisplayName))
		h.stats.Incr(MetricPresenceNotifications)
	}

	saved, err := h.db.AddMessage(message)
	if err != nil {
		h.log.Println("AddMessage:", err)
		c.queueMessage(ErrSendFailed(msg.Id))
		return
	}

	c.queueMessage(NoErrAccepted(msg.Id))
	h.stats.Incr(MetricMessagesSent)

	if group != nil {
		dto := messageDto(saved)
		h.fanOut(connectionIds(group), NewMessage(msg.Id, &dto))
	}
}

// Shutdown stops every connected client.
func (h *MessageHub) Shutdown() {
	h.clientsLock.Lock()
	defer h.clientsLock.Unlock()

	h.log.Println("stopping clients")
	for _, c := range h.clients {
		c.stopClient()
	}
}

func (h *MessageHub) addClient(c *Client) {
	h.clientsLock.Lock()
	defer h.clientsLock.Unlock()
	h.clients[c.id] = c
}

// dropClient releases all in-memory state for the connection and reports
// whether the connection was still known to the hub.
func (h *MessageHub) dropClient(c *Client) bool {
	h.clientsLock.Lock()
	_, ok := h.clients[c.id]
	delete(h.clients, c.id)
	h.clientsLock.Unlock()

	if !ok {
		return false
	}

	h.registry.Remove(c.id)
	if h.tracker.Disconnect(c.user.Username, c.id) {
		h.stats.Decr(MetricOnlineUsers)
	}
	h.stats.Decr(MetricActiveConnections)

	return true
}

// broadcastGroup fans a membership update out to every connection in the
// group.
func (h *MessageHub) broadcastGroup(group *database.Group, msg *ServerMessage) {
	h.fanOut(connectionIds(group), msg)
	h.stats.Incr(MetricGroupUpdatesBroadcast)
}

// fanOut delivers one message to each of the given connection ids that is
// attached to this hub.
func (h *MessageHub) fanOut(connectionIds []string, msg *ServerMessage) {
	h.clientsLock.RLock()
	defer h.clientsLock.RUnlock()

	for _, id := range connectionIds {
		if c, ok := h.clients[id]; ok {
			c.queueMessage(msg)
		}
	}
}

func groupHasUser(group *database.Group, username string) bool {
	if group == nil {
		return false
	}

	return lo.SomeBy(group.Connections, func(c database.Connection) bool {
		return strings.EqualFold(c.Username, username)
	})
}

func connectionIds(group *database.Group) []string {
	if group == nil {
		return nil
	}

	return lo.Map(group.Connections, func(c database.Connection, _ int) string {
		return c.Id
	})
}

func groupSnapshot(group *database.Group) *types.GroupSnapshot {
	return &types.GroupSnapshot{
		Name: group.Name,
		Connections: lo.Map(group.Connections, func(c database.Connection, _ int) types.GroupConnection {
			return types.GroupConnection{Id: c.Id, Username: c.Username}
		}),
	}
}

func messageDto(m database.Message) types.Message {
	dto := types.Message{
		Id:                m.ExternalId,
		SenderUsername:    m.SenderUsername,
		RecipientUsername: m.RecipientUsername,
		Content:           m.Content,
		CreatedAt:         m.CreatedAt,
	}
	if m.ReadAt.Valid {
		readAt := m.ReadAt.Time
		dto.ReadAt = &readAt
	}

	return dto
}

func messageDtos(msgs []database.Message) []types.Message {
	return lo.Map(msgs, func(m database.Message, _ int) types.Message {
		return messageDto(m)
	})
}
