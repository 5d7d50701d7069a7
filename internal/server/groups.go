package server

import (
	"log"
	"slices"
	"strings"

	"github.com/npezzotti/go-dmhub/internal/database"
)

// groupNameDelimiter separates the two usernames in a canonical group name.
// Usernames may not contain it, enforced at registration.
const groupNameDelimiter = "-"

// CanonicalGroupName derives the conversation group name for two usernames.
// It is order-independent: both participants resolve the same name regardless
// of which side initiated. The ordinally greater username comes first.
func CanonicalGroupName(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		return userA + groupNameDelimiter + userB
	}
	return userB + groupNameDelimiter + userA
}

// ConversationGroupStore manages persisted group membership. It relies on the
// repository's transaction discipline for consistency; a connection belongs
// to at most one group at a time.
type ConversationGroupStore struct {
	db  database.DmHubRepository
	log *log.Logger
}

func NewConversationGroupStore(logger *log.Logger, db database.DmHubRepository) *ConversationGroupStore {
	return &ConversationGroupStore{
		db:  db,
		log: logger,
	}
}

// GetOrCreateGroup fetches the persisted group by name, creating an empty one
// if this is the first join for the conversation.
func (s *ConversationGroupStore) GetOrCreateGroup(name string) (*database.Group, error) {
	group, err := s.db.GetMessageGroup(name)
	if err != nil {
		return nil, newPersistenceError("failed to fetch group", err)
	}

	if group == nil {
		group, err = s.db.AddGroup(name)
		if err != nil {
			return nil, newPersistenceError("failed to create group", err)
		}
	}

	return group, nil
}

// AddConnection adds a connection to the named group and returns the group
// with its updated membership. On failure the join must be aborted and no
// membership update broadcast.
func (s *ConversationGroupStore) AddConnection(groupName string, conn database.Connection) (*database.Group, error) {
	group, err := s.GetOrCreateGroup(groupName)
	if err != nil {
		return nil, err
	}

	if err := s.db.AddConnection(groupName, conn); err != nil {
		return nil, newPersistenceError("failed to join group", err)
	}
	group.Connections = append(group.Connections, conn)

	return group, nil
}

// RemoveConnectionByConnectionId removes the connection from the group that
// currently contains it and returns the group with its remaining membership.
// A connection that never joined a group is a protocol error, not a fault.
func (s *ConversationGroupStore) RemoveConnectionByConnectionId(connectionId string) (*database.Group, error) {
	group, err := s.db.GetGroupForConnection(connectionId)
	if err != nil {
		return nil, newProtocolError("no group for connection", err)
	}

	if err := s.db.RemoveConnection(connectionId); err != nil {
		return nil, newPersistenceError("failed to remove from group", err)
	}

	group.Connections = slices.DeleteFunc(group.Connections, func(c database.Connection) bool {
		return c.Id == connectionId
	})

	return group, nil
}
