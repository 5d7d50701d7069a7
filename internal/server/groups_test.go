package server

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/npezzotti/go-dmhub/internal/database"
	"github.com/npezzotti/go-dmhub/internal/testutil"
)

func TestCanonicalGroupName(t *testing.T) {
	tcases := []struct {
		name     string
		userA    string
		userB    string
		expected string
	}{
		{
			name:     "greater username first",
			userA:    "alice",
			userB:    "bob",
			expected: "bob-alice",
		},
		{
			name:     "case sensitive ordinal compare",
			userA:    "Alice",
			userB:    "alice",
			expected: "alice-Alice",
		},
		{
			name:     "prefix usernames",
			userA:    "al",
			userB:    "alice",
			expected: "alice-al",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CanonicalGroupName(tc.userA, tc.userB))
			assert.Equal(t, CanonicalGroupName(tc.userA, tc.userB), CanonicalGroupName(tc.userB, tc.userA),
				"expected canonical name to be order-independent")
		})
	}
}

func TestCanonicalGroupName_DistinctPairs(t *testing.T) {
	// distinct unordered pairs must never collide
	names := map[string]struct{}{
		CanonicalGroupName("alice", "bob"):   {},
		CanonicalGroupName("alice", "carol"): {},
		CanonicalGroupName("bob", "carol"):   {},
	}
	assert.Len(t, names, 3, "expected distinct pairs to produce distinct names")
}

func TestGetOrCreateGroup(t *testing.T) {
	t.Run("returns existing group", func(t *testing.T) {
		repo := &database.MockDmHubRepository{}
		existing := &database.Group{Id: 1, Name: "bob-alice"}
		repo.On("GetMessageGroup", "bob-alice").Return(existing, nil).Once()

		store := NewConversationGroupStore(testutil.TestLogger(t), repo)
		group, err := store.GetOrCreateGroup("bob-alice")
		assert.NoError(t, err)
		assert.Equal(t, existing, group)
		repo.AssertExpectations(t)
	})

	t.Run("creates group on first join", func(t *testing.T) {
		repo := &database.MockDmHubRepository{}
		created := &database.Group{Id: 1, Name: "bob-alice"}
		repo.On("GetMessageGroup", "bob-alice").Return(nil, nil).Once()
		repo.On("AddGroup", "bob-alice").Return(created, nil).Once()

		store := NewConversationGroupStore(testutil.TestLogger(t), repo)
		group, err := store.GetOrCreateGroup("bob-alice")
		assert.NoError(t, err)
		assert.Equal(t, created, group)
		repo.AssertExpectations(t)
	})

	t.Run("reports persistence failure", func(t *testing.T) {
		repo := &database.MockDmHubRepository{}
		repo.On("GetMessageGroup", "bob-alice").Return(nil, errors.New("db down")).Once()

		store := NewConversationGroupStore(testutil.TestLogger(t), repo)
		_, err := store.GetOrCreateGroup("bob-alice")
		assert.Error(t, err)
		kind, ok := KindOf(err)
		assert.True(t, ok, "expected a HubError")
		assert.Equal(t, KindPersistence, kind)
	})
}

func TestAddConnection(t *testing.T) {
	t.Run("adds connection to group", func(t *testing.T) {
		repo := &database.MockDmHubRepository{}
		repo.On("GetMessageGroup", "bob-alice").Return(&database.Group{Id: 1, Name: "bob-alice"}, nil).Once()
		conn := database.Connection{Id: "conn-1", Username: "alice"}
		repo.On("AddConnection", "bob-alice", conn).Return(nil).Once()

		store := NewConversationGroupStore(testutil.TestLogger(t), repo)
		group, err := store.AddConnection("bob-alice", conn)
		assert.NoError(t, err)
		assert.Equal(t, []database.Connection{conn}, group.Connections,
			"expected returned group to include the new connection")
		repo.AssertExpectations(t)
	})

	t.Run("commit failure aborts join", func(t *testing.T) {
		repo := &database.MockDmHubRepository{}
		repo.On("GetMessageGroup", "bob-alice").Return(&database.Group{Id: 1, Name: "bob-alice"}, nil).Once()
		conn := database.Connection{Id: "conn-1", Username: "alice"}
		repo.On("AddConnection", "bob-alice", conn).Return(errors.New("commit failed")).Once()

		store := NewConversationGroupStore(testutil.TestLogger(t), repo)
		group, err := store.AddConnection("bob-alice", conn)
		assert.Error(t, err)
		assert.Nil(t, group, "expected no group on failed join")
		kind, _ := KindOf(err)
		assert.Equal(t, KindPersistence, kind)
	})
}

func TestRemoveConnectionByConnectionId(t *testing.T) {
	t.Run("removes connection from its group", func(t *testing.T) {
		repo := &database.MockDmHubRepository{}
		repo.On("GetGroupForConnection", "conn-1").Return(&database.Group{
			Id:   1,
			Name: "bob-alice",
			Connections: []database.Connection{
				{Id: "conn-1", Username: "alice"},
				{Id: "conn-2", Username: "bob"},
			},
		}, nil).Once()
		repo.On("RemoveConnection", "conn-1").Return(nil).Once()

		store := NewConversationGroupStore(testutil.TestLogger(t), repo)
		group, err := store.RemoveConnectionByConnectionId("conn-1")
		assert.NoError(t, err)
		assert.Equal(t, []database.Connection{{Id: "conn-2", Username: "bob"}}, group.Connections,
			"expected returned group to exclude the removed connection")
		repo.AssertExpectations(t)
	})

	t.Run("connection not in any group", func(t *testing.T) {
		repo := &database.MockDmHubRepository{}
		repo.On("GetGroupForConnection", "conn-1").Return(nil, sql.ErrNoRows).Once()

		store := NewConversationGroupStore(testutil.TestLogger(t), repo)
		_, err := store.RemoveConnectionByConnectionId("conn-1")
		assert.Error(t, err)
		kind, _ := KindOf(err)
		assert.Equal(t, KindProtocol, kind, "expected disconnect-before-join to be a protocol error")
	})

	t.Run("commit failure", func(t *testing.T) {
		repo := &database.MockDmHubRepository{}
		repo.On("GetGroupForConnection", "conn-1").Return(&database.Group{
			Id:          1,
			Name:        "bob-alice",
			Connections: []database.Connection{{Id: "conn-1", Username: "alice"}},
		}, nil).Once()
		repo.On("RemoveConnection", "conn-1").Return(errors.New("commit failed")).Once()

		store := NewConversationGroupStore(testutil.TestLogger(t), repo)
		_, err := store.RemoveConnectionByConnectionId("conn-1")
		assert.Error(t, err)
		kind, _ := KindOf(err)
		assert.Equal(t, KindPersistence, kind)
	})
}
