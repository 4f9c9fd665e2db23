package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomStoreJoinLifecycle(t *testing.T) {
	s := NewRoomStore()
	hostConn, guestConn := newFakeConn(), newFakeConn()

	outcome := s.Join("ABC123", testUser("u1", "Alice"), hostConn, 100)
	require.Equal(t, JoinCreated, outcome.Result)
	assert.Empty(t, outcome.Notify)

	info, ok := s.Get("ABC123")
	require.True(t, ok)
	assert.Equal(t, StatusAwaitingSecondPlayer, info.Status)
	require.Len(t, info.Participants, 1)
	assert.Equal(t, ColorWhite, info.Participants[0].Color)

	outcome = s.Join("ABC123", testUser("u2", "Bob"), guestConn, 100)
	require.Equal(t, JoinStarted, outcome.Result)
	require.Len(t, outcome.Notify, 2)
	assert.Equal(t, "u1", outcome.Start.White.ID)
	assert.Equal(t, "u2", outcome.Start.Black.ID)
	assert.Equal(t, "ABC123", outcome.Start.RoomID)
	assert.Equal(t, int64(100), outcome.Start.BetAmount)

	info, ok = s.Get("ABC123")
	require.True(t, ok)
	assert.Equal(t, StatusActive, info.Status)
}

func TestRoomStoreRejectsThirdPlayer(t *testing.T) {
	s := NewRoomStore()

	s.Join("ABC123", testUser("u1", "Alice"), newFakeConn(), 100)
	s.Join("ABC123", testUser("u2", "Bob"), newFakeConn(), 100)

	outcome := s.Join("ABC123", testUser("u3", "Carol"), newFakeConn(), 100)
	assert.Equal(t, JoinRoomFull, outcome.Result)

	info, ok := s.Get("ABC123")
	require.True(t, ok)
	require.Len(t, info.Participants, 2)
	assert.Equal(t, "u1", info.Participants[0].UserID)
	assert.Equal(t, "u2", info.Participants[1].UserID)
}

func TestRoomStoreRejoinRefreshesConnection(t *testing.T) {
	s := NewRoomStore()
	guestConn := newFakeConn()

	s.Join("ABC123", testUser("u1", "Alice"), newFakeConn(), 100)
	s.Join("ABC123", testUser("u2", "Bob"), guestConn, 100)

	freshConn := newFakeConn()
	outcome := s.Join("ABC123", testUser("u2", "Bob"), freshConn, 100)
	require.Equal(t, JoinRejoined, outcome.Result)
	// The running game is re-announced to both so the rejoiner can resync.
	require.Len(t, outcome.Notify, 2)
	assert.Contains(t, outcome.Notify, Sender(freshConn))

	// Moves from the host now reach the fresh connection.
	target, ok := s.RelayTarget("ABC123", outcome.Notify[0])
	require.True(t, ok)
	assert.Same(t, freshConn, target)
}

func TestRoomStoreRelayTarget(t *testing.T) {
	s := NewRoomStore()
	white, black := newFakeConn(), newFakeConn()
	s.CreateActive("match_1", testUser("u1", "Alice"), white, testUser("u2", "Bob"), black, 100)

	t.Run("forwards to the opponent", func(t *testing.T) {
		target, ok := s.RelayTarget("match_1", white)
		require.True(t, ok)
		assert.Same(t, black, target)

		target, ok = s.RelayTarget("match_1", black)
		require.True(t, ok)
		assert.Same(t, white, target)
	})

	t.Run("drops moves from non-participants", func(t *testing.T) {
		_, ok := s.RelayTarget("match_1", newFakeConn())
		assert.False(t, ok)
	})

	t.Run("drops moves for unknown rooms", func(t *testing.T) {
		_, ok := s.RelayTarget("no_such_room", white)
		assert.False(t, ok)
	})

	t.Run("drops moves while a player is reconnecting", func(t *testing.T) {
		_, _, ok := s.MarkReconnecting("u2", black)
		require.True(t, ok)

		_, ok = s.RelayTarget("match_1", white)
		assert.False(t, ok)
	})
}

func TestRoomStoreCloseWithWinner(t *testing.T) {
	s := NewRoomStore()
	white, black := newFakeConn(), newFakeConn()
	s.CreateActive("match_1", testUser("u1", "Alice"), white, testUser("u2", "Bob"), black, 250)

	closed, ok := s.CloseWithWinner("match_1", "u2")
	require.True(t, ok)
	assert.Equal(t, "u2", closed.Winner.ID)
	assert.Equal(t, "u1", closed.Loser.ID)
	assert.Equal(t, int64(250), closed.Bet)
	assert.Same(t, black, closed.WinnerConn)
	assert.Same(t, white, closed.LoserConn)
	assert.Equal(t, 0, s.Len())

	// Second close for the same room finds nothing.
	_, ok = s.CloseWithWinner("match_1", "u2")
	assert.False(t, ok)
}

func TestRoomStoreCloseRequiresKnownWinner(t *testing.T) {
	s := NewRoomStore()
	s.CreateActive("match_1", testUser("u1", "Alice"), newFakeConn(), testUser("u2", "Bob"), newFakeConn(), 100)

	_, ok := s.CloseWithWinner("match_1", "stranger")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestRoomStoreMarkReconnectingAndRejoin(t *testing.T) {
	s := NewRoomStore()
	white, black := newFakeConn(), newFakeConn()
	s.CreateActive("match_1", testUser("u1", "Alice"), white, testUser("u2", "Bob"), black, 100)

	roomID, opponent, ok := s.MarkReconnecting("u1", white)
	require.True(t, ok)
	assert.Equal(t, "match_1", roomID)
	assert.Same(t, black, opponent)

	info, _ := s.Get("match_1")
	assert.Equal(t, StatusSettlingDisconnect, info.Status)

	freshConn := newFakeConn()
	notify, ok := s.Rejoin("match_1", "u1", freshConn)
	require.True(t, ok)
	require.Len(t, notify, 2)
	assert.Same(t, black, notify[0])
	assert.Same(t, freshConn, notify[1])

	info, _ = s.Get("match_1")
	assert.Equal(t, StatusActive, info.Status)
}

func TestRoomStoreMarkReconnectingIgnoresStaleConnection(t *testing.T) {
	s := NewRoomStore()
	oldConn, black := newFakeConn(), newFakeConn()
	s.CreateActive("match_1", testUser("u1", "Alice"), oldConn, testUser("u2", "Bob"), black, 100)

	// The player already rebound to a fresh connection.
	_, ok := s.Rejoin("match_1", "u1", newFakeConn())
	require.True(t, ok)

	// The old connection's teardown must not trip the grace period.
	_, _, ok = s.MarkReconnecting("u1", oldConn)
	assert.False(t, ok)

	info, _ := s.Get("match_1")
	assert.Equal(t, StatusActive, info.Status)
}

func TestRoomStoreSweepAwaiting(t *testing.T) {
	s := NewRoomStore()
	hostConn := newFakeConn()

	s.Join("ABC123", testUser("u1", "Alice"), hostConn, 100)

	white, black := newFakeConn(), newFakeConn()
	s.CreateActive("match_1", testUser("u2", "Bob"), white, testUser("u3", "Carol"), black, 100)

	s.SweepAwaiting(hostConn)

	_, ok := s.Get("ABC123")
	assert.False(t, ok)

	// Active rooms are untouched.
	_, ok = s.Get("match_1")
	assert.True(t, ok)
}
