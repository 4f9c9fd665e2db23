package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGrace = 30 * time.Millisecond

// startMatch runs both players through registration and matchmaking and
// returns the started room's id.
func startMatch(t *testing.T, h *Hub, a, b *fakeConn) string {
	t.Helper()

	h.RegisterUser("u1", a)
	h.RegisterUser("u2", b)

	h.FindMatch(FindMatchPayload{TableID: "table_100", User: testUser("u1", "Alice"), BetAmount: 100}, a)
	h.FindMatch(FindMatchPayload{TableID: "table_100", User: testUser("u2", "Bob"), BetAmount: 100}, b)

	starts := a.sent(EventGameStart)
	require.Len(t, starts, 1)

	start, ok := starts[0].Payload.(GameStartPayload)
	require.True(t, ok)
	return start.RoomID
}

func TestHubMatchFlow(t *testing.T) {
	store := newFakeProfileStore()
	h := NewHub(store, testGrace)
	defer h.Shutdown()

	connA, connB := newFakeConn(), newFakeConn()
	h.RegisterUser("u1", connA)
	h.RegisterUser("u2", connB)

	h.FindMatch(FindMatchPayload{TableID: "table_100", User: testUser("u1", "Alice"), BetAmount: 100}, connA)
	require.Equal(t, 1, connA.count(EventWaitingForOpponent))

	h.FindMatch(FindMatchPayload{TableID: "table_100", User: testUser("u2", "Bob"), BetAmount: 100}, connB)

	require.Equal(t, 1, connA.count(EventGameStart))
	require.Equal(t, 1, connB.count(EventGameStart))

	start := connA.sent(EventGameStart)[0].Payload.(GameStartPayload)
	assert.Equal(t, "u1", start.White.ID, "waiting player takes white")
	assert.Equal(t, "u2", start.Black.ID)
	assert.Equal(t, int64(100), start.BetAmount)
	assert.True(t, strings.HasPrefix(start.RoomID, "match_table_100_"))
	assert.Len(t, start.Players, 2)
}

func TestHubMoveRelay(t *testing.T) {
	h := NewHub(newFakeProfileStore(), testGrace)
	defer h.Shutdown()

	connA, connB := newFakeConn(), newFakeConn()
	roomID := startMatch(t, h, connA, connB)

	h.MakeMove(MovePayload{RoomID: roomID, Move: rawJSON(map[string]string{"from": "e2", "to": "e4"}), FEN: "after-e4"}, connA)

	require.Equal(t, 1, connB.count(EventReceiveMove))
	assert.Zero(t, connA.count(EventReceiveMove), "moves are not echoed to the sender")

	move := connB.sent(EventReceiveMove)[0].Payload.(ReceiveMovePayload)
	assert.Equal(t, "after-e4", move.FEN)
}

func TestHubGameOverSettlesOnce(t *testing.T) {
	store := newFakeProfileStore()
	store.seed("u1", 1, 0)
	store.seed("u2", 1, 0)

	h := NewHub(store, testGrace)
	defer h.Shutdown()

	connA, connB := newFakeConn(), newFakeConn()
	roomID := startMatch(t, h, connA, connB)

	h.GameOver(GameOverPayload{RoomID: roomID, WinnerID: "u2"})
	h.GameOver(GameOverPayload{RoomID: roomID, WinnerID: "u2"})
	h.GameOver(GameOverPayload{RoomID: roomID, WinnerID: "u1"})

	assert.Equal(t, 1, store.winCount())
	assert.Equal(t, 1, store.lossCount())
	assert.Equal(t, "u2", store.wins[0].UserID)
	assert.Equal(t, "u1", store.losses[0].UserID)
}

func TestHubDisconnectForfeitAfterGrace(t *testing.T) {
	store := newFakeProfileStore()
	store.seed("u1", 1, 0)
	store.seed("u2", 1, 0)

	h := NewHub(store, testGrace)
	defer h.Shutdown()

	connA, connB := newFakeConn(), newFakeConn()
	startMatch(t, h, connA, connB)

	h.Disconnect(connA)

	// The remaining player hears about the grace period immediately.
	require.Equal(t, 1, connB.count(EventOpponentReconnecting))
	reconnecting := connB.sent(EventOpponentReconnecting)[0].Payload.(OpponentReconnectingPayload)
	assert.Equal(t, 0, reconnecting.TimeLeft, "sub-second test grace rounds to zero seconds")

	require.Eventually(t, func() bool {
		return connB.count(EventOpponentDisconnected) == 1
	}, time.Second, 5*time.Millisecond)

	forfeited := connB.sent(EventOpponentDisconnected)[0].Payload.(OpponentDisconnectedPayload)
	assert.Equal(t, "u2", forfeited.Winner.ID)
	assert.Equal(t, int64(100), forfeited.BetAmount)
	assert.Equal(t, "Opponent Disconnected", forfeited.Reason)

	assert.Equal(t, 1, store.winCount())
	assert.Equal(t, "u2", store.wins[0].UserID)
	assert.Equal(t, 1, store.lossCount())
	assert.Equal(t, "u1", store.losses[0].UserID)
}

func TestHubRejoinWithinGraceAvoidsForfeit(t *testing.T) {
	store := newFakeProfileStore()
	store.seed("u1", 1, 0)
	store.seed("u2", 1, 0)

	h := NewHub(store, 80*time.Millisecond)
	defer h.Shutdown()

	connA, connB := newFakeConn(), newFakeConn()
	roomID := startMatch(t, h, connA, connB)

	h.Disconnect(connA)

	freshConn := newFakeConn()
	h.RejoinGame(RejoinPayload{UserID: "u1"}, freshConn)

	require.Equal(t, 1, connB.count(EventOpponentRejoined))
	require.Equal(t, 1, freshConn.count(EventOpponentRejoined))

	// Past the original deadline: no forfeit happened.
	time.Sleep(120 * time.Millisecond)
	assert.Zero(t, connB.count(EventOpponentDisconnected))
	assert.Zero(t, store.winCount())
	assert.Zero(t, store.lossCount())

	// The game continues on the fresh connection.
	h.MakeMove(MovePayload{RoomID: roomID, Move: rawJSON("e4"), FEN: "fen"}, connB)
	assert.Equal(t, 1, freshConn.count(EventReceiveMove))
}

func TestHubRepeatedDisconnectForfeitsOnce(t *testing.T) {
	store := newFakeProfileStore()
	store.seed("u1", 1, 0)
	store.seed("u2", 1, 0)

	h := NewHub(store, 40*time.Millisecond)
	defer h.Shutdown()

	connA, connB := newFakeConn(), newFakeConn()
	startMatch(t, h, connA, connB)

	h.Disconnect(connA)

	second := newFakeConn()
	h.RejoinGame(RejoinPayload{UserID: "u1"}, second)
	h.Disconnect(second)

	require.Eventually(t, func() bool {
		return connB.count(EventOpponentDisconnected) >= 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, connB.count(EventOpponentDisconnected))
	assert.Equal(t, 1, store.winCount())
	assert.Equal(t, 1, store.lossCount())
}

func TestHubLeaveMatchForfeitsLeaver(t *testing.T) {
	store := newFakeProfileStore()
	store.seed("u1", 1, 0)
	store.seed("u2", 1, 0)

	h := NewHub(store, testGrace)
	defer h.Shutdown()

	connA, connB := newFakeConn(), newFakeConn()
	roomID := startMatch(t, h, connA, connB)

	h.LeaveMatch(LeaveMatchPayload{RoomID: roomID}, connA)

	require.Equal(t, 1, connB.count(EventOpponentDisconnected))
	payload := connB.sent(EventOpponentDisconnected)[0].Payload.(OpponentDisconnectedPayload)
	assert.Equal(t, "u2", payload.Winner.ID)

	assert.Equal(t, 1, store.winCount())
	assert.Equal(t, "u2", store.wins[0].UserID)
}

func TestHubDisconnectWhileWaitingClearsQueue(t *testing.T) {
	h := NewHub(newFakeProfileStore(), testGrace)
	defer h.Shutdown()

	connA := newFakeConn()
	h.RegisterUser("u1", connA)
	h.FindMatch(FindMatchPayload{TableID: "table_100", User: testUser("u1", "Alice"), BetAmount: 100}, connA)

	h.Disconnect(connA)

	// A later arrival finds an empty tier, not the ghost.
	connB := newFakeConn()
	h.RegisterUser("u2", connB)
	h.FindMatch(FindMatchPayload{TableID: "table_100", User: testUser("u2", "Bob"), BetAmount: 100}, connB)

	assert.Equal(t, 1, connB.count(EventWaitingForOpponent))
	assert.Zero(t, connB.count(EventGameStart))
}

func TestHubJoinRoomFlow(t *testing.T) {
	h := NewHub(newFakeProfileStore(), testGrace)
	defer h.Shutdown()

	host, guest, third := newFakeConn(), newFakeConn(), newFakeConn()

	h.JoinRoom(JoinRoomPayload{RoomID: "ABC123", User: testUser("u1", "Alice"), BetAmount: 50}, host)
	assert.Zero(t, host.count(EventGameStart))

	h.JoinRoom(JoinRoomPayload{RoomID: "ABC123", User: testUser("u2", "Bob"), BetAmount: 50}, guest)
	require.Equal(t, 1, host.count(EventGameStart))
	require.Equal(t, 1, guest.count(EventGameStart))

	start := guest.sent(EventGameStart)[0].Payload.(GameStartPayload)
	assert.Equal(t, "u1", start.White.ID, "host takes white")
	assert.Equal(t, "u2", start.Black.ID)

	h.JoinRoom(JoinRoomPayload{RoomID: "ABC123", User: testUser("u3", "Carol"), BetAmount: 50}, third)
	assert.Equal(t, 1, third.count(EventRoomFull))
	assert.Zero(t, third.count(EventGameStart))
}

func TestHubChallengeRelay(t *testing.T) {
	h := NewHub(newFakeProfileStore(), testGrace)
	defer h.Shutdown()

	challenger, target := newFakeConn(), newFakeConn()
	h.RegisterUser("u1", challenger)
	h.RegisterUser("u2", target)

	h.SendChallenge(ChallengePayload{
		FromUser: testUser("u1", "Alice"),
		ToUserID: "u2",
		Amount:   100,
		RoomCode: "ABC123",
	})

	require.Equal(t, 1, target.count(EventReceiveChallenge))
	received := target.sent(EventReceiveChallenge)[0].Payload.(ReceiveChallengePayload)
	assert.Equal(t, "u1", received.FromUser.ID)
	assert.Equal(t, "ABC123", received.RoomCode)
	assert.NotEmpty(t, received.ChallengeID)

	h.RejectChallenge(RejectChallengePayload{TargetUserID: "u1", RoomCode: "ABC123", RejectorName: "Bob"})
	require.Equal(t, 1, challenger.count(EventChallengeRejected))
	rejected := challenger.sent(EventChallengeRejected)[0].Payload.(ChallengeRejectedPayload)
	assert.Equal(t, "Bob", rejected.UserName)

	// Offline target: dropped, nothing delivered anywhere.
	h.SendChallenge(ChallengePayload{FromUser: testUser("u1", "Alice"), ToUserID: "offline", Amount: 100})
	assert.Equal(t, 1, target.count(EventReceiveChallenge))
}

func TestHubOnlineStatuses(t *testing.T) {
	h := NewHub(newFakeProfileStore(), testGrace)
	defer h.Shutdown()

	connA, asker := newFakeConn(), newFakeConn()
	h.RegisterUser("u1", connA)

	h.OnlineStatuses([]string{"u1", "u9"}, asker)

	results := asker.sent(EventOnlineStatusResult)
	require.Len(t, results, 1)

	statuses := results[0].Payload.([]OnlineStatusEntry)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].IsOnline)
	assert.False(t, statuses[1].IsOnline)
}
