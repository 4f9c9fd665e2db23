package game

import (
	"context"
	"time"

	"chessarena/internal/app/user"
	"chessarena/internal/pkg/logx"
	"chessarena/internal/pkg/randx"
)

// Hub is the message-handling surface of the real-time core. Connection
// handlers translate incoming frames into Hub calls; the Hub drives presence,
// matchmaking, rooms, challenges, the disconnect coordinator, and settlement.
//
// Every failure mode in here is either a silent no-op or a one-sided signal
// to the caller. Nothing propagates an error back across a connection
// boundary, so one misbehaving client can never corrupt state for its
// opponent.
type Hub struct {
	presence  *Registry
	queue     *Matchmaker
	rooms     *RoomStore
	reconnect *Coordinator
	relay     *ChallengeRelay
	settler   *Settler
}

// NewHub wires the real-time core together. A non-positive grace falls back
// to DefaultGracePeriod.
func NewHub(store ProfileStore, grace time.Duration) *Hub {
	h := &Hub{
		presence: NewRegistry(),
		queue:    NewMatchmaker(),
		rooms:    NewRoomStore(),
		settler:  NewSettler(store),
	}
	h.relay = NewChallengeRelay(h.presence)
	h.reconnect = NewCoordinator(grace, h.forfeit)
	return h
}

// RegisterUser binds the user id to its live connection.
func (h *Hub) RegisterUser(userID string, conn Sender) {
	h.presence.Register(userID, conn)
	logx.Info("User registered", "userId", userID)
}

// OnlineStatuses answers a presence query for the given user ids.
func (h *Hub) OnlineStatuses(userIDs []string, conn Sender) {
	_ = conn.Send(EventOnlineStatusResult, h.presence.Statuses(userIDs))
}

// FindMatch runs the stake-tier pairing step. A waiting opponent means a room
// starts immediately, the waiting player as white; otherwise the caller parks
// in the tier's slot. A repeat request from the player already waiting is
// ignored.
func (h *Hub) FindMatch(p FindMatchPayload, conn Sender) {
	live := func(e *WaitingEntry) bool {
		current, ok := h.presence.Lookup(e.User.ID)
		return ok && current == e.Conn
	}

	waiting, outcome := h.queue.FindMatch(p.TableID, p.User, conn, live)
	switch outcome {
	case OutcomeWaiting:
		_ = conn.Send(EventWaitingForOpponent, struct{}{})

	case OutcomeMatched:
		roomID := randx.MatchRoomID(p.TableID)
		h.rooms.CreateActive(roomID, waiting.User, waiting.Conn, p.User, conn, p.BetAmount)

		start := GameStartPayload{
			White:     waiting.User,
			Black:     p.User,
			RoomID:    roomID,
			BetAmount: p.BetAmount,
			Players:   []user.User{waiting.User, p.User},
		}
		_ = waiting.Conn.Send(EventGameStart, start)
		_ = conn.Send(EventGameStart, start)

		logx.Info("Match formed", "roomId", roomID, "tableId", p.TableID,
			"white", waiting.User.ID, "black", p.User.ID, "bet", p.BetAmount)

	case OutcomeIgnored:
		// Already waiting on this tier.
	}
}

// CancelSearch clears the caller's waiting slot on the tier, if it owns it.
func (h *Hub) CancelSearch(p CancelSearchPayload, conn Sender) {
	h.queue.Cancel(p.TableID, conn)
}

// JoinRoom joins or creates a coded room. The second distinct player starts
// the game; a third gets room_full. A participant re-joining only refreshes
// its connection and gets the game re-announced.
func (h *Hub) JoinRoom(p JoinRoomPayload, conn Sender) {
	outcome := h.rooms.Join(p.RoomID, p.User, conn, p.BetAmount)

	switch outcome.Result {
	case JoinRoomFull:
		_ = conn.Send(EventRoomFull, struct{}{})
		return
	case JoinStarted:
		logx.Info("Room started", "roomId", p.RoomID, "bet", p.BetAmount)
	}

	for _, target := range outcome.Notify {
		_ = target.Send(EventGameStart, outcome.Start)
	}
}

// MakeMove forwards a move to the sender's opponent. Unknown rooms, inactive
// rooms, and senders that are not participants are silently dropped.
func (h *Hub) MakeMove(p MovePayload, conn Sender) {
	target, ok := h.rooms.RelayTarget(p.RoomID, conn)
	if !ok {
		return
	}

	_ = target.Send(EventReceiveMove, ReceiveMovePayload{Move: p.Move, FEN: p.FEN})
}

// GameOver settles the finished game. Duplicate reports for the same room are
// ignored; the first one wins and settles exactly once.
func (h *Hub) GameOver(p GameOverPayload) {
	closed, ok := h.rooms.CloseWithWinner(p.RoomID, p.WinnerID)
	if !ok {
		return
	}

	h.settle(closed)

	logx.Info("Game over", "roomId", p.RoomID, "winner", closed.Winner.ID, "bet", closed.Bet)
}

// LeaveMatch resigns the caller from its running game; the opponent wins the
// stake and is told the game ended by departure.
func (h *Hub) LeaveMatch(p LeaveMatchPayload, conn Sender) {
	leaver, ok := h.rooms.ParticipantByConn(p.RoomID, conn)
	if !ok {
		return
	}

	h.finishByExit(p.RoomID, leaver.ID)
}

// SendChallenge relays a friend challenge to an online target. An offline
// target drops it silently.
func (h *Hub) SendChallenge(p ChallengePayload) {
	h.relay.SendChallenge(p)
}

// RejectChallenge notifies the challenger of the rejection.
func (h *Hub) RejectChallenge(p RejectChallengePayload) {
	h.relay.RejectChallenge(p)
}

// SendFriendRequest relays a friend request to an online target.
func (h *Hub) SendFriendRequest(p FriendRequestPayload) {
	h.relay.SendFriendRequest(p)
}

// AcceptFriendRequest notifies the requester of the acceptance.
func (h *Hub) AcceptFriendRequest(p FriendRequestPayload) {
	h.relay.AcceptFriendRequest(p)
}

// RejoinGame resumes a game for a player who reconnected within the grace
// period: the forfeit timer is disarmed, the room is rebound to the new
// connection, and both sides hear opponent_rejoined. Outside a grace period
// it only re-registers presence.
func (h *Hub) RejoinGame(p RejoinPayload, conn Sender) {
	h.presence.Register(p.UserID, conn)

	roomID, ok := h.reconnect.Cancel(p.UserID)
	if !ok {
		return
	}

	notify, ok := h.rooms.Rejoin(roomID, p.UserID, conn)
	if !ok {
		return
	}

	for _, target := range notify {
		_ = target.Send(EventOpponentRejoined, OpponentRejoinedPayload{UserID: p.UserID})
	}

	logx.Info("Player rejoined", "userId", p.UserID, "roomId", roomID)
}

// Disconnect handles a dropped connection: presence and queue entries owned
// by it are swept, and if the player was mid-game the room enters the grace
// period, a forfeit timer is armed, and the opponent is told how long it has.
func (h *Hub) Disconnect(conn Sender) {
	h.queue.RemoveConn(conn)
	h.rooms.SweepAwaiting(conn)

	userID, ok := h.presence.Unregister(conn)
	if !ok {
		return
	}

	roomID, opponent, inGame := h.rooms.MarkReconnecting(userID, conn)
	if !inGame {
		return
	}

	h.reconnect.Start(userID, roomID)
	if opponent != nil {
		_ = opponent.Send(EventOpponentReconnecting,
			OpponentReconnectingPayload{TimeLeft: h.reconnect.GraceSeconds()})
	}

	logx.Info("Player disconnected mid-game", "userId", userID, "roomId", roomID,
		"graceSeconds", h.reconnect.GraceSeconds())
}

// Shutdown disarms all pending forfeit timers.
func (h *Hub) Shutdown() {
	h.reconnect.Stop()
}

// forfeit is the coordinator callback: the grace period for userID in roomID
// expired, so the opponent wins.
func (h *Hub) forfeit(userID, roomID string) {
	h.finishByExit(roomID, userID)
}

// finishByExit ends the room with loserID losing by departure, settles, and
// tells the remaining player it won by opponent disconnect.
func (h *Hub) finishByExit(roomID, loserID string) {
	info, ok := h.rooms.Get(roomID)
	if !ok {
		return
	}

	var winnerID string
	for _, p := range info.Participants {
		if p.UserID != loserID {
			winnerID = p.UserID
		}
	}
	if winnerID == "" {
		return
	}

	closed, ok := h.rooms.CloseWithWinner(roomID, winnerID)
	if !ok {
		return
	}

	h.settle(closed)

	_ = closed.WinnerConn.Send(EventOpponentDisconnected, OpponentDisconnectedPayload{
		Winner:    closed.Winner,
		BetAmount: closed.Bet,
		Reason:    "Opponent Disconnected",
	})

	logx.Info("Game forfeited", "roomId", roomID, "winner", winnerID, "loser", loserID)
}

func (h *Hub) settle(closed ClosedRoom) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	h.settler.Settle(ctx, closed.Winner.ID, closed.Winner.GamingName,
		closed.Loser.ID, closed.Loser.GamingName, closed.Bet)
}
