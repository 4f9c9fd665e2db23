/*
Package game contains the real-time core of the service: player presence,
stake-tier matchmaking, room lifecycle, move relay, disconnect/reconnect
coordination, challenge delivery, and end-of-game settlement.

This file defines the wire protocol: the JSON envelope exchanged over the
WebSocket and the payload shape of every event.
*/
package game

import (
	"encoding/json"

	"chessarena/internal/app/user"
)

// Event names exchanged over the real-time channel.
const (
	// client → server
	EventRegisterUser        = "register_user"
	EventCheckOnlineStatus   = "check_online_status"
	EventFindMatch           = "find_match"
	EventCancelSearch        = "cancel_search"
	EventJoinRoom            = "join_room"
	EventMakeMove            = "make_move"
	EventGameOver            = "game_over"
	EventSendChallenge       = "send_challenge"
	EventRejectChallenge     = "reject_challenge"
	EventLeaveMatch          = "leave_match"
	EventRejoinGame          = "rejoin_game"
	EventSendFriendRequest   = "send_friend_request"
	EventAcceptFriendRequest = "accept_friend_request"

	// server → client
	EventOnlineStatusResult    = "online_status_result"
	EventWaitingForOpponent    = "waiting_for_opponent"
	EventGameStart             = "game_start"
	EventRoomFull              = "room_full"
	EventReceiveMove           = "receive_move"
	EventReceiveChallenge      = "receive_challenge"
	EventChallengeRejected     = "challenge_rejected"
	EventOpponentReconnecting  = "opponent_reconnecting"
	EventOpponentRejoined      = "opponent_rejoined"
	EventOpponentDisconnected  = "opponent_disconnected"
	EventFriendRequestReceived = "friend_request_received"
	EventFriendRequestAccepted = "friend_request_accepted"
)

// Envelope is the frame carried over the WebSocket in both directions.
// Data holds the event payload; register_user and check_online_status carry a
// bare JSON string / string array rather than an object, matching the clients.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Sender delivers a single event to a live client connection. Implementations
// must be safe for concurrent use and must never block the caller; delivery is
// best effort and a returned error means the message was dropped.
type Sender interface {
	Send(event string, payload any) error
}

// FindMatchPayload requests matchmaking on a stake tier.
type FindMatchPayload struct {
	TableID   string    `json:"tableId"`
	User      user.User `json:"user"`
	BetAmount int64     `json:"betAmount"`
}

// CancelSearchPayload cancels a pending matchmaking search.
type CancelSearchPayload struct {
	TableID string `json:"tableId"`
}

// JoinRoomPayload joins (or creates) a manually coded room.
type JoinRoomPayload struct {
	RoomID    string    `json:"roomId"`
	User      user.User `json:"user"`
	BetAmount int64     `json:"betAmount"`
}

// MovePayload carries one move and the resulting position snapshot. Both are
// opaque to the server; legality lives on the clients.
type MovePayload struct {
	RoomID string          `json:"roomId"`
	Move   json.RawMessage `json:"move"`
	FEN    string          `json:"fen"`
}

// ReceiveMovePayload is the forwarded form of MovePayload.
type ReceiveMovePayload struct {
	Move json.RawMessage `json:"move"`
	FEN  string          `json:"fen"`
}

// GameOverPayload reports a finished game with the winning player.
type GameOverPayload struct {
	RoomID   string `json:"roomId"`
	WinnerID string `json:"winnerId"`
}

// GameStartPayload announces a started game to both participants.
type GameStartPayload struct {
	White     user.User   `json:"white"`
	Black     user.User   `json:"black"`
	RoomID    string      `json:"roomId"`
	BetAmount int64       `json:"betAmount"`
	Players   []user.User `json:"players"`
}

// ChallengePayload is a directed friend challenge.
type ChallengePayload struct {
	FromUser user.User `json:"fromUser"`
	ToUserID string    `json:"toUserId"`
	Amount   int64     `json:"amount"`
	RoomCode string    `json:"roomCode"`
}

// ReceiveChallengePayload is the delivered form of a challenge, stamped with a
// freshly generated opaque challenge id.
type ReceiveChallengePayload struct {
	FromUser    user.User `json:"fromUser"`
	Amount      int64     `json:"amount"`
	RoomCode    string    `json:"roomCode"`
	ChallengeID string    `json:"challengeId"`
}

// RejectChallengePayload declines a received challenge.
type RejectChallengePayload struct {
	TargetUserID string `json:"targetUserId"`
	RoomCode     string `json:"roomCode"`
	RejectorName string `json:"rejectorName"`
}

// ChallengeRejectedPayload notifies the challenger of a rejection.
type ChallengeRejectedPayload struct {
	UserName string `json:"userName"`
}

// LeaveMatchPayload resigns from a running game.
type LeaveMatchPayload struct {
	RoomID string `json:"roomId"`
}

// RejoinPayload resumes a game within the disconnect grace period.
type RejoinPayload struct {
	UserID string `json:"userId"`
}

// FriendRequestPayload relays a friend request between online players.
type FriendRequestPayload struct {
	FromUser user.User `json:"fromUser"`
	ToUserID string    `json:"toUserId"`
}

// OnlineStatusEntry is one element of an online_status_result payload.
type OnlineStatusEntry struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// OpponentReconnectingPayload tells the remaining player how long the grace
// period lasts, in seconds.
type OpponentReconnectingPayload struct {
	TimeLeft int `json:"timeLeft"`
}

// OpponentRejoinedPayload announces a successful reconnection.
type OpponentRejoinedPayload struct {
	UserID string `json:"userId"`
}

// OpponentDisconnectedPayload announces a forfeit win to the remaining player.
type OpponentDisconnectedPayload struct {
	Winner    user.User `json:"winner"`
	BetAmount int64     `json:"betAmount"`
	Reason    string    `json:"reason"`
}
