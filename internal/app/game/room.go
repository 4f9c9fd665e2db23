/*
Package game contains the real-time core of the service.

This file defines the room store: the in-memory table of game sessions. Rooms
are ephemeral; they exist from pairing (or first manual join) until settlement
and are never persisted. All mutation happens inside store methods under one
lock, so the facade and the disconnect coordinator never race on a room's
participant list.
*/
package game

import (
	"sync"
	"time"

	"chessarena/internal/app/user"
)

// Color is a participant's assigned side.
type Color string

const (
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

// Status is the lifecycle state of a room.
type Status string

const (
	// StatusAwaitingSecondPlayer marks a coded room with only its host inside.
	StatusAwaitingSecondPlayer Status = "awaiting_second_player"

	// StatusActive marks a room with both participants playing.
	StatusActive Status = "active"

	// StatusSettlingDisconnect marks a room whose participant dropped and is
	// inside the reconnection grace period.
	StatusSettlingDisconnect Status = "settling_disconnect"

	// StatusClosed marks a settled room on its way out of the store.
	StatusClosed Status = "closed"
)

// Participant is one player bound to a room.
type Participant struct {
	User  user.User
	Conn  Sender
	Color Color
}

// Room is a single game session: up to two participants and a fixed stake.
type Room struct {
	ID           string
	Bet          int64
	Status       Status
	Participants []*Participant
	CreatedAt    time.Time
}

func (r *Room) participantByID(userID string) *Participant {
	for _, p := range r.Participants {
		if p.User.ID == userID {
			return p
		}
	}
	return nil
}

func (r *Room) opponentOf(userID string) *Participant {
	for _, p := range r.Participants {
		if p.User.ID != userID {
			return p
		}
	}
	return nil
}

// JoinResult classifies the outcome of a Join call.
type JoinResult int

const (
	// JoinCreated means the caller opened the room and waits as white.
	JoinCreated JoinResult = iota

	// JoinRejoined means the caller was already a participant; its connection
	// was refreshed.
	JoinRejoined

	// JoinStarted means the caller completed the pair and the game began.
	JoinStarted

	// JoinRoomFull means the room already holds two other participants.
	JoinRoomFull
)

// JoinOutcome carries everything the facade needs to react to a Join: the
// result kind and, when the room is (or became) full, the game_start payload
// and the connections it should go to.
type JoinOutcome struct {
	Result JoinResult
	Start  GameStartPayload
	Notify []Sender
}

// ClosedRoom is the settlement data extracted when a room is closed.
type ClosedRoom struct {
	Winner     user.User
	Loser      user.User
	Bet        int64
	WinnerConn Sender
	LoserConn  Sender
}

// RoomStore owns every live room, keyed by room id.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRoomStore returns an empty room store.
func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*Room)}
}

// CreateActive inserts a matchmade room that starts directly in Active status,
// the waiting player as white and the new arrival as black.
func (s *RoomStore) CreateActive(roomID string, white user.User, whiteConn Sender, black user.User, blackConn Sender, bet int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rooms[roomID] = &Room{
		ID:     roomID,
		Bet:    bet,
		Status: StatusActive,
		Participants: []*Participant{
			{User: white, Conn: whiteConn, Color: ColorWhite},
			{User: black, Conn: blackConn, Color: ColorBlack},
		},
		CreatedAt: time.Now(),
	}
}

// Join adds the caller to the coded room, creating it when absent. The first
// joiner hosts as white; the second completes the pair as black and activates
// the room. A caller already inside only refreshes its connection. When the
// room holds both players after the call, the outcome carries a game_start
// payload for both connections (a rejoin re-announces the running game so the
// client can resync).
func (s *RoomStore) Join(roomID string, u user.User, conn Sender, bet int64) JoinOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		room = &Room{
			ID:        roomID,
			Bet:       bet,
			Status:    StatusAwaitingSecondPlayer,
			CreatedAt: time.Now(),
		}
		room.Participants = append(room.Participants, &Participant{User: u, Conn: conn, Color: ColorWhite})
		s.rooms[roomID] = room
		return JoinOutcome{Result: JoinCreated}
	}

	result := JoinRejoined

	if existing := room.participantByID(u.ID); existing != nil {
		existing.Conn = conn
	} else {
		if len(room.Participants) >= 2 {
			return JoinOutcome{Result: JoinRoomFull}
		}

		room.Participants = append(room.Participants, &Participant{User: u, Conn: conn, Color: ColorBlack})
		result = JoinStarted
	}

	if len(room.Participants) < 2 {
		return JoinOutcome{Result: result}
	}

	if room.Status == StatusAwaitingSecondPlayer {
		room.Status = StatusActive
	}

	outcome := JoinOutcome{Result: result}
	for _, p := range room.Participants {
		outcome.Start.Players = append(outcome.Start.Players, p.User)
		outcome.Notify = append(outcome.Notify, p.Conn)
		switch p.Color {
		case ColorWhite:
			outcome.Start.White = p.User
		case ColorBlack:
			outcome.Start.Black = p.User
		}
	}
	outcome.Start.RoomID = room.ID
	outcome.Start.BetAmount = room.Bet

	return outcome
}

// RelayTarget resolves the connection a move from sender should be forwarded
// to. Relaying requires a running game and a sender that is a current
// participant; anything else returns false and the move is dropped.
func (s *RoomStore) RelayTarget(roomID string, sender Sender) (Sender, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok || room.Status != StatusActive {
		return nil, false
	}

	var from *Participant
	for _, p := range room.Participants {
		if p.Conn == sender {
			from = p
			break
		}
	}
	if from == nil {
		return nil, false
	}

	other := room.opponentOf(from.User.ID)
	if other == nil {
		return nil, false
	}

	return other.Conn, true
}

// CloseWithWinner settles and removes the room in one step. The first caller
// wins the race: the room is marked Closed and deleted, and later calls for
// the same id find nothing, which makes settlement exactly-once.
func (s *RoomStore) CloseWithWinner(roomID, winnerID string) (ClosedRoom, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok || room.Status == StatusClosed {
		return ClosedRoom{}, false
	}

	winner := room.participantByID(winnerID)
	loser := room.opponentOf(winnerID)
	if winner == nil || loser == nil {
		return ClosedRoom{}, false
	}

	room.Status = StatusClosed
	delete(s.rooms, roomID)

	return ClosedRoom{
		Winner:     winner.User,
		Loser:      loser.User,
		Bet:        room.Bet,
		WinnerConn: winner.Conn,
		LoserConn:  loser.Conn,
	}, true
}

// MarkReconnecting finds the room where userID is playing over conn, flips it
// into the grace-period state, and returns the opponent to notify. A stale
// connection (the player already rejoined elsewhere) matches nothing.
func (s *RoomStore) MarkReconnecting(userID string, conn Sender) (string, Sender, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, room := range s.rooms {
		if room.Status != StatusActive && room.Status != StatusSettlingDisconnect {
			continue
		}

		p := room.participantByID(userID)
		if p == nil || p.Conn != conn {
			continue
		}

		room.Status = StatusSettlingDisconnect

		if other := room.opponentOf(userID); other != nil {
			return room.ID, other.Conn, true
		}
		return room.ID, nil, true
	}

	return "", nil, false
}

// Rejoin rebinds a returning player to its room on a fresh connection and
// restores Active status. It returns the connections to notify (opponent
// first, then the rejoiner).
func (s *RoomStore) Rejoin(roomID, userID string, conn Sender) ([]Sender, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, false
	}

	p := room.participantByID(userID)
	if p == nil {
		return nil, false
	}

	p.Conn = conn
	if room.Status == StatusSettlingDisconnect {
		room.Status = StatusActive
	}

	notify := []Sender{}
	if other := room.opponentOf(userID); other != nil {
		notify = append(notify, other.Conn)
	}
	notify = append(notify, conn)

	return notify, true
}

// ParticipantByConn resolves which room and player a connection belongs to.
func (s *RoomStore) ParticipantByConn(roomID string, conn Sender) (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return user.User{}, false
	}

	for _, p := range room.Participants {
		if p.Conn == conn {
			return p.User, true
		}
	}

	return user.User{}, false
}

// SweepAwaiting drops rooms still waiting for a second player whose lone host
// was conn. A host that vanishes before anyone joins leaves nothing to settle.
func (s *RoomStore) SweepAwaiting(conn Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, room := range s.rooms {
		if room.Status == StatusAwaitingSecondPlayer &&
			len(room.Participants) == 1 &&
			room.Participants[0].Conn == conn {
			delete(s.rooms, id)
		}
	}
}

// RoomInfo is a read-only snapshot of a room.
type RoomInfo struct {
	ID           string
	Bet          int64
	Status       Status
	Participants []ParticipantInfo
}

// ParticipantInfo is a read-only snapshot of a participant.
type ParticipantInfo struct {
	UserID string
	Color  Color
}

// Get returns a snapshot of the room, if present.
func (s *RoomStore) Get(roomID string) (RoomInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return RoomInfo{}, false
	}

	info := RoomInfo{ID: room.ID, Bet: room.Bet, Status: room.Status}
	for _, p := range room.Participants {
		info.Participants = append(info.Participants, ParticipantInfo{UserID: p.User.ID, Color: p.Color})
	}

	return info, true
}

// Len reports the number of live rooms.
func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
