package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"chessarena/internal/app/user"
)

// fakeConn records every event delivered to it, standing in for a live
// WebSocket client.
type fakeConn struct {
	mu     sync.Mutex
	events []sentEvent
}

type sentEvent struct {
	Event   string
	Payload any
}

func newFakeConn() *fakeConn {
	return &fakeConn{}
}

func (f *fakeConn) Send(event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{Event: event, Payload: payload})
	return nil
}

// sent returns the recorded events for one event name.
func (f *fakeConn) sent(event string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []sentEvent
	for _, e := range f.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeConn) count(event string) int {
	return len(f.sent(event))
}

func (f *fakeConn) last() (sentEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.events) == 0 {
		return sentEvent{}, false
	}
	return f.events[len(f.events)-1], true
}

// fakeProfileStore is an in-memory ProfileStore capturing settlement calls.
type fakeProfileStore struct {
	mu sync.Mutex

	levels map[string]int
	xp     map[string]int64

	wins   []settleCall
	losses []settleCall

	progressErr error
	winErr      error
	lossErr     error
}

type settleCall struct {
	UserID       string
	Stake        int64
	Level        int
	XP           int64
	OpponentName string
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		levels: make(map[string]int),
		xp:     make(map[string]int64),
	}
}

func (s *fakeProfileStore) Progress(_ context.Context, userID string) (int, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.progressErr != nil {
		return 0, 0, s.progressErr
	}

	level, ok := s.levels[userID]
	if !ok {
		return 0, 0, errors.New("user not found")
	}
	return level, s.xp[userID], nil
}

func (s *fakeProfileStore) RecordWin(_ context.Context, userID string, stake int64, level int, xp int64, opponentName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.winErr != nil {
		return s.winErr
	}

	s.levels[userID] = level
	s.xp[userID] = xp
	s.wins = append(s.wins, settleCall{UserID: userID, Stake: stake, Level: level, XP: xp, OpponentName: opponentName})
	return nil
}

func (s *fakeProfileStore) RecordLoss(_ context.Context, userID string, stake int64, opponentName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lossErr != nil {
		return s.lossErr
	}

	s.losses = append(s.losses, settleCall{UserID: userID, Stake: stake, OpponentName: opponentName})
	return nil
}

func (s *fakeProfileStore) seed(userID string, level int, xp int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[userID] = level
	s.xp[userID] = xp
}

func (s *fakeProfileStore) winCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.wins)
}

func (s *fakeProfileStore) lossCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.losses)
}

func testUser(id, name string) user.User {
	return user.User{ID: id, GamingName: name, Coins: 500, Level: 1}
}

func rawJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
