/*
Package game contains the real-time core of the service.

This file defines the matchmaking queue: one waiting slot per stake tier.
A tier holds at most a single waiting player; the next distinct arrival on
that tier is paired with them. The whole decision is one atomic step under
the queue lock, so two simultaneous seekers can never both claim the same
waiting entry.
*/
package game

import (
	"sync"
	"time"

	"chessarena/internal/app/user"
)

// WaitingEntry is the player currently holding a tier's waiting slot.
type WaitingEntry struct {
	User     user.User
	Conn     Sender
	JoinedAt time.Time
}

// MatchOutcome classifies the result of a FindMatch call.
type MatchOutcome int

const (
	// OutcomeWaiting means the requester now occupies the tier's waiting slot.
	OutcomeWaiting MatchOutcome = iota

	// OutcomeMatched means a waiting opponent was claimed for the requester.
	OutcomeMatched

	// OutcomeIgnored means the requester was already waiting on this tier.
	OutcomeIgnored
)

// Matchmaker pairs players seeking a game on the same stake tier.
type Matchmaker struct {
	mu    sync.Mutex
	slots map[string]*WaitingEntry
}

// NewMatchmaker returns an empty matchmaker.
func NewMatchmaker() *Matchmaker {
	return &Matchmaker{slots: make(map[string]*WaitingEntry)}
}

// FindMatch either claims the tier's waiting player for the requester or
// parks the requester in the slot. The live callback decides whether a
// waiting entry's connection is still current; a stale entry is discarded and
// the requester takes its place. A player already waiting on the tier is
// ignored, never matched with itself.
func (m *Matchmaker) FindMatch(tableID string, u user.User, conn Sender, live func(*WaitingEntry) bool) (*WaitingEntry, MatchOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	waiting, ok := m.slots[tableID]
	if !ok {
		m.slots[tableID] = &WaitingEntry{User: u, Conn: conn, JoinedAt: time.Now()}
		return nil, OutcomeWaiting
	}

	if waiting.User.ID == u.ID {
		return nil, OutcomeIgnored
	}

	delete(m.slots, tableID)

	if live != nil && !live(waiting) {
		// The waiting connection went away without cleanup. The requester
		// inherits the slot instead of being paired with a ghost.
		m.slots[tableID] = &WaitingEntry{User: u, Conn: conn, JoinedAt: time.Now()}
		return nil, OutcomeWaiting
	}

	return waiting, OutcomeMatched
}

// Cancel clears the tier's waiting slot, but only when it is owned by conn.
// Anything else is a silent no-op.
func (m *Matchmaker) Cancel(tableID string, conn Sender) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if waiting, ok := m.slots[tableID]; ok && waiting.Conn == conn {
		delete(m.slots, tableID)
	}
}

// RemoveConn sweeps every slot owned by conn, used when a connection drops.
func (m *Matchmaker) RemoveConn(conn Sender) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for tableID, waiting := range m.slots {
		if waiting.Conn == conn {
			delete(m.slots, tableID)
		}
	}
}

// Waiting returns the current waiting entry for a tier, if any.
func (m *Matchmaker) Waiting(tableID string) (WaitingEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if waiting, ok := m.slots[tableID]; ok {
		return *waiting, true
	}
	return WaitingEntry{}, false
}
