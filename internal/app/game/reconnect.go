package game

import (
	"sync"
	"time"
)

// DefaultGracePeriod is how long a dropped player has to come back before
// their game is forfeited.
const DefaultGracePeriod = 15 * time.Second

// ForfeitFunc is invoked when a grace period expires without a rejoin. It
// receives the absent player and the room they were in.
type ForfeitFunc func(userID, roomID string)

type disconnectTimer struct {
	roomID   string
	timer    *time.Timer
	deadline time.Time
}

// Coordinator arms one forfeit timer per disconnected player. Starting a new
// timer for a player replaces the old one, and firing and cancelling race
// through the same lock: whichever side removes the map entry first wins, so
// a forfeit can never follow a successful rejoin.
type Coordinator struct {
	mu      sync.Mutex
	grace   time.Duration
	timers  map[string]*disconnectTimer
	forfeit ForfeitFunc
}

// NewCoordinator returns a coordinator firing forfeit after grace. A
// non-positive grace falls back to DefaultGracePeriod.
func NewCoordinator(grace time.Duration, forfeit ForfeitFunc) *Coordinator {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}

	return &Coordinator{
		grace:   grace,
		timers:  make(map[string]*disconnectTimer),
		forfeit: forfeit,
	}
}

// Start arms the forfeit timer for userID's game in roomID, replacing any
// timer already running for that player.
func (c *Coordinator) Start(userID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.timers[userID]; ok {
		existing.timer.Stop()
		delete(c.timers, userID)
	}

	entry := &disconnectTimer{
		roomID:   roomID,
		deadline: time.Now().Add(c.grace),
	}
	entry.timer = time.AfterFunc(c.grace, func() {
		c.fire(userID, entry)
	})

	c.timers[userID] = entry
}

func (c *Coordinator) fire(userID string, entry *disconnectTimer) {
	c.mu.Lock()
	current, ok := c.timers[userID]
	if !ok || current != entry {
		// Cancelled, or superseded by a newer disconnect.
		c.mu.Unlock()
		return
	}
	delete(c.timers, userID)
	c.mu.Unlock()

	if c.forfeit != nil {
		c.forfeit(userID, entry.roomID)
	}
}

// Cancel disarms userID's pending forfeit and returns the room it guarded.
// Returns false when no timer is pending, including when it already fired.
func (c *Coordinator) Cancel(userID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.timers[userID]
	if !ok {
		return "", false
	}

	entry.timer.Stop()
	delete(c.timers, userID)

	return entry.roomID, true
}

// Pending reports whether a forfeit timer is armed for userID.
func (c *Coordinator) Pending(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.timers[userID]
	return ok
}

// GraceSeconds returns the grace period in whole seconds, as announced to the
// remaining player.
func (c *Coordinator) GraceSeconds() int {
	return int(c.grace / time.Second)
}

// Stop disarms every pending timer. Used on shutdown so no forfeit fires into
// a torn-down hub.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for userID, entry := range c.timers {
		entry.timer.Stop()
		delete(c.timers, userID)
	}
}
