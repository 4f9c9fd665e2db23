/*
Package game contains the real-time core of the service.

This file defines the presence registry mapping a player's user id to its
current live connection. Everything that targets a player by id (challenges,
online status checks, matchmaking liveness) resolves through it.
*/
package game

import "sync"

// Registry tracks which connection currently speaks for each user id.
// At most one connection per user; a re-register silently supersedes the
// previous handle, which covers reconnects and app restarts.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Sender
}

// NewRegistry returns an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Sender)}
}

// Register binds userID to conn, overwriting any previous binding.
func (r *Registry) Register(userID string, conn Sender) {
	if userID == "" {
		return
	}

	r.mu.Lock()
	r.conns[userID] = conn
	r.mu.Unlock()
}

// Lookup returns the live connection for userID, if any.
func (r *Registry) Lookup(userID string) (Sender, bool) {
	r.mu.RLock()
	conn, ok := r.conns[userID]
	r.mu.RUnlock()
	return conn, ok
}

// Unregister removes the entry owned by conn and returns its user id. The
// entry is removed only while it still maps to this exact connection, so a
// stale disconnect can never clear a fresher registration.
func (r *Registry) Unregister(conn Sender) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for userID, current := range r.conns {
		if current == conn {
			delete(r.conns, userID)
			return userID, true
		}
	}

	return "", false
}

// Statuses reports which of the given user ids currently have a live connection.
func (r *Registry) Statuses(userIDs []string) []OnlineStatusEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]OnlineStatusEntry, 0, len(userIDs))
	for _, id := range userIDs {
		_, online := r.conns[id]
		statuses = append(statuses, OnlineStatusEntry{UserID: id, IsOnline: online})
	}

	return statuses
}
