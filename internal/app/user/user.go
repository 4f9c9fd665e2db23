/*
Package user contains the core data structure describing a player's identity.

It defines the snapshot of a player embedded in real-time messages. The
snapshot is copied into match payloads at send time and is never synced back;
authoritative profile data lives in the database.
*/
package user

// User is the identity snapshot of a player as carried in WebSocket payloads.
type User struct {

	// ID is the unique identifier of the player.
	ID string `json:"_id"`

	// GamingName is the player's unique display name.
	GamingName string `json:"gamingName"`

	// AvatarID references the avatar currently equipped by the player.
	AvatarID string `json:"avatarId,omitempty"`

	// Coins is the player's coin balance at snapshot time.
	Coins int64 `json:"coins"`

	// Level is the player's level at snapshot time.
	Level int `json:"level,omitempty"`
}
