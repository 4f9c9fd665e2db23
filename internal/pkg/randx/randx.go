/*
Package randx provides generators for the identifiers used across the service:
fixed-length Base62 room codes, matchmaking room ids, and UUID challenge ids.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set.
	Base62Len = int64(len(Base62Chars))

	// RoomCodeLength is the fixed length of a manually shared room code.
	RoomCodeLength = 6
)

// base62String returns a cryptographically random Base62 string of the given length.
func base62String(length int) (string, error) {
	result := make([]byte, length)

	for i := range length {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// RoomCode generates a Base62 room code of RoomCodeLength characters, suitable
// for sharing out-of-band to join a private room.
func RoomCode() (string, error) {
	return base62String(RoomCodeLength)
}

// MatchRoomID builds the room id for a matchmade game: the stake tier, a
// timestamp, and a short random suffix, so ids sort by creation time and stay
// unique under concurrent pairing.
func MatchRoomID(tableID string) string {
	suffix, err := base62String(5)
	if err != nil {
		suffix = uuid.New().String()[:5]
	}

	return fmt.Sprintf("match_%s_%d_%s", tableID, time.Now().UnixMilli(), suffix)
}

// ChallengeID generates an opaque UUID v4 identifier for a friend challenge.
func ChallengeID() string {
	return uuid.New().String()
}

// ObjectKeySuffix generates the random component of a storage object key.
func ObjectKeySuffix() string {
	suffix, err := base62String(16)
	if err != nil {
		return uuid.New().String()
	}

	return suffix
}

// IsValidRoomCode reports whether code is RoomCodeLength Base62 characters.
func IsValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}

	for _, char := range code {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}
