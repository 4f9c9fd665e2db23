package randx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCode(t *testing.T) {
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		code, err := RoomCode()
		require.NoError(t, err)
		assert.True(t, IsValidRoomCode(code), "generated code %q must validate", code)
		seen[code] = struct{}{}
	}

	assert.Greater(t, len(seen), 90, "codes should be effectively unique")
}

func TestIsValidRoomCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"valid mixed case", "aB3xY9", true},
		{"too short", "aB3xY", false},
		{"too long", "aB3xY9Z", false},
		{"invalid character", "aB3xY!", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidRoomCode(tt.code))
		})
	}
}

func TestMatchRoomID(t *testing.T) {
	id := MatchRoomID("table_100")

	require.True(t, strings.HasPrefix(id, "match_table_100_"))

	parts := strings.Split(id, "_")
	// match, table, 100, timestamp, suffix
	require.Len(t, parts, 5)
	assert.Len(t, parts[4], 5)

	assert.NotEqual(t, id, MatchRoomID("table_100"))
}

func TestChallengeID(t *testing.T) {
	a, b := ChallengeID(), ChallengeID()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
