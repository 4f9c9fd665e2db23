package game

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinnerProgress(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		xp        int64
		stake     int64
		wantLevel int
		wantXP    int64
	}{
		{
			name:  "stake 250 grants 125 xp",
			level: 1, xp: 0, stake: 250,
			wantLevel: 1, wantXP: 125,
		},
		{
			name:  "stake bonus capped at 500",
			level: 10, xp: 0, stake: 100000,
			wantLevel: 10, wantXP: 600,
		},
		{
			name:  "zero stake still grants base xp",
			level: 1, xp: 0, stake: 0,
			wantLevel: 1, wantXP: 100,
		},
		{
			name:  "single level up consumes threshold",
			level: 1, xp: 450, stake: 100,
			// 450+110 = 560, level 1 threshold 500 -> level 2, 60 left
			wantLevel: 2, wantXP: 60,
		},
		{
			name:  "exact threshold levels up to zero",
			level: 1, xp: 400, stake: 0,
			wantLevel: 2, wantXP: 0,
		},
		{
			name:  "banked xp levels up on next win",
			level: 1, xp: 1000, stake: 2000,
			// 1000+300 = 1300: -500 (level 1) -> 800, below the 1000 needed at level 2
			wantLevel: 2, wantXP: 800,
		},
		{
			name:  "one grant can jump two levels",
			level: 1, xp: 1400, stake: 0,
			// 1400+100 = 1500: -500 (level 1) -> 1000, -1000 (level 2) -> 0
			wantLevel: 3, wantXP: 0,
		},
		{
			name:  "level capped at 999",
			level: 999, xp: 0, stake: 5000,
			wantLevel: 999, wantXP: 600,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, xp := WinnerProgress(tt.level, tt.xp, tt.stake)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantXP, xp)
		})
	}
}

func TestWinnerProgressAccumulatesAcrossGames(t *testing.T) {
	// 1200 XP total in 100-XP grants starting from level 1:
	// level 1 needs 500, level 2 needs 1000. After 12 wins the player has
	// banked 1200: 500 consumed reaching level 2, 700 banked toward 1000.
	level, xp := 1, int64(0)
	for i := 0; i < 12; i++ {
		level, xp = WinnerProgress(level, xp, 0)
	}

	assert.Equal(t, 2, level)
	assert.Equal(t, int64(700), xp)
}

func TestSettlerSettlesBothSides(t *testing.T) {
	store := newFakeProfileStore()
	store.seed("winner", 1, 0)

	s := NewSettler(store)
	s.Settle(context.Background(), "winner", "Alice", "loser", "Bob", 250)

	require.Equal(t, 1, store.winCount())
	win := store.wins[0]
	assert.Equal(t, "winner", win.UserID)
	assert.Equal(t, int64(250), win.Stake)
	assert.Equal(t, 1, win.Level)
	assert.Equal(t, int64(125), win.XP)
	assert.Equal(t, "Bob", win.OpponentName)

	require.Equal(t, 1, store.lossCount())
	loss := store.losses[0]
	assert.Equal(t, "loser", loss.UserID)
	assert.Equal(t, int64(250), loss.Stake)
	assert.Equal(t, "Alice", loss.OpponentName)
}

func TestSettlerWinnerFailureDoesNotBlockLoser(t *testing.T) {
	store := newFakeProfileStore()
	store.progressErr = errors.New("winner record vanished")

	s := NewSettler(store)
	s.Settle(context.Background(), "winner", "Alice", "loser", "Bob", 100)

	assert.Zero(t, store.winCount())
	assert.Equal(t, 1, store.lossCount())
}

func TestSettlerLoserFailureDoesNotBlockWinner(t *testing.T) {
	store := newFakeProfileStore()
	store.seed("winner", 1, 0)
	store.lossErr = errors.New("loser record vanished")

	s := NewSettler(store)
	s.Settle(context.Background(), "winner", "Alice", "loser", "Bob", 100)

	assert.Equal(t, 1, store.winCount())
	assert.Zero(t, store.lossCount())
}
