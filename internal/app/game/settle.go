package game

import (
	"context"

	"chessarena/internal/pkg/logx"
)

const (
	baseWinXP     = 100
	maxStakeBonus = 500
	xpPerLevel    = 500
	maxLevel      = 999
)

// ProfileStore is the slice of the profile service the settlement engine
// needs: read a player's progress, then persist each side's outcome together
// with its match-history entry.
type ProfileStore interface {
	Progress(ctx context.Context, userID string) (level int, xp int64, err error)
	RecordWin(ctx context.Context, userID string, stake int64, level int, xp int64, opponentName string) error
	RecordLoss(ctx context.Context, userID string, stake int64, opponentName string) error
}

// WinnerProgress computes the winner's XP grant and resulting level for a
// given stake. XP is 100 plus one point per ten coins staked, capped at a 500
// bonus. Levelling consumes level*500 XP per step and repeats, so one large
// grant can jump several levels at once. Level is capped as a loop guard.
func WinnerProgress(level int, xp, stake int64) (int, int64) {
	bonus := stake / 10
	if bonus > maxStakeBonus {
		bonus = maxStakeBonus
	}
	xp += baseWinXP + bonus

	for xp >= int64(level)*xpPerLevel && level < maxLevel {
		xp -= int64(level) * xpPerLevel
		level++
	}

	return level, xp
}

// Settler applies end-of-game settlement against the profile store.
type Settler struct {
	store ProfileStore
}

// NewSettler returns a settler writing through store.
func NewSettler(store ProfileStore) *Settler {
	return &Settler{store: store}
}

// Settle credits the winner (coins, XP, level, history) and debits the loser
// (coins floored at zero, history). The two sides are independent: a failure
// on one is logged and the other is still attempted, so a vanished profile
// record can never block the opponent's payout.
func (s *Settler) Settle(ctx context.Context, winnerID, winnerName, loserID, loserName string, stake int64) {
	level, xp, err := s.store.Progress(ctx, winnerID)
	if err != nil {
		logx.Error(err, "Settlement: failed to load winner progress, skipping winner side",
			"winnerId", winnerID)
	} else {
		level, xp = WinnerProgress(level, xp, stake)
		if err := s.store.RecordWin(ctx, winnerID, stake, level, xp, loserName); err != nil {
			logx.Error(err, "Settlement: failed to record win", "winnerId", winnerID)
		}
	}

	if err := s.store.RecordLoss(ctx, loserID, stake, winnerName); err != nil {
		logx.Error(err, "Settlement: failed to record loss", "loserId", loserID)
	}
}
