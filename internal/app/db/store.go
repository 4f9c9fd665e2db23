/*
Package db owns the PostgreSQL persistence layer: pool initialization, embedded
migrations, and the hand-written queries used by the HTTP handlers and the
settlement engine.
*/
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// historyLimit bounds the per-user match history to the most recent entries;
// older rows are evicted in the same transaction that inserts a new one.
const historyLimit = 10

// UserRow is the full persisted profile of a player.
type UserRow struct {
	ID              string
	GamingName      string
	Email           string
	PasswordHash    string
	AvatarID        string
	UnlockedAvatars []string
	Coins           int64
	Wins            int
	Losses          int
	Draws           int
	TotalGames      int
	Level           int
	XP              int64
	CreatedAt       time.Time
	LastLoginAt     *time.Time
}

// HistoryRow is one entry of a player's match history.
type HistoryRow struct {
	OpponentName string    `json:"opponentName"`
	Result       string    `json:"result"`
	Amount       int64     `json:"amount"`
	PlayedAt     time.Time `json:"date"`
}

// Store exposes the application's database queries over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = `id::text, gaming_name, email, password_hash, avatar_id, unlocked_avatars,
	coins, wins, losses, draws, total_games, level, xp, created_at, last_login_at`

func scanUser(row interface{ Scan(dest ...any) error }) (UserRow, error) {
	var u UserRow
	err := row.Scan(
		&u.ID, &u.GamingName, &u.Email, &u.PasswordHash, &u.AvatarID, &u.UnlockedAvatars,
		&u.Coins, &u.Wins, &u.Losses, &u.Draws, &u.TotalGames, &u.Level, &u.XP,
		&u.CreatedAt, &u.LastLoginAt,
	)
	return u, err
}

// CreateUser inserts a new player with the default starting balance and avatars.
func (s *Store) CreateUser(ctx context.Context, gamingName, email, passwordHash string) (UserRow, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (gaming_name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		gamingName, email, passwordHash,
	)
	return scanUser(row)
}

// GetUserByID fetches a player by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (UserRow, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id)
	return scanUser(row)
}

// GetUserByEmail fetches a player by email, used by login.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (UserRow, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpdateLastLogin stamps the player's last login time.
func (s *Store) UpdateLastLogin(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET last_login_at = now(), updated_at = now() WHERE id = $1::uuid`, id)
	return err
}

// EquipAvatar sets the player's current avatar. The update only applies when
// the avatar is among the player's unlocked set.
func (s *Store) EquipAvatar(ctx context.Context, id, avatarID string) (UserRow, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET avatar_id = $2, updated_at = now()
		WHERE id = $1::uuid AND $2 = ANY(unlocked_avatars)
		RETURNING `+userColumns,
		id, avatarID,
	)
	return scanUser(row)
}

// BuyAvatar deducts the cost and unlocks the avatar in one transaction.
func (s *Store) BuyAvatar(ctx context.Context, id, avatarID string, cost int64) (UserRow, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return UserRow{}, err
	}
	defer tx.Rollback(ctx)

	var coins int64
	var owned bool
	err = tx.QueryRow(ctx, `
		SELECT coins, $2 = ANY(unlocked_avatars) FROM users WHERE id = $1::uuid FOR UPDATE`,
		id, avatarID,
	).Scan(&coins, &owned)
	if err != nil {
		return UserRow{}, err
	}

	if owned {
		return UserRow{}, ErrAvatarAlreadyOwned
	}
	if coins < cost {
		return UserRow{}, ErrInsufficientCoins
	}

	row := tx.QueryRow(ctx, `
		UPDATE users
		SET coins = coins - $3,
		    unlocked_avatars = array_append(unlocked_avatars, $2),
		    updated_at = now()
		WHERE id = $1::uuid
		RETURNING `+userColumns,
		id, avatarID, cost,
	)
	u, err := scanUser(row)
	if err != nil {
		return UserRow{}, err
	}

	return u, tx.Commit(ctx)
}

// Progress returns the player's current level and accumulated XP.
func (s *Store) Progress(ctx context.Context, userID string) (int, int64, error) {
	var level int
	var xp int64
	err := s.pool.QueryRow(ctx, `SELECT level, xp FROM users WHERE id = $1::uuid`, userID).Scan(&level, &xp)
	return level, xp, err
}

// RecordWin applies the winner's side of a settlement: coins credited, level
// and XP set to their recomputed values, stats bumped, and a Win history entry
// appended, all in one transaction.
func (s *Store) RecordWin(ctx context.Context, userID string, stake int64, level int, xp int64, opponentName string) error {
	return s.recordResult(ctx, userID, opponentName, "Win", stake, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE users
			SET coins = coins + $2,
			    level = $3,
			    xp = $4,
			    wins = wins + 1,
			    total_games = total_games + 1,
			    updated_at = now()
			WHERE id = $1::uuid`,
			userID, stake, level, xp,
		)
		return err
	})
}

// RecordLoss applies the loser's side of a settlement: coins debited but never
// below zero, stats bumped, and a Loss history entry appended.
func (s *Store) RecordLoss(ctx context.Context, userID string, stake int64, opponentName string) error {
	return s.recordResult(ctx, userID, opponentName, "Loss", stake, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE users
			SET coins = GREATEST(coins - $2, 0),
			    losses = losses + 1,
			    total_games = total_games + 1,
			    updated_at = now()
			WHERE id = $1::uuid`,
			userID, stake,
		)
		return err
	})
}

// recordResult wraps a per-user stat mutation together with the history append
// and ring trim in a single transaction. The user must exist; an id that
// matches no row is reported as an error so the caller can log and move on.
func (s *Store) recordResult(ctx context.Context, userID, opponentName, result string, amount int64, mutate func(context.Context, pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var one int
	if err := tx.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1::uuid FOR UPDATE`, userID).Scan(&one); err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("user %s not found", userID)
		}
		return err
	}

	if err := mutate(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO match_history (user_id, opponent_name, result, amount)
		VALUES ($1::uuid, $2, $3, $4)`,
		userID, opponentName, result, amount,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM match_history
		WHERE user_id = $1::uuid
		  AND id NOT IN (
			SELECT id FROM match_history
			WHERE user_id = $1::uuid
			ORDER BY played_at DESC, id DESC
			LIMIT $2
		  )`,
		userID, historyLimit,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// RecentHistory returns the player's match history, newest first.
func (s *Store) RecentHistory(ctx context.Context, userID string) ([]HistoryRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT opponent_name, result, amount, played_at
		FROM match_history
		WHERE user_id = $1::uuid
		ORDER BY played_at DESC, id DESC
		LIMIT $2`,
		userID, historyLimit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(&h.OpponentName, &h.Result, &h.Amount, &h.PlayedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}

	return history, rows.Err()
}
