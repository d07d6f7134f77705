package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MatchResult is the record of one finished game.
type MatchResult struct {
	SessionID string
	Players   []string
	Winner    string
	Turns     int
	Conquests map[string]int // player name -> bosses conquered
	StartedAt time.Time
	EndedAt   time.Time
}

// MatchRepository stores match results. A nil repository is valid and all
// its methods are no-ops, so callers never need to branch on configuration.
type MatchRepository struct {
	db *DB
}

// NewMatchRepository creates a repository over the given database, which may
// be nil.
func NewMatchRepository(db *DB) *MatchRepository {
	if db == nil {
		return nil
	}
	return &MatchRepository{db: db}
}

// EnsureSchema creates the matches tables if they do not exist.
func (r *MatchRepository) EnsureSchema(ctx context.Context) error {
	if r == nil {
		return nil
	}
	_, err := r.db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS matches (
			id          BIGSERIAL PRIMARY KEY,
			session_id  TEXT NOT NULL,
			winner      TEXT NOT NULL,
			turns       INT NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL,
			ended_at    TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS match_players (
			match_id   BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			player     TEXT NOT NULL,
			conquests  INT NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure match schema: %w", err)
	}
	return nil
}

// SaveMatch records a finished game and its per-player conquest counts.
func (r *MatchRepository) SaveMatch(ctx context.Context, result MatchResult) error {
	if r == nil {
		return nil
	}
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save match: %w", err)
	}
	defer tx.Rollback(ctx)

	var matchID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO matches (session_id, winner, turns, started_at, ended_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, result.SessionID, result.Winner, result.Turns, result.StartedAt, result.EndedAt).Scan(&matchID)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	for _, player := range result.Players {
		_, err = tx.Exec(ctx, `
			INSERT INTO match_players (match_id, player, conquests)
			VALUES ($1, $2, $3)
		`, matchID, player, result.Conquests[player])
		if err != nil {
			return fmt.Errorf("insert match player %s: %w", player, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save match: %w", err)
	}
	if r.db.logger != nil {
		r.db.logger.Info("match saved",
			zap.String("session_id", result.SessionID),
			zap.String("winner", result.Winner),
			zap.Int("turns", result.Turns),
		)
	}
	return nil
}
