package postgres

import (
	"context"
	"errors"
	"fmt"

	"kentei-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ScoreStore keeps one leaderboard row per (browser_id, mode).
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) ListScores(ctx context.Context, mode string) ([]domain.ScoreEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT browser_id, nickname, score, updated_at, mode
		FROM leaderboard
		WHERE mode = $1`, mode)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []domain.ScoreEntry
	for rows.Next() {
		var e domain.ScoreEntry
		if err := rows.Scan(&e.BrowserID, &e.Nickname, &e.Score, &e.Timestamp, &e.Mode); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *ScoreStore) FindScore(ctx context.Context, browserID, mode string) (domain.ScoreEntry, error) {
	var e domain.ScoreEntry
	err := s.pool.QueryRow(ctx, `
		SELECT browser_id, nickname, score, updated_at, mode
		FROM leaderboard
		WHERE browser_id = $1 AND mode = $2`, browserID, mode).
		Scan(&e.BrowserID, &e.Nickname, &e.Score, &e.Timestamp, &e.Mode)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScoreEntry{}, domain.ErrScoreNotFound
	}
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("select score: %w", err)
	}
	return e, nil
}

func (s *ScoreStore) InsertScore(ctx context.Context, e domain.ScoreEntry) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO leaderboard (browser_id, mode, nickname, score, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (browser_id, mode) DO NOTHING`,
		e.BrowserID, e.Mode, e.Nickname, e.Score, e.Timestamp)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrScoreConflict
	}
	return nil
}

func (s *ScoreStore) CompareAndSwapScore(ctx context.Context, e domain.ScoreEntry, expected int) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE leaderboard
		SET nickname = $3, score = $4, updated_at = $5
		WHERE browser_id = $1 AND mode = $2 AND score = $6`,
		e.BrowserID, e.Mode, e.Nickname, e.Score, e.Timestamp, expected)
	if err != nil {
		return false, fmt.Errorf("update score: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
