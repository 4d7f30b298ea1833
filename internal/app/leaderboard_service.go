package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"kentei-quiz-service/internal/domain"
)

// LeaderboardConfig holds defaults for score submission and ranking.
type LeaderboardConfig struct {
	DefaultMode  string
	DefaultLimit int
	// MaxAttempts bounds the compare-and-swap retry loop.
	MaxAttempts int
}

func (c LeaderboardConfig) withDefaults() LeaderboardConfig {
	if c.DefaultMode == "" {
		c.DefaultMode = "extra"
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 10
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	return c
}

// ScoreSubmission is a finished timed run reported by a browser.
type ScoreSubmission struct {
	BrowserID string
	Nickname  string
	Score     int
	Mode      string
}

// LeaderboardService keeps the best score per browser and mode and ranks them.
type LeaderboardService struct {
	repo ScoreRepository
	hub  *LeaderboardHub
	cfg  LeaderboardConfig
	now  func() time.Time
}

func NewLeaderboardService(repo ScoreRepository, hub *LeaderboardHub, cfg LeaderboardConfig) *LeaderboardService {
	return NewLeaderboardServiceWithClock(repo, hub, cfg, time.Now)
}

// NewLeaderboardServiceWithClock is test-only for deterministic timestamps.
func NewLeaderboardServiceWithClock(repo ScoreRepository, hub *LeaderboardHub, cfg LeaderboardConfig, now func() time.Time) *LeaderboardService {
	if hub == nil {
		hub = NewLeaderboardHub()
	}
	return &LeaderboardService{repo: repo, hub: hub, cfg: cfg.withDefaults(), now: now}
}

// Submit upserts the score and returns the caller's 1-based rank in the mode, or -1.
// An existing row only changes when the new score is strictly higher.
func (s *LeaderboardService) Submit(ctx context.Context, sub ScoreSubmission) (int, error) {
	sub.BrowserID = strings.TrimSpace(sub.BrowserID)
	sub.Nickname = strings.TrimSpace(sub.Nickname)
	if sub.BrowserID == "" || sub.Nickname == "" {
		return -1, fmt.Errorf("%w: browserId and nickname are required", domain.ErrInvalidInput)
	}
	if sub.Score < 0 || sub.Score > 100 {
		return -1, fmt.Errorf("%w: score %d out of range 0..100", domain.ErrInvalidInput, sub.Score)
	}
	mode := s.mode(sub.Mode)

	entry := domain.ScoreEntry{
		BrowserID: sub.BrowserID,
		Nickname:  sub.Nickname,
		Score:     sub.Score,
		Timestamp: s.now().UTC(),
		Mode:      mode,
	}
	changed, err := s.upsert(ctx, entry)
	if err != nil {
		return -1, err
	}

	ranked, err := s.ranked(ctx, mode, sub.BrowserID)
	if err != nil {
		return -1, err
	}
	if changed {
		s.hub.Publish(domain.Leaderboard{
			Mode:      mode,
			Rankings:  truncate(clearCurrentUser(ranked), s.cfg.DefaultLimit),
			UpdatedAt: s.now(),
		})
	}
	for _, r := range ranked {
		if r.BrowserID == sub.BrowserID {
			return r.Rank, nil
		}
	}
	return -1, nil
}

// upsert retries the read-modify-write until it lands or MaxAttempts is exhausted.
func (s *LeaderboardService) upsert(ctx context.Context, entry domain.ScoreEntry) (bool, error) {
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		existing, err := s.repo.FindScore(ctx, entry.BrowserID, entry.Mode)
		switch {
		case errors.Is(err, domain.ErrScoreNotFound):
			err := s.repo.InsertScore(ctx, entry)
			if errors.Is(err, domain.ErrScoreConflict) {
				continue
			}
			if err != nil {
				return false, fmt.Errorf("insert score: %w", err)
			}
			return true, nil
		case err != nil:
			return false, fmt.Errorf("find score: %w", err)
		case entry.Score <= existing.Score:
			return false, nil
		}

		swapped, err := s.repo.CompareAndSwapScore(ctx, entry, existing.Score)
		if err != nil {
			return false, fmt.Errorf("update score: %w", err)
		}
		if swapped {
			return true, nil
		}
	}
	return false, fmt.Errorf("%w: %s/%s", domain.ErrConcurrentUpdate, entry.BrowserID, entry.Mode)
}

// Top returns at most limit ranked entries for mode, flagging browserID's entry.
func (s *LeaderboardService) Top(ctx context.Context, mode string, limit int, browserID string) (domain.Leaderboard, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	mode = s.mode(mode)
	ranked, err := s.ranked(ctx, mode, strings.TrimSpace(browserID))
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Mode: mode, Rankings: truncate(ranked, limit), UpdatedAt: s.now()}, nil
}

// Subscribe streams the top entries of mode whenever a submission changes them. The first
// value is the current snapshot. The caller must invoke cancel.
func (s *LeaderboardService) Subscribe(ctx context.Context, mode string) (<-chan domain.Leaderboard, func(), error) {
	lb, err := s.Top(ctx, mode, s.cfg.DefaultLimit, "")
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(lb.Mode, lb)
	return ch, cancel, nil
}

func (s *LeaderboardService) ranked(ctx context.Context, mode, browserID string) ([]domain.RankedEntry, error) {
	entries, err := s.repo.ListScores(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return Rank(entries, browserID), nil
}

func (s *LeaderboardService) mode(mode string) string {
	if m := strings.TrimSpace(mode); m != "" {
		return m
	}
	return s.cfg.DefaultMode
}

// Rank orders entries by score descending; ties go to the earlier timestamp, then browser id.
func Rank(entries []domain.ScoreEntry, browserID string) []domain.RankedEntry {
	sorted := make([]domain.ScoreEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].BrowserID < sorted[j].BrowserID
	})

	ranked := make([]domain.RankedEntry, 0, len(sorted))
	for i, e := range sorted {
		ranked = append(ranked, domain.RankedEntry{
			Rank:          i + 1,
			Nickname:      e.Nickname,
			Score:         e.Score,
			Timestamp:     e.Timestamp,
			BrowserID:     e.BrowserID,
			IsCurrentUser: browserID != "" && e.BrowserID == browserID,
		})
	}
	return ranked
}

func truncate(ranked []domain.RankedEntry, limit int) []domain.RankedEntry {
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

func clearCurrentUser(ranked []domain.RankedEntry) []domain.RankedEntry {
	out := make([]domain.RankedEntry, len(ranked))
	for i, r := range ranked {
		r.IsCurrentUser = false
		out[i] = r
	}
	return out
}
