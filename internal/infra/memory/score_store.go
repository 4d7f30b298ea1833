package memory

import (
	"context"
	"sync"

	"kentei-quiz-service/internal/domain"
)

// ScoreStore is an in-memory app.ScoreRepository preserving insertion order.
type ScoreStore struct {
	mu      sync.RWMutex
	entries []domain.ScoreEntry
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{}
}

func (s *ScoreStore) ListScores(_ context.Context, mode string) ([]domain.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ScoreEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Mode == mode {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *ScoreStore) FindScore(_ context.Context, browserID, mode string) (domain.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(browserID, mode); i >= 0 {
		return s.entries[i], nil
	}
	return domain.ScoreEntry{}, domain.ErrScoreNotFound
}

func (s *ScoreStore) InsertScore(_ context.Context, entry domain.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(entry.BrowserID, entry.Mode) >= 0 {
		return domain.ErrScoreConflict
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *ScoreStore) CompareAndSwapScore(_ context.Context, entry domain.ScoreEntry, expected int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(entry.BrowserID, entry.Mode)
	if i < 0 || s.entries[i].Score != expected {
		return false, nil
	}
	s.entries[i].Nickname = entry.Nickname
	s.entries[i].Score = entry.Score
	s.entries[i].Timestamp = entry.Timestamp
	return true, nil
}

func (s *ScoreStore) indexLocked(browserID, mode string) int {
	for i, e := range s.entries {
		if e.BrowserID == browserID && e.Mode == mode {
			return i
		}
	}
	return -1
}
