package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"kentei-quiz-service/internal/domain"
)

// ScoreStore keeps leaderboard rows in the leaderboard sheet. The workbook mutex makes
// the compare-and-swap atomic within this process.
type ScoreStore struct {
	wb *Workbook
}

func NewScoreStore(wb *Workbook) *ScoreStore {
	return &ScoreStore{wb: wb}
}

func (s *ScoreStore) ListScores(_ context.Context, mode string) ([]domain.ScoreEntry, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	rows, _, err := s.wb.rowsLocked(LeaderboardSheet)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ScoreEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := parseScoreRow(row)
		if err != nil {
			return nil, err
		}
		if entry.Mode == mode {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *ScoreStore) FindScore(_ context.Context, browserID, mode string) (domain.ScoreEntry, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	entry, _, err := s.findLocked(browserID, mode)
	return entry, err
}

func (s *ScoreStore) InsertScore(_ context.Context, entry domain.ScoreEntry) error {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	if err := s.wb.ensureSheetLocked(LeaderboardSheet, leaderboardHeader); err != nil {
		return err
	}
	if _, _, err := s.findLocked(entry.BrowserID, entry.Mode); err == nil {
		return domain.ErrScoreConflict
	} else if !errors.Is(err, domain.ErrScoreNotFound) {
		return err
	}
	return s.wb.appendLocked(LeaderboardSheet, scoreCells(entry))
}

func (s *ScoreStore) CompareAndSwapScore(_ context.Context, entry domain.ScoreEntry, expected int) (bool, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	current, row, err := s.findLocked(entry.BrowserID, entry.Mode)
	if errors.Is(err, domain.ErrScoreNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if current.Score != expected {
		return false, nil
	}
	if err := s.wb.setRowLocked(LeaderboardSheet, row, scoreCells(entry)); err != nil {
		return false, err
	}
	if err := s.wb.saveLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// findLocked returns the entry and its 1-based sheet row number.
func (s *ScoreStore) findLocked(browserID, mode string) (domain.ScoreEntry, int, error) {
	rows, _, err := s.wb.rowsLocked(LeaderboardSheet)
	if err != nil {
		return domain.ScoreEntry{}, 0, err
	}
	for i, row := range rows {
		if cell(row, 0) != browserID || cell(row, 4) != mode {
			continue
		}
		entry, err := parseScoreRow(row)
		if err != nil {
			return domain.ScoreEntry{}, 0, err
		}
		return entry, i + 2, nil
	}
	return domain.ScoreEntry{}, 0, domain.ErrScoreNotFound
}

func parseScoreRow(row []string) (domain.ScoreEntry, error) {
	score, err := strconv.Atoi(strings.TrimSpace(cell(row, 2)))
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("parse score %q: %w", cell(row, 2), err)
	}
	ts, err := time.Parse(time.RFC3339Nano, cell(row, 3))
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("parse timestamp %q: %w", cell(row, 3), err)
	}
	return domain.ScoreEntry{
		BrowserID: cell(row, 0),
		Nickname:  cell(row, 1),
		Score:     score,
		Timestamp: ts,
		Mode:      cell(row, 4),
	}, nil
}

func scoreCells(entry domain.ScoreEntry) []string {
	return []string{
		entry.BrowserID,
		entry.Nickname,
		strconv.Itoa(entry.Score),
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.Mode,
	}
}
