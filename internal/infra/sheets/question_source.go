package sheets

import (
	"context"
	"strings"

	"kentei-quiz-service/internal/domain"
)

// QuestionSource reads topic partitions from sheets named after the topic.
type QuestionSource struct {
	wb *Workbook
}

func NewQuestionSource(wb *Workbook) *QuestionSource {
	return &QuestionSource{wb: wb}
}

func (s *QuestionSource) LoadRows(_ context.Context, topic string) ([]domain.QuestionRow, error) {
	s.wb.mu.Lock()
	defer s.wb.mu.Unlock()

	rows, ok, err := s.wb.rowsLocked(topic)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrTopicNotFound
	}
	out := make([]domain.QuestionRow, 0, len(rows))
	for _, row := range rows {
		if blank(row) {
			continue
		}
		out = append(out, domain.QuestionRowFromCells(row))
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
