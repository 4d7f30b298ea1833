package memory

import (
	"context"
	"sync"

	"kentei-quiz-service/internal/domain"
)

// QuestionSource serves topic partitions from an in-memory map (useful for tests/demos).
type QuestionSource struct {
	mu     sync.RWMutex
	topics map[string][]domain.QuestionRow
}

func NewQuestionSource(topics map[string][]domain.QuestionRow) *QuestionSource {
	cp := make(map[string][]domain.QuestionRow, len(topics))
	for topic, rows := range topics {
		cp[topic] = append([]domain.QuestionRow(nil), rows...)
	}
	return &QuestionSource{topics: cp}
}

func (s *QuestionSource) LoadRows(_ context.Context, topic string) ([]domain.QuestionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.topics[topic]
	if !ok {
		return nil, domain.ErrTopicNotFound
	}
	return append([]domain.QuestionRow(nil), rows...), nil
}

// SetRows replaces a topic partition, standing in for an edit of the backing sheet.
func (s *QuestionSource) SetRows(topic string, rows []domain.QuestionRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[topic] = append([]domain.QuestionRow(nil), rows...)
}
