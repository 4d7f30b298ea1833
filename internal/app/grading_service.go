package app

import (
	"context"
	"fmt"
	"log"

	"kentei-quiz-service/internal/domain"
)

// AnswerKeyProvider supplies answer keys and hints, building partitions on a miss.
type AnswerKeyProvider interface {
	AnswerKey(ctx context.Context, topic, level string) (domain.AnswerKey, error)
	Hints(ctx context.Context, topic, level string) (domain.HintMap, error)
}

// GradingService grades submissions against cached answer keys.
type GradingService struct {
	keys AnswerKeyProvider
}

func NewGradingService(keys AnswerKeyProvider) *GradingService {
	return &GradingService{keys: keys}
}

// GradeSingle judges one answer. A question without an answer key entry is an error here,
// unlike in GradeBatch.
func (s *GradingService) GradeSingle(ctx context.Context, topic, level, questionID string, answer domain.Answer) (bool, error) {
	answers, err := s.keys.AnswerKey(ctx, topic, level)
	if err != nil {
		return false, err
	}
	correct, ok := answers[questionID]
	if !ok {
		return false, fmt.Errorf("%w: %s in %s/%s", domain.ErrQuestionNotFound, questionID, topic, level)
	}
	return Judge(answer, correct), nil
}

// GradeBatch judges every submission in order. Unknown question ids grade as incorrect and
// are reported in WrongAnswers rather than failing the batch.
func (s *GradingService) GradeBatch(ctx context.Context, topic, level string, submissions []domain.AnswerSubmission) (domain.GradeResult, error) {
	answers, err := s.keys.AnswerKey(ctx, topic, level)
	if err != nil {
		return domain.GradeResult{}, err
	}
	hints, err := s.keys.Hints(ctx, topic, level)
	if err != nil {
		log.Printf("grade: load hints for %s/%s: %v", topic, level, err)
		hints = domain.HintMap{}
	}

	result := domain.GradeResult{
		Results:      make([]bool, 0, len(submissions)),
		WrongAnswers: make([]domain.WrongAnswer, 0),
	}
	for i, sub := range submissions {
		correct, ok := answers[sub.QuestionID]
		isCorrect := false
		if ok {
			isCorrect = Judge(sub.Answer, correct)
		} else {
			log.Printf("grade: no answer key entry for question %s in %s/%s", sub.QuestionID, topic, level)
		}
		result.Results = append(result.Results, isCorrect)
		if isCorrect {
			continue
		}
		hint := hints[sub.QuestionID]
		result.WrongAnswers = append(result.WrongAnswers, domain.WrongAnswer{
			QuestionNumber: i + 1,
			Question:       hint.Question,
			UserAnswer:     FormatUserAnswer(sub.Answer),
			HintText:       hint.HintText,
			HintURL:        hint.HintURL,
		})
	}
	return result, nil
}
