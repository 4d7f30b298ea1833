package domain

import "errors"

var (
	// ErrTopicNotFound is returned when the backing store has no partition for a topic.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrQuestionSetNotFound indicates the question list is still absent after a rebuild.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrNotEnoughQuestions indicates a partition holds fewer questions than the configured minimum.
	ErrNotEnoughQuestions = errors.New("not enough questions")
	// ErrAnswerKeyNotFound indicates no answer key exists for a topic and level.
	ErrAnswerKeyNotFound = errors.New("answer key not found")
	// ErrQuestionNotFound indicates a submitted question ID has no answer key entry.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrCertificateNotFound is returned when no certificate matches an id.
	ErrCertificateNotFound = errors.New("certificate not found")
	// ErrScoreNotFound is returned when no leaderboard row exists for a browser and mode.
	ErrScoreNotFound = errors.New("score not found")

	// ErrRateLimited asks the caller to retry later.
	ErrRateLimited = errors.New("too many requests, try again later")
	// ErrInvalidInput wraps validation failures of caller-supplied values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrScoreConflict is returned by stores when an insert races with an existing row.
	ErrScoreConflict = errors.New("score already exists")
	// ErrConcurrentUpdate indicates a conditional write kept losing to concurrent writers.
	ErrConcurrentUpdate = errors.New("concurrent score update")
)

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrTopicNotFound,
		ErrQuestionSetNotFound,
		ErrNotEnoughQuestions,
		ErrAnswerKeyNotFound,
		ErrQuestionNotFound,
		ErrCertificateNotFound,
		ErrScoreNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
