package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"kentei-quiz-service/internal/domain"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// QuestionConfig holds the partition layout and cache policy.
type QuestionConfig struct {
	Topics       []string
	Levels       []string
	BatchSize    int
	MinQuestions int
	// TTL applies to the full reload path, PartitionTTL to on-demand single partition builds.
	TTL          time.Duration
	PartitionTTL time.Duration
	LockTTL      time.Duration
	// BuildTimeout bounds one shared partition load.
	BuildTimeout time.Duration
}

func (c QuestionConfig) withDefaults() QuestionConfig {
	if len(c.Levels) == 0 {
		c.Levels = []string{"beginner", "intermediate", "advanced"}
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.MinQuestions <= 0 {
		c.MinQuestions = 1
	}
	if c.TTL <= 0 {
		c.TTL = 7 * 24 * time.Hour
	}
	if c.PartitionTTL <= 0 {
		c.PartitionTTL = 24 * time.Hour
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 60 * time.Second
	}
	if c.BuildTimeout <= 0 {
		c.BuildTimeout = 30 * time.Second
	}
	return c
}

// ReloadResult summarizes a full rebuild. InProgress means another caller holds the lock
// and nothing was done.
type ReloadResult struct {
	InProgress bool          `json:"inProgress"`
	Partitions int           `json:"partitions"`
	Skipped    []string      `json:"skipped,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
}

// QuestionService builds question sets into the cache and serves them.
type QuestionService struct {
	cache  Cache
	source QuestionSource
	cfg    QuestionConfig
	lock   *ReloadLock
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionService(cache Cache, source QuestionSource, cfg QuestionConfig) *QuestionService {
	cfg = cfg.withDefaults()
	return &QuestionService{
		cache:  cache,
		source: source,
		cfg:    cfg,
		lock:   NewReloadLock(cache, cfg.LockTTL),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *QuestionService) Topics() []string { return append([]string(nil), s.cfg.Topics...) }

func (s *QuestionService) Levels() []string { return append([]string(nil), s.cfg.Levels...) }

func questionsKey(topic, level string) string { return "q_" + topic + "_" + level }

func answersKey(topic, level string) string { return "a_" + topic + "_" + level }

func hintsKey(topic, level string) string { return "h_" + topic + "_" + level }

// BuildQuestionSet rebuilds one (topic, level) partition from the source. Concurrent
// callers for the same partition share one load.
func (s *QuestionService) BuildQuestionSet(ctx context.Context, topic, level string) error {
	if err := s.validatePartition(topic, level); err != nil {
		return err
	}
	// The shared load outlives any single caller; each caller still stops waiting when
	// its own context ends.
	ch := s.sf.DoChan(topic+"\x00"+level, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.BuildTimeout)
		defer cancel()
		rows, err := s.source.LoadRows(loadCtx, topic)
		if err != nil {
			return nil, fmt.Errorf("load rows for %s: %w", topic, err)
		}
		return nil, s.store(loadCtx, topic, level, BuildQuestionSet(level, rows), s.cfg.PartitionTTL)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReloadAll rebuilds every configured partition under the reload lock. If the lock is
// held the call returns immediately with InProgress set.
func (s *QuestionService) ReloadAll(ctx context.Context) (ReloadResult, error) {
	acquired, err := s.lock.TryLock(ctx)
	if err != nil {
		return ReloadResult{}, fmt.Errorf("acquire reload lock: %w", err)
	}
	if !acquired {
		log.Printf("reload: already in progress, skipping")
		return ReloadResult{InProgress: true}, nil
	}
	defer func() {
		if err := s.lock.Unlock(context.Background()); err != nil {
			log.Printf("reload: release lock: %v", err)
			return
		}
		log.Printf("reload: lock released")
	}()

	start := time.Now()
	var (
		mu     sync.Mutex
		result ReloadResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, topic := range s.cfg.Topics {
		topic := topic
		g.Go(func() error {
			rows, err := s.source.LoadRows(gctx, topic)
			if errors.Is(err, domain.ErrTopicNotFound) {
				log.Printf("reload: topic %s not found, skipping", topic)
				mu.Lock()
				result.Skipped = append(result.Skipped, topic)
				mu.Unlock()
				return nil
			}
			if err != nil {
				return fmt.Errorf("load rows for %s: %w", topic, err)
			}
			for _, level := range s.cfg.Levels {
				if err := s.store(gctx, topic, level, BuildQuestionSet(level, rows), s.cfg.TTL); err != nil {
					return err
				}
				mu.Lock()
				result.Partitions++
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("reload: failed: %v", err)
		return result, err
	}

	result.Elapsed = time.Since(start)
	log.Printf("reload: rebuilt %d partitions in %s", result.Partitions, result.Elapsed)
	return result, nil
}

// ClearAll drops every configured partition; the next read rebuilds on demand.
func (s *QuestionService) ClearAll(ctx context.Context) error {
	keys := make([]string, 0, len(s.cfg.Topics)*len(s.cfg.Levels)*3)
	for _, topic := range s.cfg.Topics {
		for _, level := range s.cfg.Levels {
			keys = append(keys, questionsKey(topic, level), answersKey(topic, level), hintsKey(topic, level))
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return s.cache.Remove(ctx, keys...)
}

// GetQuestions returns a shuffled batch of at most BatchSize questions with shuffled choices.
func (s *QuestionService) GetQuestions(ctx context.Context, topic, level string) ([]domain.Question, error) {
	if err := s.validatePartition(topic, level); err != nil {
		return nil, err
	}
	questions, err := s.questions(ctx, topic, level)
	if err != nil {
		return nil, err
	}
	if len(questions) < s.cfg.MinQuestions {
		return nil, fmt.Errorf("%w: %s has %d, need %d", domain.ErrNotEnoughQuestions, questionsKey(topic, level), len(questions), s.cfg.MinQuestions)
	}

	s.shuffleQuestions(questions)
	if len(questions) > s.cfg.BatchSize {
		questions = questions[:s.cfg.BatchSize]
	}
	for i := range questions {
		s.shuffleChoices(&questions[i])
	}
	return questions, nil
}

// TimedQuestions serves every level of topic ("ultra"), or of every configured topic
// when topic is empty ("extra"). Each question carries the hash of its answer instead of
// the answer. Unbuildable partitions fail ultra mode but are skipped in extra mode.
func (s *QuestionService) TimedQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	topics := []string{topic}
	ultra := strings.TrimSpace(topic) != ""
	if !ultra {
		topics = s.cfg.Topics
	}

	all := make([]domain.Question, 0)
	for _, t := range topics {
		for _, level := range s.cfg.Levels {
			questions, answers, err := s.partition(ctx, t, level)
			if err != nil {
				if ultra {
					return nil, err
				}
				log.Printf("timed: skipping %s: %v", questionsKey(t, level), err)
				continue
			}
			for i := range questions {
				if answer, ok := answers[questions[i].ID]; ok {
					questions[i].CorrectHash = AnswerHash(answer)
				}
				s.shuffleChoices(&questions[i])
			}
			all = append(all, questions...)
		}
	}
	s.shuffleQuestions(all)
	return all, nil
}

// AnswerKey returns the cached answer key, building the partition on a miss.
func (s *QuestionService) AnswerKey(ctx context.Context, topic, level string) (domain.AnswerKey, error) {
	if err := s.validatePartition(topic, level); err != nil {
		return nil, err
	}
	var answers domain.AnswerKey
	found, err := s.readJSON(ctx, answersKey(topic, level), &answers)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := s.BuildQuestionSet(ctx, topic, level); err != nil {
			return nil, err
		}
		if _, err := s.readJSON(ctx, answersKey(topic, level), &answers); err != nil {
			return nil, err
		}
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrAnswerKeyNotFound, answersKey(topic, level))
	}
	return answers, nil
}

// Hints returns the cached hints. A missing entry yields an empty map.
func (s *QuestionService) Hints(ctx context.Context, topic, level string) (domain.HintMap, error) {
	hints := make(domain.HintMap)
	found, err := s.readJSON(ctx, hintsKey(topic, level), &hints)
	if err != nil {
		return nil, err
	}
	if !found {
		log.Printf("grade: hints %s not cached, grading without hints", hintsKey(topic, level))
	}
	return hints, nil
}

func (s *QuestionService) questions(ctx context.Context, topic, level string) ([]domain.Question, error) {
	var questions []domain.Question
	found, err := s.readJSON(ctx, questionsKey(topic, level), &questions)
	if err != nil {
		return nil, err
	}
	if found {
		return questions, nil
	}
	if err := s.BuildQuestionSet(ctx, topic, level); err != nil {
		return nil, err
	}
	found, err = s.readJSON(ctx, questionsKey(topic, level), &questions)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuestionSetNotFound, questionsKey(topic, level))
	}
	return questions, nil
}

// partition reads the question list and answer key together, rebuilding both when either is missing.
func (s *QuestionService) partition(ctx context.Context, topic, level string) ([]domain.Question, domain.AnswerKey, error) {
	read := func() (bool, []domain.Question, domain.AnswerKey, error) {
		var (
			questions []domain.Question
			answers   domain.AnswerKey
		)
		qFound, err := s.readJSON(ctx, questionsKey(topic, level), &questions)
		if err != nil {
			return false, nil, nil, err
		}
		aFound, err := s.readJSON(ctx, answersKey(topic, level), &answers)
		if err != nil {
			return false, nil, nil, err
		}
		return qFound && aFound, questions, answers, nil
	}

	ok, questions, answers, err := read()
	if err != nil {
		return nil, nil, err
	}
	if ok {
		return questions, answers, nil
	}
	if err := s.BuildQuestionSet(ctx, topic, level); err != nil {
		return nil, nil, err
	}
	ok, questions, answers, err = read()
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrQuestionSetNotFound, questionsKey(topic, level))
	}
	return questions, answers, nil
}

func (s *QuestionService) store(ctx context.Context, topic, level string, set domain.QuestionSet, ttl time.Duration) error {
	entries := make(map[string]string, 3)
	for key, v := range map[string]interface{}{
		questionsKey(topic, level): set.Questions,
		answersKey(topic, level):   set.Answers,
		hintsKey(topic, level):     set.Hints,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		entries[key] = string(raw)
	}
	if err := s.cache.PutMulti(ctx, entries, s.ttlWithJitter(ttl)); err != nil {
		return fmt.Errorf("cache %s: %w", questionsKey(topic, level), err)
	}
	return nil
}

func (s *QuestionService) readJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *QuestionService) shuffleQuestions(questions []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}

// shuffleChoices permutes the non-empty choices of a choice question and packs them
// into A..D, leaving empty slots at the end.
func (s *QuestionService) shuffleChoices(q *domain.Question) {
	if q.SelectionType == domain.SelectionInput {
		return
	}
	valid := make([]string, 0, 4)
	for _, c := range q.Choices() {
		if c != "" {
			valid = append(valid, c)
		}
	}
	s.mu.Lock()
	s.rnd.Shuffle(len(valid), func(i, j int) { valid[i], valid[j] = valid[j], valid[i] })
	s.mu.Unlock()

	var packed [4]string
	copy(packed[:], valid)
	q.SetChoices(packed)
}

func (s *QuestionService) ttlWithJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(ttl) / 10
	s.mu.Lock()
	defer s.mu.Unlock()
	return ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}

// validatePartition rejects levels outside the configured set so request input cannot
// mint new cache partitions.
func (s *QuestionService) validatePartition(topic, level string) error {
	if strings.TrimSpace(topic) == "" || strings.TrimSpace(level) == "" {
		return fmt.Errorf("%w: topic and level are required", domain.ErrInvalidInput)
	}
	for _, l := range s.cfg.Levels {
		if l == level {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown level %q", domain.ErrInvalidInput, level)
}
