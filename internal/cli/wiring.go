package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"kentei-quiz-service/internal/app"
	"kentei-quiz-service/internal/config"
	"kentei-quiz-service/internal/infra/memory"
	pgstore "kentei-quiz-service/internal/infra/postgres"
	rediscache "kentei-quiz-service/internal/infra/redis"
	"kentei-quiz-service/internal/infra/sheets"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// services is the assembled object graph plus the resources to release on exit.
type services struct {
	questions    *app.QuestionService
	grading      *app.GradingService
	certificates *app.CertificateService
	leaderboard  *app.LeaderboardService
	limiter      *app.RateLimiter

	closers []func()
}

func (s *services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

type stores struct {
	source       app.QuestionSource
	certificates app.CertificateRepository
	scores       app.ScoreRepository
	// topics replaces an empty quiz.topics list.
	topics []string
}

func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	svc := &services{}

	var cache app.Cache = memory.NewCache()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		svc.closers = append(svc.closers, func() { _ = client.Close() })
		cache = rediscache.NewCache(client, cfg.Redis.Prefix)
		log.Printf("cache: redis at %s", cfg.Redis.Addr)
	} else {
		log.Printf("cache: in-memory")
	}

	st, err := buildStores(ctx, cfg, svc)
	if err != nil {
		svc.Close()
		return nil, err
	}

	topics := cfg.Quiz.Topics
	if len(topics) == 0 {
		topics = st.topics
	}
	if len(topics) == 0 {
		log.Printf("quiz: no topics configured; reload and extra mode will serve nothing")
	}
	svc.questions = app.NewQuestionService(cache, st.source, app.QuestionConfig{
		Topics:       topics,
		Levels:       cfg.Quiz.Levels,
		BatchSize:    cfg.Quiz.BatchSize,
		MinQuestions: cfg.Quiz.MinQuestions,
		TTL:          config.TTLDuration(cfg.Quiz.TTL, 7*24*time.Hour),
		PartitionTTL: config.TTLDuration(cfg.Quiz.PartitionTTL, 24*time.Hour),
		LockTTL:      config.TTLDuration(cfg.Quiz.LockTTL, 60*time.Second),
	})
	svc.grading = app.NewGradingService(svc.questions)
	svc.certificates = app.NewCertificateService(st.certificates)
	svc.leaderboard = app.NewLeaderboardService(st.scores, app.NewLeaderboardHub(), app.LeaderboardConfig{
		DefaultMode:  cfg.Leaderboard.DefaultMode,
		DefaultLimit: cfg.Leaderboard.Limit,
	})
	svc.limiter = app.NewRateLimiter(cache, config.TTLDuration(cfg.RateLimit.Window, 60*time.Second), cfg.RateLimit.Max)
	return svc, nil
}

// buildStores prefers Postgres, then a workbook file, then built-in demo data.
func buildStores(ctx context.Context, cfg config.Config, svc *services) (stores, error) {
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return stores{}, fmt.Errorf("connect postgres: %w", err)
		}
		svc.closers = append(svc.closers, pool.Close)
		log.Printf("store: postgres")
		return stores{
			source:       pgstore.NewQuestionSource(pool),
			certificates: pgstore.NewCertificateStore(pool),
			scores:       pgstore.NewScoreStore(pool),
		}, nil
	case cfg.Sheets.Path != "":
		wb, err := sheets.Open(cfg.Sheets.Path)
		if err != nil {
			return stores{}, fmt.Errorf("open workbook %s: %w", cfg.Sheets.Path, err)
		}
		svc.closers = append(svc.closers, func() { _ = wb.Close() })
		log.Printf("store: workbook %s", cfg.Sheets.Path)
		topics, err := wb.Topics()
		if err != nil {
			return stores{}, fmt.Errorf("list workbook topics: %w", err)
		}
		return stores{
			source:       sheets.NewQuestionSource(wb),
			certificates: sheets.NewCertificateStore(wb),
			scores:       sheets.NewScoreStore(wb),
			topics:       topics,
		}, nil
	default:
		log.Printf("store: in-memory demo data")
		return stores{
			source:       memory.NewQuestionSource(sampleRows()),
			certificates: memory.NewCertificateStore(),
			scores:       memory.NewScoreStore(),
			topics:       demoTopics,
		}, nil
	}
}
