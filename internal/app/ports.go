package app

import (
	"context"
	"time"

	"kentei-quiz-service/internal/domain"
)

// Cache is the expiring key-value store that holds built question sets, the reload
// lock and rate-limit counters. Get reports a miss with ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	// PutMulti writes every entry with the same ttl so readers never observe a partial set.
	PutMulti(ctx context.Context, entries map[string]string, ttl time.Duration) error
	Remove(ctx context.Context, keys ...string) error
	// PutIfAbsent stores value only when key is missing and reports whether it did.
	PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Incr increments a counter, starting its ttl when the counter is created.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// QuestionSource loads the raw rows of a topic partition in row order.
// A missing partition returns domain.ErrTopicNotFound.
type QuestionSource interface {
	LoadRows(ctx context.Context, topic string) ([]domain.QuestionRow, error)
}

// CertificateRepository is the append-only certificate record store.
type CertificateRepository interface {
	AppendCertificate(ctx context.Context, cert domain.Certificate) error
	// FindCertificate returns the first record by row order whose id equals id,
	// or domain.ErrCertificateNotFound.
	FindCertificate(ctx context.Context, id string) (domain.Certificate, error)
}

// ScoreRepository stores one leaderboard row per (browserID, mode).
type ScoreRepository interface {
	ListScores(ctx context.Context, mode string) ([]domain.ScoreEntry, error)
	// FindScore returns domain.ErrScoreNotFound when the pair has no row.
	FindScore(ctx context.Context, browserID, mode string) (domain.ScoreEntry, error)
	// InsertScore returns domain.ErrScoreConflict when the pair already has a row.
	InsertScore(ctx context.Context, entry domain.ScoreEntry) error
	// CompareAndSwapScore replaces the row only while its score still equals expected.
	CompareAndSwapScore(ctx context.Context, entry domain.ScoreEntry, expected int) (bool, error)
}
