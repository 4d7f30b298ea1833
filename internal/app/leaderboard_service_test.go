package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kentei-quiz-service/internal/app"
	"kentei-quiz-service/internal/domain"
	"kentei-quiz-service/internal/infra/memory"
)

func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func TestSubmitKeepsBestScore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewScoreStore()
	svc := app.NewLeaderboardServiceWithClock(store, nil, app.LeaderboardConfig{}, tickingClock())

	for _, score := range []int{60, 80, 60} {
		rank, err := svc.Submit(ctx, app.ScoreSubmission{BrowserID: "b1", Nickname: "taro", Score: score, Mode: "ultra"})
		if err != nil {
			t.Fatalf("submit %d: %v", score, err)
		}
		if rank != 1 {
			t.Fatalf("expected rank 1, got %d", rank)
		}
	}
	entries, _ := store.ListScores(ctx, "ultra")
	if len(entries) != 1 || entries[0].Score != 80 {
		t.Fatalf("expected a single row at 80, got %+v", entries)
	}
}

func TestTopOrdersTiesByTimestamp(t *testing.T) {
	ctx := context.Background()
	svc := app.NewLeaderboardServiceWithClock(memory.NewScoreStore(), nil, app.LeaderboardConfig{}, tickingClock())

	for _, sub := range []app.ScoreSubmission{
		{BrowserID: "early", Nickname: "A", Score: 90},
		{BrowserID: "late", Nickname: "B", Score: 90},
		{BrowserID: "low", Nickname: "C", Score: 70},
	} {
		if _, err := svc.Submit(ctx, sub); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	lb, err := svc.Top(ctx, "", 2, "late")
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if lb.Mode != "extra" {
		t.Fatalf("expected default mode, got %q", lb.Mode)
	}
	if len(lb.Rankings) != 2 {
		t.Fatalf("expected limit 2, got %d", len(lb.Rankings))
	}
	if lb.Rankings[0].BrowserID != "early" || lb.Rankings[1].BrowserID != "late" {
		t.Fatalf("expected earlier timestamp first on ties, got %+v", lb.Rankings)
	}
	if lb.Rankings[0].IsCurrentUser || !lb.Rankings[1].IsCurrentUser {
		t.Fatalf("unexpected current user flags %+v", lb.Rankings)
	}
	if lb.Rankings[1].Rank != 2 {
		t.Fatalf("expected 1-based ranks, got %d", lb.Rankings[1].Rank)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := app.NewLeaderboardService(memory.NewScoreStore(), nil, app.LeaderboardConfig{})
	for _, sub := range []app.ScoreSubmission{
		{Nickname: "taro", Score: 10},
		{BrowserID: "b1", Score: 10},
		{BrowserID: "b1", Nickname: "taro", Score: -1},
		{BrowserID: "b1", Nickname: "taro", Score: 101},
	} {
		if _, err := svc.Submit(context.Background(), sub); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", sub, err)
		}
	}
}

// racingStore loses every compare-and-swap to simulate a concurrent writer.
type racingStore struct {
	*memory.ScoreStore
}

func (racingStore) CompareAndSwapScore(context.Context, domain.ScoreEntry, int) (bool, error) {
	return false, nil
}

func TestSubmitGivesUpAfterLosingRaces(t *testing.T) {
	ctx := context.Background()
	store := racingStore{memory.NewScoreStore()}
	svc := app.NewLeaderboardService(store, nil, app.LeaderboardConfig{MaxAttempts: 2})

	if _, err := svc.Submit(ctx, app.ScoreSubmission{BrowserID: "b1", Nickname: "taro", Score: 50}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := svc.Submit(ctx, app.ScoreSubmission{BrowserID: "b1", Nickname: "taro", Score: 70}); !errors.Is(err, domain.ErrConcurrentUpdate) {
		t.Fatalf("expected concurrent update, got %v", err)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	hub := app.NewLeaderboardHub()
	svc := app.NewLeaderboardService(memory.NewScoreStore(), hub, app.LeaderboardConfig{})

	ch, cancel, err := svc.Subscribe(ctx, "extra")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	<-ch // initial snapshot

	if _, err := svc.Submit(ctx, app.ScoreSubmission{BrowserID: "b1", Nickname: "taro", Score: 40}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case lb := <-ch:
		if len(lb.Rankings) != 1 || lb.Rankings[0].Score != 40 || lb.Rankings[0].IsCurrentUser {
			t.Fatalf("unexpected update %+v", lb)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for leaderboard update")
	}

	// A lower score does not change the board and is not broadcast.
	if _, err := svc.Submit(ctx, app.ScoreSubmission{BrowserID: "b1", Nickname: "taro", Score: 10}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case lb := <-ch:
		t.Fatalf("unexpected broadcast %+v", lb)
	default:
	}

	cancel()
	if hub.Subscribers("extra") != 0 {
		t.Fatalf("expected subscriber to be removed")
	}
}
