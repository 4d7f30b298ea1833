package app

import (
	"sync"

	"kentei-quiz-service/internal/domain"
)

// LeaderboardHub fans leaderboard snapshots out to in-process subscribers, per mode.
type LeaderboardHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{
		subscribers: make(map[string]map[chan domain.Leaderboard]struct{}),
	}
}

// Subscribe registers a channel for mode and primes it with initial.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *LeaderboardHub) Subscribe(mode string, initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	h.mu.Lock()
	subs, ok := h.subscribers[mode]
	if !ok {
		subs = make(map[chan domain.Leaderboard]struct{})
		h.subscribers[mode] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[mode]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.subscribers, mode)
		}
	}
	return ch, cancel
}

// Publish sends lb to every subscriber of lb.Mode. A subscriber that has fallen behind
// loses its oldest pending snapshot instead of blocking the publisher.
func (h *LeaderboardHub) Publish(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[lb.Mode] {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

// Subscribers reports how many channels listen on mode.
func (h *LeaderboardHub) Subscribers(mode string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[mode])
}
