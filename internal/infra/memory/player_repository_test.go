package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-or-human-service/internal/domain"
)

func TestPlayerRepositoryGetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository()

	p, err := repo.GetOrCreate(ctx, "u1", "Alice")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if p.Score != 0 || p.DailyAttempts != 0 || p.DisplayName != "Alice" {
		t.Fatalf("unexpected new player %+v", p)
	}

	again, _ := repo.GetOrCreate(ctx, "u1", "Renamed")
	if again.DisplayName != "Alice" {
		t.Fatalf("expected existing record, got %+v", again)
	}
}

func TestPlayerRepositoryApplyResolutionResetsOnNewDay(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository()
	yesterday := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	repo.Put(ctx, domain.Player{ID: "u1", DailyAttempts: 5, Score: 3, LastPlayedAt: yesterday})

	p, err := repo.ApplyResolution(ctx, domain.Resolution{
		PlayerID:   "u1",
		Correct:    true,
		ResolvedAt: yesterday.Add(2 * time.Minute),
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.DailyAttempts != 1 || p.Score != 4 {
		t.Fatalf("expected attempts=1 score=4, got %+v", p)
	}

	p, _ = repo.ApplyResolution(ctx, domain.Resolution{PlayerID: "u1", ResolvedAt: yesterday.Add(3 * time.Minute)})
	if p.DailyAttempts != 2 || p.Score != 4 {
		t.Fatalf("expected attempts=2 score=4, got %+v", p)
	}
}

func TestPlayerRepositoryApplyResolutionUnknownPlayer(t *testing.T) {
	repo := NewPlayerRepository()
	_, err := repo.ApplyResolution(context.Background(), domain.Resolution{PlayerID: "ghost", ResolvedAt: time.Now()})
	if !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected player not found, got %v", err)
	}
}

func TestPlayerRepositoryTopAndCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository()
	repo.Put(ctx, domain.Player{ID: "a", Score: 10})
	repo.Put(ctx, domain.Player{ID: "b", Score: 7})
	repo.Put(ctx, domain.Player{ID: "c", Score: 10})

	top, _ := repo.Top(ctx, 2)
	if len(top) != 2 || top[0].ID != "a" || top[1].ID != "c" {
		t.Fatalf("expected [a c] in storage order, got %+v", top)
	}

	within, _ := repo.TopWithin(ctx, []string{"b", "c"}, 5)
	if len(within) != 2 || within[0].ID != "c" || within[1].ID != "b" {
		t.Fatalf("expected [c b], got %+v", within)
	}

	if n, _ := repo.CountAbove(ctx, 7); n != 2 {
		t.Fatalf("expected 2 above 7, got %d", n)
	}
	if n, _ := repo.CountAboveWithin(ctx, 7, []string{"b", "c"}); n != 1 {
		t.Fatalf("expected 1 above 7 within set, got %d", n)
	}
}

func TestPlayerRepositoryApplyResolutionRespectsCap(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository()
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	before := domain.Player{ID: "u1", DailyAttempts: 5, Score: 2, LastPlayedAt: now.Add(-time.Hour)}
	repo.Put(ctx, before)

	_, err := repo.ApplyResolution(ctx, domain.Resolution{PlayerID: "u1", Correct: true, ResolvedAt: now, DailyLimit: 5})
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
	if after, _ := repo.Get(ctx, "u1"); after != before {
		t.Fatalf("expected no mutation, got %+v", after)
	}

	p, err := repo.ApplyResolution(ctx, domain.Resolution{PlayerID: "u1", ResolvedAt: now.Add(24 * time.Hour), DailyLimit: 5})
	if err != nil {
		t.Fatalf("next day: %v", err)
	}
	if p.DailyAttempts != 1 {
		t.Fatalf("expected reset on the next day, got %+v", p)
	}
}
