package app_test

import (
	"context"
	"fmt"
	"testing"

	"ai-or-human-service/internal/app"
	"ai-or-human-service/internal/domain"
	"ai-or-human-service/internal/infra/memory"
)

func seededLeaderboard(scores map[string]int, order ...string) (*app.LeaderboardService, *memory.PlayerRepository) {
	players := memory.NewPlayerRepository()
	for _, id := range order {
		players.Put(context.Background(), domain.Player{ID: id, DisplayName: id, Score: scores[id]})
	}
	return app.NewLeaderboardService(players), players
}

func TestTopGlobalAndRank(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededLeaderboard(map[string]int{"a": 10, "b": 10, "c": 7}, "a", "c", "b")

	top, err := svc.TopGlobal(ctx, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].Score != 10 || top[1].Score != 10 {
		t.Fatalf("expected both score-10 players, got %+v", top)
	}
	if top[0].Rank != 1 || top[1].Rank != 1 {
		t.Fatalf("expected tied players to share rank 1, got %+v", top)
	}

	rank, _, err := svc.Rank(ctx, app.Invoker{UserID: "c"})
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if rank != 3 {
		t.Fatalf("expected rank 3, got %d", rank)
	}
	for _, id := range []string{"a", "b"} {
		if r, _, _ := svc.Rank(ctx, app.Invoker{UserID: id}); r != 1 {
			t.Fatalf("expected %s rank 1, got %d", id, r)
		}
	}
}

func TestRankMonotonic(t *testing.T) {
	ctx := context.Background()
	scores := map[string]int{"a": 3, "b": 9, "c": 0, "d": 9, "e": 5, "f": 3}
	svc, _ := seededLeaderboard(scores, "a", "b", "c", "d", "e", "f")

	ranks := map[string]int{}
	for id := range scores {
		r, _, err := svc.Rank(ctx, app.Invoker{UserID: id})
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		ranks[id] = r
	}
	for p, sp := range scores {
		for q, sq := range scores {
			if sp >= sq && ranks[p] > ranks[q] {
				t.Fatalf("rank(%s)=%d > rank(%s)=%d with scores %d >= %d", p, ranks[p], q, ranks[q], sp, sq)
			}
			if sp == sq && ranks[p] != ranks[q] {
				t.Fatalf("equal scores with different ranks: %s=%d %s=%d", p, ranks[p], q, ranks[q])
			}
		}
	}
}

func TestTopWithinAndLocalRank(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededLeaderboard(map[string]int{"a": 10, "b": 4, "c": 7, "d": 1}, "a", "b", "c", "d")
	members := []string{"b", "c", "d"}

	top, err := svc.TopWithin(ctx, members, 10)
	if err != nil {
		t.Fatalf("top within: %v", err)
	}
	if len(top) != 3 || top[0].UserID != "c" || top[1].UserID != "b" || top[2].UserID != "d" {
		t.Fatalf("unexpected local board %+v", top)
	}

	rank, _, err := svc.RankWithin(ctx, app.Invoker{UserID: "b"}, members)
	if err != nil {
		t.Fatalf("rank within: %v", err)
	}
	if rank != 2 {
		t.Fatalf("expected local rank 2, got %d", rank)
	}

	empty, err := svc.TopWithin(ctx, nil, 10)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty board for empty set, got %+v %v", empty, err)
	}
}

func TestProfileCreatesPlayer(t *testing.T) {
	ctx := context.Background()
	svc, players := seededLeaderboard(nil)
	p, err := svc.Profile(ctx, app.Invoker{UserID: "new", DisplayName: "Newbie"})
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Score != 0 {
		t.Fatalf("expected zero score, got %d", p.Score)
	}
	if _, err := players.Get(ctx, "new"); err != nil {
		t.Fatalf("expected player to be stored: %v", err)
	}
}

func TestTopGlobalClampsSize(t *testing.T) {
	ctx := context.Background()
	scores := map[string]int{}
	var order []string
	for i := 0; i < app.MaxLeaderboardSize+10; i++ {
		id := fmt.Sprintf("p%02d", i)
		scores[id] = i
		order = append(order, id)
	}
	svc, _ := seededLeaderboard(scores, order...)

	cases := []struct {
		n    int
		want int
	}{
		{0, app.DefaultLeaderboardSize},
		{-3, app.DefaultLeaderboardSize},
		{7, 7},
		{app.MaxLeaderboardSize + 5, app.MaxLeaderboardSize},
	}
	for _, tc := range cases {
		top, err := svc.TopGlobal(ctx, tc.n)
		if err != nil {
			t.Fatalf("top(%d): %v", tc.n, err)
		}
		if len(top) != tc.want {
			t.Fatalf("top(%d): expected %d entries, got %d", tc.n, tc.want, len(top))
		}
	}
}
