package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"ai-or-human-service/internal/app"
	"ai-or-human-service/internal/chat"
	"ai-or-human-service/internal/domain"
	"ai-or-human-service/internal/infra/memory"
)

type harness struct {
	router  *Router
	players *memory.PlayerRepository
	items   *memory.ItemRepository
	out     <-chan chat.Outbound
	dir     *chat.Directory
}

func newHarness(t *testing.T, items app.ItemRepository) *harness {
	t.Helper()
	players := memory.NewPlayerRepository()
	store := memory.NewItemRepository()
	if items == nil {
		items = store
	}
	hub := chat.NewHub()
	out, cancel := hub.Subscribe("c1")
	t.Cleanup(cancel)
	dir := chat.NewDirectory()

	router := NewRouter(Config{
		Rounds:      app.NewRoundService(players, items, app.RoundConfig{ResponseTimeout: 2 * time.Second}),
		Boards:      app.NewLeaderboardService(players),
		Submissions: app.NewSubmissionService(store, app.NewStaticAdmins("owner"), nil, app.SubmissionConfig{}),
		Dispatcher:  chat.NewDispatcher(),
		Sender:      hub,
		Members:     dir,
		Logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
	})
	t.Cleanup(router.Wait)
	return &harness{router: router, players: players, items: store, out: out, dir: dir}
}

func (h *harness) say(user, content string) {
	h.router.HandleMessage(context.Background(), domain.Message{
		AuthorID:   user,
		AuthorName: strings.ToUpper(user),
		ChannelID:  "c1",
		GuildID:    "g1",
		Content:    content,
	})
}

func (h *harness) next(t *testing.T) string {
	t.Helper()
	select {
	case msg := <-h.out:
		return msg.Content
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for bot message")
		return ""
	}
}

func TestPing(t *testing.T) {
	h := newHarness(t, nil)
	h.say("u1", "!ping")
	if got := h.next(t); got != "Pong!" {
		t.Fatalf("expected Pong!, got %q", got)
	}
}

func TestPlayRoundFlow(t *testing.T) {
	h := newHarness(t, nil)
	_ = h.items.Insert(context.Background(), domain.RoundItem{ID: "i1", Prompt: "Q?", Answer: "A.", IsAI: true})

	h.say("u1", "!play")
	if prompt := h.next(t); !strings.Contains(prompt, "Q?") || !strings.Contains(prompt, "A.") {
		t.Fatalf("expected prompt, got %q", prompt)
	}
	h.say("u2", "ai")
	h.say("u1", "AI")
	if got := h.next(t); got != "Correct! You earned 1 point." {
		t.Fatalf("unexpected result %q", got)
	}

	h.say("u1", "!points")
	if got := h.next(t); got != "You have 1 points." {
		t.Fatalf("unexpected points reply %q", got)
	}
}

func TestPlayWithoutContent(t *testing.T) {
	h := newHarness(t, nil)
	h.say("u1", "!play")
	if got := h.next(t); !strings.Contains(got, "!submit") {
		t.Fatalf("expected submit guidance, got %q", got)
	}
}

func TestPlayQuotaExceeded(t *testing.T) {
	h := newHarness(t, nil)
	_ = h.items.Insert(context.Background(), domain.RoundItem{ID: "i1"})
	h.players.Put(context.Background(), domain.Player{ID: "u1", DailyAttempts: 5, LastPlayedAt: time.Now()})

	h.say("u1", "!play")
	if got := h.next(t); !strings.Contains(got, "daily limit of 5") {
		t.Fatalf("expected quota message, got %q", got)
	}
}

func TestSubmitFlow(t *testing.T) {
	h := newHarness(t, nil)
	h.say("u1", "!submit What is love?")
	if got := h.next(t); !strings.Contains(got, "3-4 sentence") {
		t.Fatalf("expected answer request, got %q", got)
	}
	h.say("u1", "Baby don't hurt me.")
	if got := h.next(t); !strings.Contains(got, "submitted") {
		t.Fatalf("expected confirmation, got %q", got)
	}
	if h.items.Len() != 1 {
		t.Fatalf("expected stored item")
	}
}

func TestAdminAddReplies(t *testing.T) {
	h := newHarness(t, nil)

	h.say("u1", "!add a | b | true")
	if got := h.next(t); !strings.Contains(got, "permission") {
		t.Fatalf("expected permission denied, got %q", got)
	}
	h.say("owner", "!add bad|format")
	if got := h.next(t); !strings.Contains(got, "Invalid format") {
		t.Fatalf("expected format error, got %q", got)
	}
	h.say("owner", "!add Is this AI? | It sure is. | true")
	if got := h.next(t); got != "Prompt added successfully!" {
		t.Fatalf("unexpected reply %q", got)
	}
	if h.items.Len() != 1 {
		t.Fatalf("expected one item, got %d", h.items.Len())
	}
}

func TestLeaderboardAndRank(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	h.players.Put(ctx, domain.Player{ID: "a", DisplayName: "Ann", Score: 10})
	h.players.Put(ctx, domain.Player{ID: "b", DisplayName: "Ben", Score: 10})
	h.players.Put(ctx, domain.Player{ID: "u1", DisplayName: "U1", Score: 7})
	h.dir.Join("g1", "u1")
	h.dir.Join("g1", "b")

	h.say("u1", "!leaderboard")
	if got := h.next(t); got != "Global Leaderboard\n1. Ann: 10 points\n1. Ben: 10 points\n3. U1: 7 points" {
		t.Fatalf("unexpected board %q", got)
	}
	h.say("u1", "!leaderboard local")
	if got := h.next(t); got != "Server Leaderboard\n1. Ben: 10 points\n2. U1: 7 points" {
		t.Fatalf("unexpected local board %q", got)
	}
	h.say("u1", "!rank")
	if got := h.next(t); got != "Your global rank is #3 with 7 points." {
		t.Fatalf("unexpected rank %q", got)
	}
	h.say("u1", "!rank local")
	if got := h.next(t); got != "Your server rank is #2 with 7 points." {
		t.Fatalf("unexpected local rank %q", got)
	}
}

func TestInfrastructureErrorsGetGenericReply(t *testing.T) {
	h := newHarness(t, brokenItems{})
	h.say("u1", "!play")
	if got := h.next(t); !strings.Contains(got, "Something went wrong") {
		t.Fatalf("expected generic failure, got %q", got)
	}
}

func TestIgnoresNonCommands(t *testing.T) {
	h := newHarness(t, nil)
	h.say("u1", "hello there")
	h.say("u1", "!unknown")
	h.say("u1", "!ping")
	if got := h.next(t); got != "Pong!" {
		t.Fatalf("expected only the ping reply, got %q", got)
	}
}

type brokenItems struct{}

func (brokenItems) Sample(context.Context) (domain.RoundItem, error) {
	return domain.RoundItem{}, errors.New("dial tcp: connection refused")
}

func (brokenItems) Insert(context.Context, domain.RoundItem) error {
	return errors.New("dial tcp: connection refused")
}
