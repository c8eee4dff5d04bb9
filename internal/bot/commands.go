package bot

import (
	"context"
	"fmt"
	"strings"

	"ai-or-human-service/internal/app"
	"ai-or-human-service/internal/chat"
	"ai-or-human-service/internal/domain"
)

func (r *Router) ping(context.Context, domain.Message, string) (string, error) {
	return "Pong!", nil
}

func (r *Router) play(ctx context.Context, msg domain.Message, _ string) (string, error) {
	conv := chat.NewConversation(r.cfg.Dispatcher, r.cfg.Sender, msg)

	r.cfg.Metrics.WaitStarted()
	res, err := r.cfg.Rounds.Play(ctx, invoker(msg), conv)
	r.cfg.Metrics.WaitFinished()
	if err != nil {
		return "", err
	}
	r.cfg.Metrics.RecordRound(res.Outcome.String())

	switch res.Outcome {
	case app.OutcomeQuotaExceeded:
		return r.quotaMessage(), nil
	case app.OutcomeNoContent:
		return r.noContentMessage(), nil
	case app.OutcomeTimedOut:
		return "Sorry, you didn't reply in time!", nil
	}
	if res.Correct {
		return "Correct! You earned 1 point.", nil
	}
	return "Sorry, that's incorrect. No points earned.", nil
}

func (r *Router) points(ctx context.Context, msg domain.Message, _ string) (string, error) {
	player, err := r.cfg.Boards.Profile(ctx, invoker(msg))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("You have %d points.", player.Score), nil
}

func (r *Router) submit(ctx context.Context, msg domain.Message, prompt string) (string, error) {
	conv := chat.NewConversation(r.cfg.Dispatcher, r.cfg.Sender, msg)

	r.cfg.Metrics.WaitStarted()
	_, err := r.cfg.Submissions.Submit(ctx, invoker(msg), prompt, conv)
	r.cfg.Metrics.WaitFinished()
	if err != nil {
		return "", err
	}
	r.cfg.Metrics.RecordSubmission("player")
	return "Your prompt and answer have been submitted. If it fools other players, you'll earn 3 points!", nil
}

func (r *Router) add(ctx context.Context, msg domain.Message, raw string) (string, error) {
	if _, err := r.cfg.Submissions.AdminAdd(ctx, invoker(msg), raw); err != nil {
		return "", err
	}
	r.cfg.Metrics.RecordSubmission("admin")
	return "Prompt added successfully!", nil
}

func (r *Router) generate(ctx context.Context, msg domain.Message, prompt string) (string, error) {
	item, err := r.cfg.Submissions.Generate(ctx, invoker(msg), prompt)
	if err != nil {
		return "", err
	}
	r.cfg.Metrics.RecordSubmission("generated")
	return fmt.Sprintf("Added an AI answer for %q.", item.Prompt), nil
}

func (r *Router) leaderboard(ctx context.Context, msg domain.Message, args string) (string, error) {
	if isLocal(args) {
		members, ok := r.members(msg)
		if !ok {
			return "The local leaderboard is only available inside a server.", nil
		}
		entries, err := r.cfg.Boards.TopWithin(ctx, members, app.DefaultLeaderboardSize)
		if err != nil {
			return "", err
		}
		return formatLeaderboard("Server Leaderboard", entries), nil
	}

	entries, err := r.cfg.Boards.TopGlobal(ctx, app.DefaultLeaderboardSize)
	if err != nil {
		return "", err
	}
	return formatLeaderboard("Global Leaderboard", entries), nil
}

func (r *Router) rank(ctx context.Context, msg domain.Message, args string) (string, error) {
	if isLocal(args) {
		members, ok := r.members(msg)
		if !ok {
			return "Local rank is only available inside a server.", nil
		}
		rank, player, err := r.cfg.Boards.RankWithin(ctx, invoker(msg), members)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Your server rank is #%d with %d points.", rank, player.Score), nil
	}

	rank, player, err := r.cfg.Boards.Rank(ctx, invoker(msg))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Your global rank is #%d with %d points.", rank, player.Score), nil
}

func (r *Router) members(msg domain.Message) ([]string, bool) {
	if msg.GuildID == "" || r.cfg.Members == nil {
		return nil, false
	}
	return r.cfg.Members.Members(msg.GuildID)
}

func isLocal(args string) bool {
	switch strings.ToLower(strings.TrimSpace(args)) {
	case "local", "server":
		return true
	}
	return false
}

func formatLeaderboard(title string, entries []domain.LeaderboardEntry) string {
	if len(entries) == 0 {
		return title + "\nNo players yet."
	}
	var b strings.Builder
	b.WriteString(title)
	for _, e := range entries {
		name := e.DisplayName
		if name == "" {
			name = e.UserID
		}
		fmt.Fprintf(&b, "\n%d. %s: %d points", e.Rank, name, e.Score)
	}
	return b.String()
}
