package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-or-human-service/internal/domain"
)

// DefaultRoundTimeout bounds how long a round waits for a guess.
const DefaultRoundTimeout = 30 * time.Second

// RoundOutcome is the terminal state of a round.
type RoundOutcome int

const (
	OutcomeResolved RoundOutcome = iota
	OutcomeQuotaExceeded
	OutcomeNoContent
	OutcomeTimedOut
)

func (o RoundOutcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeQuotaExceeded:
		return "quota_exceeded"
	case OutcomeNoContent:
		return "no_content"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// RoundResult summarizes one round for the caller.
type RoundResult struct {
	Outcome RoundOutcome
	Item    domain.RoundItem
	Guess   domain.Guess
	Correct bool
	// Player is the record after resolution, or as read at quota check otherwise.
	Player domain.Player
}

// RoundConfig tunes a RoundService. Zero values fall back to defaults.
type RoundConfig struct {
	DailyLimit      int
	ResponseTimeout time.Duration
	Now             func() time.Time
}

// RoundService runs a single AI-or-human round for one player.
type RoundService struct {
	players PlayerRepository
	items   ItemRepository
	quota   QuotaPolicy
	timeout time.Duration
	now     func() time.Time
}

func NewRoundService(players PlayerRepository, items ItemRepository, cfg RoundConfig) *RoundService {
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = DefaultRoundTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RoundService{
		players: players,
		items:   items,
		quota:   QuotaPolicy{Limit: cfg.DailyLimit},
		timeout: cfg.ResponseTimeout,
		now:     cfg.Now,
	}
}

// Play checks the quota, presents a random item, waits for a guess and commits the result.
// Only infrastructure failures are returned as errors; every terminal state is a RoundOutcome.
func (s *RoundService) Play(ctx context.Context, who Invoker, conv Conversation) (RoundResult, error) {
	player, err := s.players.GetOrCreate(ctx, who.UserID, who.DisplayName)
	if err != nil {
		return RoundResult{}, fmt.Errorf("load player: %w", err)
	}

	if decision := s.quota.CanPlay(player, s.now()); !decision.Allowed {
		return RoundResult{Outcome: OutcomeQuotaExceeded, Player: player}, nil
	}

	item, err := s.items.Sample(ctx)
	if errors.Is(err, domain.ErrNoContentAvailable) {
		return RoundResult{Outcome: OutcomeNoContent, Player: player}, nil
	}
	if err != nil {
		return RoundResult{}, fmt.Errorf("sample item: %w", err)
	}

	msg, err := conv.Ask(ctx, FormatRoundPrompt(item), isGuessMessage, s.timeout)
	if errors.Is(err, domain.ErrResponseTimeout) {
		return RoundResult{Outcome: OutcomeTimedOut, Item: item, Player: player}, nil
	}
	if err != nil {
		return RoundResult{}, fmt.Errorf("present item: %w", err)
	}

	guess, _ := ParseGuess(msg.Content)
	correct := (guess == domain.GuessAI) == item.IsAI

	updated, err := s.players.ApplyResolution(ctx, domain.Resolution{
		PlayerID:    who.UserID,
		DisplayName: who.DisplayName,
		Correct:     correct,
		ResolvedAt:  s.now(),
		DailyLimit:  s.quota.limit(),
	})
	if errors.Is(err, domain.ErrQuotaExceeded) {
		// Another round for this player resolved first and used the last guess.
		return RoundResult{Outcome: OutcomeQuotaExceeded, Item: item, Guess: guess, Player: player}, nil
	}
	if err != nil {
		return RoundResult{}, fmt.Errorf("apply resolution: %w", err)
	}

	return RoundResult{
		Outcome: OutcomeResolved,
		Item:    item,
		Guess:   guess,
		Correct: correct,
		Player:  updated,
	}, nil
}

// ParseGuess accepts "ai" or "human" in any case, ignoring surrounding space.
func ParseGuess(content string) (domain.Guess, bool) {
	switch domain.Guess(strings.ToLower(strings.TrimSpace(content))) {
	case domain.GuessAI:
		return domain.GuessAI, true
	case domain.GuessHuman:
		return domain.GuessHuman, true
	}
	return "", false
}

func isGuessMessage(msg domain.Message) bool {
	_, ok := ParseGuess(msg.Content)
	return ok
}

// FormatRoundPrompt renders the passage shown to the player. The reference answer
// is shown together with the prompt; the player judges who wrote the answer.
func FormatRoundPrompt(item domain.RoundItem) string {
	return fmt.Sprintf("Prompt: %s\n\nAnswer: %s\n\nIs this answer from AI or Human? Reply with 'AI' or 'Human'.", item.Prompt, item.Answer)
}
