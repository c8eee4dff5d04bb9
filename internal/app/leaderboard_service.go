package app

import (
	"context"
	"fmt"

	"ai-or-human-service/internal/domain"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 50
)

// LeaderboardService answers ranking queries over the player population.
type LeaderboardService struct {
	players PlayerRepository
}

func NewLeaderboardService(players PlayerRepository) *LeaderboardService {
	return &LeaderboardService{players: players}
}

// TopGlobal returns the n best players across everyone. n is clamped to
// MaxLeaderboardSize; n <= 0 means DefaultLeaderboardSize.
func (s *LeaderboardService) TopGlobal(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	players, err := s.players.Top(ctx, clampSize(n))
	if err != nil {
		return nil, fmt.Errorf("top players: %w", err)
	}
	return rankEntries(players), nil
}

// TopWithin returns the n best players whose ID is in userIDs, with n clamped
// as in TopGlobal. An empty userIDs yields no entries.
func (s *LeaderboardService) TopWithin(ctx context.Context, userIDs []string, n int) ([]domain.LeaderboardEntry, error) {
	if len(userIDs) == 0 {
		return []domain.LeaderboardEntry{}, nil
	}
	players, err := s.players.TopWithin(ctx, userIDs, clampSize(n))
	if err != nil {
		return nil, fmt.Errorf("top players within set: %w", err)
	}
	return rankEntries(players), nil
}

// Profile returns the caller's record, creating it on first contact.
func (s *LeaderboardService) Profile(ctx context.Context, who Invoker) (domain.Player, error) {
	player, err := s.players.GetOrCreate(ctx, who.UserID, who.DisplayName)
	if err != nil {
		return domain.Player{}, fmt.Errorf("load player: %w", err)
	}
	return player, nil
}

// Rank is 1 + the number of players with a strictly greater score.
func (s *LeaderboardService) Rank(ctx context.Context, who Invoker) (int, domain.Player, error) {
	player, err := s.Profile(ctx, who)
	if err != nil {
		return 0, domain.Player{}, err
	}
	above, err := s.players.CountAbove(ctx, player.Score)
	if err != nil {
		return 0, domain.Player{}, fmt.Errorf("count players above: %w", err)
	}
	return above + 1, player, nil
}

// RankWithin ranks the caller among userIDs only.
func (s *LeaderboardService) RankWithin(ctx context.Context, who Invoker, userIDs []string) (int, domain.Player, error) {
	player, err := s.Profile(ctx, who)
	if err != nil {
		return 0, domain.Player{}, err
	}
	above, err := s.players.CountAboveWithin(ctx, player.Score, userIDs)
	if err != nil {
		return 0, domain.Player{}, fmt.Errorf("count players above within set: %w", err)
	}
	return above + 1, player, nil
}

// rankEntries assigns competition ranks to a score-descending slice.
func rankEntries(players []domain.Player) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(players))
	for i, p := range players {
		rank := i + 1
		if i > 0 && p.Score == players[i-1].Score {
			rank = entries[i-1].Rank
		}
		entries = append(entries, domain.LeaderboardEntry{
			Rank:        rank,
			UserID:      p.ID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
		})
	}
	return entries
}

func clampSize(n int) int {
	if n <= 0 {
		return DefaultLeaderboardSize
	}
	if n > MaxLeaderboardSize {
		return MaxLeaderboardSize
	}
	return n
}
