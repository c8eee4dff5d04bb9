package memory

import (
	"context"
	"sort"
	"sync"

	"ai-or-human-service/internal/domain"
)

// PlayerRepository is an in-memory implementation of app.PlayerRepository.
// Players are kept in creation order, which is the tie-break order for rankings.
type PlayerRepository struct {
	mu      sync.RWMutex
	order   []string
	players map[string]*domain.Player
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{
		players: make(map[string]*domain.Player),
	}
}

func (r *PlayerRepository) GetOrCreate(_ context.Context, userID, displayName string) (domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if player, ok := r.players[userID]; ok {
		return *player, nil
	}
	player := &domain.Player{ID: userID, DisplayName: displayName}
	r.players[userID] = player
	r.order = append(r.order, userID)
	return *player, nil
}

// Get returns a stored player without creating one.
func (r *PlayerRepository) Get(_ context.Context, userID string) (domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	player, ok := r.players[userID]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return *player, nil
}

// Put replaces a player record, creating it if needed.
func (r *PlayerRepository) Put(_ context.Context, player domain.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[player.ID]; !ok {
		r.order = append(r.order, player.ID)
	}
	p := player
	r.players[player.ID] = &p
}

func (r *PlayerRepository) ApplyResolution(_ context.Context, res domain.Resolution) (domain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[res.PlayerID]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	updated, err := res.Apply(*player)
	if err != nil {
		return domain.Player{}, err
	}
	*player = updated
	return updated, nil
}

func (r *PlayerRepository) Top(_ context.Context, limit int) ([]domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.topLocked(nil, limit), nil
}

func (r *PlayerRepository) TopWithin(_ context.Context, userIDs []string, limit int) ([]domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.topLocked(toSet(userIDs), limit), nil
}

func (r *PlayerRepository) CountAbove(_ context.Context, score int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countAboveLocked(nil, score), nil
}

func (r *PlayerRepository) CountAboveWithin(_ context.Context, score int, userIDs []string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countAboveLocked(toSet(userIDs), score), nil
}

func (r *PlayerRepository) topLocked(filter map[string]struct{}, limit int) []domain.Player {
	players := make([]domain.Player, 0, len(r.order))
	for _, id := range r.order {
		if filter != nil {
			if _, ok := filter[id]; !ok {
				continue
			}
		}
		players = append(players, *r.players[id])
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	return players
}

func (r *PlayerRepository) countAboveLocked(filter map[string]struct{}, score int) int {
	count := 0
	for id, player := range r.players {
		if filter != nil {
			if _, ok := filter[id]; !ok {
				continue
			}
		}
		if player.Score > score {
			count++
		}
	}
	return count
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
