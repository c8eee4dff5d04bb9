package postgres

import (
	"time"

	"ai-or-human-service/internal/domain"
	"github.com/uptrace/bun"
)

type playerRow struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID            string    `bun:"id,pk"`
	DisplayName   string    `bun:"display_name,notnull"`
	Score         int       `bun:"score,notnull"`
	DailyAttempts int       `bun:"daily_attempts,notnull"`
	LastPlayedAt  time.Time `bun:"last_played_at,nullzero"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r playerRow) toDomain() domain.Player {
	p := domain.Player{
		ID:            r.ID,
		DisplayName:   r.DisplayName,
		Score:         r.Score,
		DailyAttempts: r.DailyAttempts,
	}
	if !r.LastPlayedAt.IsZero() {
		p.LastPlayedAt = r.LastPlayedAt.UTC()
	}
	return p
}

func toDomainPlayers(rows []playerRow) []domain.Player {
	players := make([]domain.Player, 0, len(rows))
	for _, row := range rows {
		players = append(players, row.toDomain())
	}
	return players
}
