package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ai-or-human-service/internal/domain"
	"github.com/uptrace/bun"
)

// PlayerRepository persists players through bun.
type PlayerRepository struct {
	db *bun.DB
}

func NewPlayerRepository(db *bun.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetOrCreate(ctx context.Context, userID, displayName string) (domain.Player, error) {
	row := &playerRow{ID: userID, DisplayName: displayName}
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return domain.Player{}, fmt.Errorf("create player: %w", err)
	}
	return r.get(ctx, userID)
}

// ApplyResolution updates the counters in one statement so concurrent rounds for the
// same player serialize on the row lock. The cap is part of the WHERE clause; a
// capped player matches no row and is told apart from a missing one by a re-read.
func (r *PlayerRepository) ApplyResolution(ctx context.Context, res domain.Resolution) (domain.Player, error) {
	delta := 0
	if res.Correct {
		delta = 1
	}
	row := new(playerRow)
	q := r.db.NewUpdate().
		Model(row).
		Set("daily_attempts = CASE WHEN last_played_at IS NULL OR last_played_at < ? THEN 1 ELSE daily_attempts + 1 END", res.DayStart()).
		Set("score = score + ?", delta).
		Set("last_played_at = ?", res.ResolvedAt.UTC()).
		Set("display_name = COALESCE(NULLIF(?, ''), display_name)", res.DisplayName).
		Where("id = ?", res.PlayerID)
	if res.DailyLimit > 0 {
		q = q.Where("(last_played_at IS NULL OR last_played_at < ? OR daily_attempts < ?)", res.DayStart(), res.DailyLimit)
	}
	err := q.Returning("*").Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return domain.Player{}, fmt.Errorf("resolve round: %w", err)
		}
		if _, err := r.get(ctx, res.PlayerID); err != nil {
			return domain.Player{}, err
		}
		return domain.Player{}, domain.ErrQuotaExceeded
	}
	return row.toDomain(), nil
}

func (r *PlayerRepository) Top(ctx context.Context, limit int) ([]domain.Player, error) {
	var rows []playerRow
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("score DESC, created_at ASC, id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	return toDomainPlayers(rows), nil
}

func (r *PlayerRepository) TopWithin(ctx context.Context, userIDs []string, limit int) ([]domain.Player, error) {
	if len(userIDs) == 0 {
		return []domain.Player{}, nil
	}
	var rows []playerRow
	err := r.db.NewSelect().
		Model(&rows).
		Where("id IN (?)", bun.In(userIDs)).
		OrderExpr("score DESC, created_at ASC, id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("read local leaderboard: %w", err)
	}
	return toDomainPlayers(rows), nil
}

func (r *PlayerRepository) CountAbove(ctx context.Context, score int) (int, error) {
	n, err := r.db.NewSelect().
		Model((*playerRow)(nil)).
		Where("score > ?", score).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count leaderboard: %w", err)
	}
	return n, nil
}

func (r *PlayerRepository) CountAboveWithin(ctx context.Context, score int, userIDs []string) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	n, err := r.db.NewSelect().
		Model((*playerRow)(nil)).
		Where("score > ?", score).
		Where("id IN (?)", bun.In(userIDs)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count local leaderboard: %w", err)
	}
	return n, nil
}

func (r *PlayerRepository) get(ctx context.Context, userID string) (domain.Player, error) {
	row := new(playerRow)
	err := r.db.NewSelect().Model(row).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Player{}, domain.ErrPlayerNotFound
		}
		return domain.Player{}, fmt.Errorf("read player: %w", err)
	}
	return row.toDomain(), nil
}
