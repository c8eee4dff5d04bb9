package postgres

import (
	"context"
	"errors"
	"fmt"

	"ai-or-human-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const itemColumns = `id, prompt, answer, is_ai, author_id, created_at`

// ItemStore keeps round items in Postgres.
type ItemStore struct {
	pool *pgxpool.Pool
}

func NewItemStore(pool *pgxpool.Pool) *ItemStore {
	return &ItemStore{pool: pool}
}

// Sample picks one item uniformly at random.
func (s *ItemStore) Sample(ctx context.Context) (domain.RoundItem, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM round_items ORDER BY random() LIMIT 1`)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RoundItem{}, domain.ErrNoContentAvailable
		}
		return domain.RoundItem{}, fmt.Errorf("sample item: %w", err)
	}
	return item, nil
}

func (s *ItemStore) Insert(ctx context.Context, item domain.RoundItem) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO round_items (id, prompt, answer, is_ai, author_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.Prompt, item.Answer, item.IsAI, item.AuthorID, item.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// LoadItems returns the whole pool, oldest first.
func (s *ItemStore) LoadItems(ctx context.Context) ([]domain.RoundItem, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+itemColumns+` FROM round_items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	var items []domain.RoundItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return items, nil
}

func scanItem(row pgx.Row) (domain.RoundItem, error) {
	var item domain.RoundItem
	err := row.Scan(&item.ID, &item.Prompt, &item.Answer, &item.IsAI, &item.AuthorID, &item.CreatedAt)
	if err != nil {
		return domain.RoundItem{}, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	return item, nil
}
