package migrations

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/uptrace/bun"
)

//go:embed 0002_create_round_items.sql
var createRoundItemsSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.ExecContext(ctx, createRoundItemsSQL); err != nil {
				return fmt.Errorf("create round_items: %w", err)
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS round_items`)
			return err
		},
	)
}
