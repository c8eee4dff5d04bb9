package migrations

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/uptrace/bun"
)

//go:embed 0001_create_players.sql
var createPlayersSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.ExecContext(ctx, createPlayersSQL); err != nil {
				return fmt.Errorf("create players: %w", err)
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS players`)
			return err
		},
	)
}
