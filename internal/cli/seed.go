package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ai-or-human-service/internal/app"
	"ai-or-human-service/internal/config"
	"ai-or-human-service/internal/domain"
	"ai-or-human-service/internal/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Items []domain.RoundItem `yaml:"items"`
}

// NewSeedCmd bulk-inserts round items from a YAML file.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert round items from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/items.yaml", "YAML file with an items list")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("seed requires postgres.url")
	}
	logger := logging.NewLogger(cfg.Log)

	items, err := readSeedFile(file)
	if err != nil {
		return err
	}
	if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	submissions := app.NewSubmissionService(st.items, app.NewStaticAdmins(cfg.Game.Owners...), nil, app.SubmissionConfig{})
	n, err := submissions.Import(ctx, items)
	if err != nil {
		return fmt.Errorf("seed stopped after %d items: %w", n, err)
	}
	logger.Info("seeded items", slog.Int("count", n), slog.String("file", file))
	return nil
}

func readSeedFile(path string) ([]domain.RoundItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return f.Items, nil
}
