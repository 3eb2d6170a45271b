package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/connectro/backend/internal/config"
	"github.com/connectro/backend/internal/services"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the unique email and username indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := env(cmd)

		store, err := connectStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		if err := store.EnsureIndexes(cmd.Context()); err != nil {
			return fmt.Errorf("ensure indexes failed: %w", err)
		}
		logger.Info(cmd.Context(), "indexes ready", "db", cfg.Store.MongoDB)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}

func connectStore(ctx context.Context, cfg *config.Config) (*services.MongoUserStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := services.ConnectMongo(ctx, cfg.Store.MongoURI, cfg.Store.MongoTLS)
	if err != nil {
		return nil, fmt.Errorf("connect mongo failed: %w", err)
	}
	return services.NewMongoUserStore(client, cfg.Store.MongoDB), nil
}
