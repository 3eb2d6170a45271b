package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/connectro/backend/internal/storage"
)

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Create the media bucket for the configured storage backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := env(cmd)

		backend, err := storage.Open(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}
		objects := storage.NewStorage(backend)
		if err := objects.EnsureBucket(cmd.Context()); err != nil {
			return fmt.Errorf("ensure bucket failed: %w", err)
		}
		logger.Info(cmd.Context(), "bucket ready", "backend", cfg.Storage.Backend, "bucket", objects.Bucket())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bucketCmd)
}
