package main

import (
	"github.com/spf13/cobra"

	"github.com/bairigao/video-transcoding/internal/infrastructure/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		logger.Info.Printf("database migrated (%s)", cfg.Database.Driver)
		return nil
	},
}
