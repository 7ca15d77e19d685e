package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/video-platform/internal/platform/db"
	"github.com/example/video-platform/services/api/internal/migrations"
)

func newMigrateCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				ms, err := migrations.List()
				if err != nil {
					return err
				}
				for _, m := range ms {
					cmd.Println(m.Version)
				}
				return nil
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if a.cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pool, err := db.OpenDSN(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			a.pool = pool

			applied, err := migrations.Up(ctx, pool, a.log)
			if err != nil {
				return err
			}
			a.log.Info("migrations applied", zap.Strings("versions", applied))
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print known migration versions and exit")
	return cmd
}
