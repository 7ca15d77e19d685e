package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/video-platform/internal/platform/run"
	"github.com/example/video-platform/services/api/internal/media"
)

func newWorkerCmd() *cobra.Command {
	var (
		batch int
		wait  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Apply queued video pipeline events from JetStream",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}
			if err := a.openNATS(true); err != nil {
				return err
			}
			if err := media.EnsureStream(a.js); err != nil {
				return err
			}
			w, err := media.NewWorker(a.js, a.processor(), batch, wait, a.log)
			if err != nil {
				return err
			}

			code := run.New(a.log).WithSignals(func(ctx context.Context) error {
				w.Run(ctx)
				return ctx.Err()
			})
			a.log.Info("exit", zap.Int("code", code))
			if code != 0 {
				return errors.New("worker exited with errors")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 10, "messages fetched per pull")
	cmd.Flags().DurationVar(&wait, "wait", 5*time.Second, "max wait per pull")
	return cmd
}
