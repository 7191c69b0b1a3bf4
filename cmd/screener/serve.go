package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jky-sys/Screener-3.0/internal/scheduler"
	"github.com/jky-sys/Screener-3.0/internal/web"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard and API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			srv := web.NewServer(a.cfg, a.provider, a.insight, a.loader, a.metrics, a.log)

			if a.cfg.Server.Schedule != "" {
				sched := scheduler.New(ctx, a.log)
				if err := sched.Add("scheduled-scan", a.cfg.Server.Schedule, srv.RunScheduledScan); err != nil {
					return fmt.Errorf("scheduling scans: %w", err)
				}
				sched.Start()
				defer sched.Stop()
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(a.cfg.Server.Addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
