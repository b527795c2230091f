package main

import (
	"context"
	"fmt"
	"time"

	"github.com/danmuck/pnsctl/internal/monitor"
	"github.com/danmuck/pnsctl/internal/observability"
	"github.com/danmuck/pnsctl/internal/pns/client"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newMonitorCmd(flags *globalFlags) *cobra.Command {
	var metricsAddr string
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Poll device status until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Monitor.MetricsAddr = metricsAddr
			}
			if cmd.Flags().Changed("interval") {
				if interval <= 0 {
					return fmt.Errorf("interval must be positive, got %v", interval)
				}
				cfg.Monitor.Interval = interval
			}

			metrics := observability.NewMetrics()
			c, err := newClient(cfg, client.WithObserver(metrics))
			if err != nil {
				return err
			}
			m := monitor.New(cfg.MonitorConfig(), c, log.Logger, monitor.WithSink(metrics))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return m.Run(ctx)
			})
			if cfg.Monitor.MetricsAddr != "" {
				log.Info().Str("addr", cfg.Monitor.MetricsAddr).Msg("serving status and metrics")
				g.Go(func() error {
					return monitor.Serve(ctx, cfg.Monitor.MetricsAddr, monitor.NewRouter(m, metrics, log.Logger))
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /status and /metrics on this address")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (overrides config)")
	return cmd
}
