package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/KrystalRay/KFit/internal/api/http"
	"github.com/KrystalRay/KFit/internal/common"
	"github.com/KrystalRay/KFit/internal/scheduler"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "kfit",
		Short:         "Fetch, cache and aggregate daily fitness telemetry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default config/config.yaml)")

	root.AddCommand(newDailyCmd(&configPath))
	root.AddCommand(newWeeklyCmd(&configPath))
	root.AddCommand(newCacheCmd(&configPath))
	root.AddCommand(newServeCmd(&configPath))
	return root
}

func newDailyCmd(configPath *string) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Print the daily fitness record as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := common.ParseDate(date)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return printJSON(cmd.OutOrStdout(), a.service.Daily(cmd.Context(), day))
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to fetch, YYYY-MM-DD (default today)")
	return cmd
}

func newWeeklyCmd(configPath *string) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Print the weekly summary of the seven days ending on --date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			end, err := common.ParseDate(date)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return printJSON(cmd.OutOrStdout(), a.service.Weekly(cmd.Context(), end))
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "last day of the week, YYYY-MM-DD (default today)")
	return cmd
}

func newCacheCmd(configPath *string) *cobra.Command {
	cache := &cobra.Command{Use: "cache", Short: "Manage the sub-record cache"}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadBase(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			c, closeCache, err := newCache(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeCache() }()

			if err := c.InvalidateAll(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	}
	cache.AddCommand(clearCmd)
	return cache
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve daily and weekly records over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			// Warmer that keeps today's sub-records cached.
			sched := scheduler.New(a.cfg.Scheduler.WarmInterval, a.service, a.logger.Named("scheduler"))
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			server := httpapi.NewApp(a.service)
			go func() {
				a.logger.Info("listening", zap.String("port", a.cfg.Server.Port))
				if err := server.Listen(":" + a.cfg.Server.Port); err != nil {
					a.logger.Error("fiber server stopped", zap.Error(err))
					stop()
				}
			}()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.ShutdownWithContext(shutdownCtx); err != nil {
				a.logger.Warn("error during shutdown", zap.Error(err))
			}
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
