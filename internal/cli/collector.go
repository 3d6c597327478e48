package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/clock"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/collector"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/telemetry"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/transport"
)

var (
	logDir               string
	collectorMetricsAddr string
)

var collectorCmd = &cobra.Command{
	Use:   "collector",
	Short: "Log the master's light readings to CSV",
	Long: `Join the multicast group as a passive listener and append the
current master's light readings to a timestamped CSV file.

Example:
  swarm collector --log-dir ./logs`,
	RunE: runCollector,
}

func init() {
	rootCmd.AddCommand(collectorCmd)
	collectorCmd.Flags().StringVar(&logDir, "log-dir", ".", "directory for CSV log files")
	collectorCmd.Flags().StringVar(&collectorMetricsAddr, "metrics", "", "HTTP listen address for /metrics (empty disables)")
}

func runCollector(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.LogDir = logDir

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	if collectorMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Handler())
		go func() {
			if err := http.ListenAndServe(collectorMetricsAddr, mux); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	tr, err := transport.NewUDP(cfg.Group, cfg.Port, cfg.Identity, log)
	if err != nil {
		return err
	}
	defer tr.Close()

	c, err := collector.New(cfg, tr, clock.System(), log)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("collector stopped", zap.Int("rows", c.Rows()), zap.String("file", c.Path()))
	return nil
}
