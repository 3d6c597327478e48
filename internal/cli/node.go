package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/clock"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/indicator"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/sensor"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/swarm"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/telemetry"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/transport"
)

var (
	metricsAddr string
	sensorSeed  int64
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Run a swarm node",
	Long: `Join the multicast group as a swarm node: listen-only discovery,
join-order assignment, TDMA broadcasting, leader election, peer
eviction, and staggered coordinated restarts.

Examples:
  # Run with defaults (group 239.1.1.1:5000)
  swarm node

  # Pin the identity and expose metrics
  swarm node --identity 10.0.0.5 --metrics :9100`,
	RunE: runNode,
}

func init() {
	rootCmd.AddCommand(nodeCmd)
	nodeCmd.Flags().StringVar(&metricsAddr, "metrics", "", "HTTP listen address for /metrics (empty disables)")
	nodeCmd.Flags().Int64Var(&sensorSeed, "sensor-seed", 0, "simulated sensor seed (0 seeds from the clock)")
}

func runNode(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if sensorSeed != 0 {
		cfg.SensorSeed = sensorSeed
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	seed := cfg.SensorSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Every pass through this loop is one cold start. A coordinated
	// reset ends Run with ErrRestartRequested and the node re-bootstraps
	// with nothing but what peers still remember about it.
	for {
		tr, err := transport.NewUDP(cfg.Group, cfg.Port, cfg.Identity, log)
		if err != nil {
			// The medium is the one thing the node cannot limp along
			// without.
			return err
		}
		log.Info("joined group",
			zap.String("group", cfg.GroupAddr()),
			zap.String("identity", tr.LocalIdentity()))

		coord := swarm.NewCoordinator(cfg, clock.System(), tr,
			sensor.NewSimulated(seed), indicator.NewConsole(log), log)

		err = coord.Run(ctx)
		tr.Close()

		if errors.Is(err, swarm.ErrRestartRequested) {
			log.Info("rebooting from cold start")
			seed++
			continue
		}
		if errors.Is(err, context.Canceled) {
			log.Info("shutting down")
			return nil
		}
		return err
	}
}
