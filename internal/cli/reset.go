package cli

import (
	"github.com/spf13/cobra"

	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/collector"
	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/transport"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Broadcast a coordinated swarm restart",
	Long: `Broadcast the reset record to the whole group. Every node that
hears it schedules its own restart, staggered by its join order, so the
swarm never restarts all at once.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	tr, err := transport.NewUDP(cfg.Group, cfg.Port, cfg.Identity, log)
	if err != nil {
		return err
	}
	defer tr.Close()

	return collector.SendReset(tr, log)
}
