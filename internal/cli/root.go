// Package cli wires the swarm binaries: the node itself, the listening
// collector, and the reset broadcaster.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daiallen07/ESP32-Light-Collection-Network/internal/config"
)

var (
	configPath string
	group      string
	port       int
	identity   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "swarm",
	Short: "Self-organizing light-collection swarm",
	Long: `A swarm of identical nodes on one multicast segment that discover
each other, assign themselves stable ranks, elect a leader from the
highest light reading, and broadcast in collision-avoiding TDMA slots
with no central coordinator.`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&group, "group", "g", "", "multicast group (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 0, "multicast port (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&identity, "identity", "i", "", "node identity (default: detected local address)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig merges the config file and flag overrides.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if group != "" {
		cfg.Group = group
	}
	if port != 0 {
		cfg.Port = port
	}
	if identity != "" {
		cfg.Identity = identity
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
