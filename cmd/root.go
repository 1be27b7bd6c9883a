package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/spatial-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "spatial-cli",
	Short: "Spatial autocorrelation analysis for polygon datasets",
	Long:  "Loads polygon datasets, builds spatial weights from distance-band or k-nearest neighbor rules, computes global and local Moran's I, and classifies hot/cold spots.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
