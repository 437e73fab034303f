// Package cli implements the appliedml command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mizupe/appliedml/internal/config"
	"github.com/mizupe/appliedml/pkg/log"
)

var (
	cfgPath string
	cfg     config.Config
)

// NewRootCmd builds the appliedml command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "appliedml",
		Short: "Dataset exploration and model training toolkit",
		Long: `appliedml loads tabular and image datasets, summarizes and plots them,
and trains classical and neural models with leakage-free preprocessing
pipelines.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return err
			}
			return log.Setup(os.Stderr, cfg.LogLevel, cfg.LogConsole)
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newFetchCmd(),
		newDescribeCmd(),
		newScaleCmd(),
		newTrainCmd(),
		newTfidfCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		lg := log.Logger()
		log.Err(lg.Error(), err).Msg("command failed")
		return 1
	}
	return 0
}
