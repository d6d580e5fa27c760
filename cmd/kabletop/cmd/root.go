package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	logLevel string
	log      *zap.Logger
}

// NewRootCmd creates the kabletop command tree. It is called once in main.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{log: zap.NewNop()}
	rootCmd := &cobra.Command{
		Use:           "kabletop",
		Short:         "Offline tools for kabletop stake cells",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(opts.logLevel)
			if err != nil {
				return err
			}
			opts.log = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = opts.log.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); logging is off when empty")
	rootCmd.AddCommand(newVerifyCmd(opts))
	return rootCmd
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		return zap.NewNop(), nil
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if lvl.Level() == zap.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	return cfg.Build()
}
