package main

import (
	"github.com/spf13/cobra"

	"dipanshu.dev/internal/config"
	"dipanshu.dev/internal/logger"
)

type rootFlags struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "portfolio",
		Short:         "Personal portfolio site with theme toggle, contact form and music player",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newContentCmd())
	cmd.AddCommand(newContactCmd(flags))

	return cmd
}

// loadEnv reads configuration and builds the logger it asks for.
func loadEnv(flags *rootFlags) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	level := cfg.Log.Level
	if flags.verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: cfg.Log.Pretty})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
