package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	rootCmd := &cobra.Command{
		Use:           "clipforge",
		Short:         "Generate short narrated vertical clips from images and text",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newGenerateCommand(&configFlag))
	rootCmd.AddCommand(newStatusCommand(&configFlag))
	rootCmd.AddCommand(newConfigCommand(&configFlag))

	return rootCmd
}

// loadConfig resolves the effective configuration for a CLI invocation.
func loadConfig(configFlag *string) (*config.Config, error) {
	cfg, path, exists, err := config.Load(*configFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if *configFlag != "" && !exists {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	return cfg, nil
}
