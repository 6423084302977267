// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
)

// cli carries state shared by the subcommands of one invocation.
type cli struct {
	flags *config.Flags
	cfg   *config.StructuredConfig
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "syncer",
		Short: "Sync local directories to remote storage on a schedule.",
		// Execute prints the returned error once in main.
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.flags = config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newRunCmd(c),
		newOnceCmd(c),
		newLedgerCmd(c),
		newVersionCmd(),
	)

	return root
}

// loadConfig merges env, flags and the JSON file. The build version is used
// when no app version is configured.
func (c *cli) loadConfig() (*config.StructuredConfig, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	cfg, err := config.GetStructuredConfig(c.flags)
	if err != nil {
		return nil, err
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo().BuildVersion()
	}

	c.cfg = cfg
	return cfg, nil
}
