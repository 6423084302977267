// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-sync-keeper/internal/client"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
)

func newRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler and the optional status server until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printBuildInfo(cmd.OutOrStdout())
			return c.runApp(cmd, false)
		},
	}
}

func newOnceCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run one cycle for every profile, then exit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runApp(cmd, true)
		},
	}
}

func (c *cli) runApp(cmd *cobra.Command, once bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	log := logger.NewFileLogger("syncer", cfg.Log)
	log.Debug().Any("config", cfg).Msg("received configs")

	app, err := client.NewApp(cmd.Context(), cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("init app error")
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Error().Err(err).Msg("close app")
		}
	}()

	if once {
		return app.RunOnce(cmd.Context())
	}
	return app.Run(cmd.Context())
}
