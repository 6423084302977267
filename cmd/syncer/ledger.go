// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/store"
)

func newLedgerCmd(c *cli) *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and edit the sync ledger.",
	}
	cmd.PersistentFlags().StringVar(&profile, "profile", "", "Profile local directory")
	_ = cmd.MarkPersistentFlagRequired("profile")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the ledger records of a profile.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.withLedger(cmd, func(l store.Ledger) error {
					id, err := profileID(profile)
					if err != nil {
						return err
					}
					recs, err := l.List(cmd.Context(), id)
					if err != nil {
						return err
					}

					tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "LOCAL PATH\tREMOTE PATH\tSYNC TIME\tSUCCESS\tREMOTE DELETED")
					for _, r := range recs {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n",
							r.LocalPath, r.RemotePath, r.SyncTime.Format(time.RFC3339), r.SyncSuccess, r.RemoteDeleted)
					}
					return tw.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "show PATH",
			Short: "Show the record matching a local or remote path.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withLedger(cmd, func(l store.Ledger) error {
					id, err := profileID(profile)
					if err != nil {
						return err
					}
					rec, err := l.Lookup(cmd.Context(), id, args[0])
					if err != nil {
						return err
					}

					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(rec)
				})
			},
		},
		&cobra.Command{
			Use:   "remove PATH",
			Short: "Forget the record matching a local or remote path so it is synced again.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withLedger(cmd, func(l store.Ledger) error {
					id, err := profileID(profile)
					if err != nil {
						return err
					}
					if err = l.Remove(cmd.Context(), id, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
					return nil
				})
			},
		},
	)

	return cmd
}

func (c *cli) withLedger(cmd *cobra.Command, fn func(l store.Ledger) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	l, err := store.NewLedger(cmd.Context(), cfg.Storage.DB, clockwork.NewRealClock(), logger.Nop())
	if err != nil {
		return err
	}
	defer l.Close()

	return fn(l)
}

// profileID turns a --profile value into the id used by the ledger.
func profileID(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve profile %q: %w", dir, err)
	}
	return filepath.Clean(abs), nil
}
