package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) cleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete entries with a zero amount or an unknown kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := c.app.Ledger.Cleanup(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d invalid entries\n", n)

			return nil
		},
	}
}
