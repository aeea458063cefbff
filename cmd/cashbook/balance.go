package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
)

func (c *cli) balanceCmd() *cobra.Command {
	var (
		group bool
		view  string
	)

	cmd := &cobra.Command{
		Use:   "balance [id]",
		Short: "Print the balance of an account or group, or of every account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := ledger.View(view)
			if !v.Valid() {
				return fmt.Errorf("--view must be %q or %q", ledger.ViewRaw, ledger.ViewEvaluation)
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				accounts, err := c.app.Ledger.ListAccounts(ctx)
				if err != nil {
					return err
				}

				for _, a := range accounts {
					b, err := c.app.Ledger.Balance(ctx, a.ID, v)
					if err != nil {
						return err
					}

					fmt.Fprintf(out, "%-24s %12s €\n", a.Name, b.StringFixed(2))
				}

				return nil
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return err
			}

			balance := c.app.Ledger.Balance
			if group {
				balance = c.app.Ledger.GroupBalance
			}

			b, err := balance(ctx, id, v)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s €\n", b.StringFixed(2))

			return nil
		},
	}

	cmd.Flags().BoolVarP(&group, "group", "g", false, "treat id as an account group")
	cmd.Flags().StringVar(&view, "view", string(ledger.ViewRaw), "raw or evaluation")

	return cmd
}
