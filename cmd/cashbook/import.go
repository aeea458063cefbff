package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/cashbook/internal/export"
	"github.com/MrJamesThe3rd/cashbook/internal/importer"
)

func (c *cli) importCmd() *cobra.Command {
	var (
		accountID  string
		transferTo string
		approve    bool
	)

	cmd := &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Import a bank statement CSV into an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(accountID)
			if err != nil {
				return fmt.Errorf("invalid --account: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			params := importer.ImportParams{AccountID: id, Reader: f}

			if transferTo != "" {
				target, err := uuid.Parse(transferTo)
				if err != nil {
					return fmt.Errorf("invalid --transfer-to: %w", err)
				}

				params.TransferAccountID = &target
			}

			report, err := c.app.Importer.Import(cmd.Context(), params)
			if err != nil {
				if report != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "interrupted after booking %d entries\n", len(report.Imported))
				}

				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "imported %d, skipped %d, suspicious %d\n",
				len(report.Imported), len(report.Skipped), len(report.Suspicious))

			for _, s := range report.Skipped {
				fmt.Fprintf(out, "  skipped %v\n", s)
			}

			for _, s := range report.Suspicious {
				fmt.Fprintf(out, "  line %d: %s %s resembles %s (%s €)\n",
					s.Line, s.Params.Usage, s.Params.Amount.StringFixed(2),
					s.Existing.Usage, export.FormatAmount(s.Existing))
			}

			if !approve || len(report.Suspicious) == 0 {
				return nil
			}

			booked, err := c.app.Importer.Resolve(cmd.Context(), id, report.Suspicious)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "approved %d suspicious rows\n", len(booked))

			return nil
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "account to import into")
	cmd.Flags().StringVar(&transferTo, "transfer-to", "", "account receiving outgoing transfers, e.g. the cash account")
	cmd.Flags().BoolVar(&approve, "approve-suspicious", false, "book rows that resemble existing cash-point entries")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}
