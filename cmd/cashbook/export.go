package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/cashbook/internal/export"
	"github.com/MrJamesThe3rd/cashbook/internal/ledger"
	"github.com/MrJamesThe3rd/cashbook/internal/locale"
)

func (c *cli) exportCmd() *cobra.Command {
	var (
		accountID string
		from, to  string
		output    string
		summary   bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write entries as semicolon separated CSV, or a plain text summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter ledger.EntryFilter

			if accountID != "" {
				id, err := uuid.Parse(accountID)
				if err != nil {
					return fmt.Errorf("invalid --account: %w", err)
				}

				filter.AccountID = &id
			}

			for _, d := range []struct {
				raw string
				dst **time.Time
			}{{from, &filter.From}, {to, &filter.To}} {
				if d.raw == "" {
					continue
				}

				t, err := locale.ParseDate(d.raw)
				if err != nil {
					return err
				}

				*d.dst = &t
			}

			var w io.Writer = cmd.OutOrStdout()

			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()

				w = f
			}

			if summary {
				entries, err := c.app.Export.Entries(cmd.Context(), filter)
				if err != nil {
					return err
				}

				_, err = io.WriteString(w, export.Summary(entries))

				return err
			}

			n, err := c.app.Export.Export(cmd.Context(), w, filter)
			if err != nil {
				return err
			}

			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d entries to %s\n", n, output)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "only entries of this account")
	cmd.Flags().StringVar(&from, "from", "", "first day, dd.mm.yyyy")
	cmd.Flags().StringVar(&to, "to", "", "last day, dd.mm.yyyy")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write instead of stdout")
	cmd.Flags().BoolVar(&summary, "summary", false, "print a text summary with totals instead of CSV")

	return cmd
}
